package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliniqor/cliniqor-api/internal/handler"
	"github.com/cliniqor/cliniqor-api/internal/middleware"
	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/service/auth"
	"github.com/cliniqor/cliniqor-api/pkg/validator"
)

type Handler struct {
	svc       auth.Service
	oauth     *auth.Authenticator
	clientURL string
	authMW    *middleware.AuthMiddleware
}

func NewHandler(svc auth.Service, oauth *auth.Authenticator, clientURL string, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		svc:       svc,
		oauth:     oauth,
		clientURL: clientURL,
		authMW:    authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", h.authMW.Authenticate(), h.Me)

		authGroup.GET("/:provider", h.OAuthRedirect)
		authGroup.GET("/:provider/callback", h.OAuthCallback)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, validator.TranslateBindingError(err))
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, validator.TranslateBindingError(err))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("no token, authorization denied"))
		return
	}

	user, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) OAuthRedirect(c *gin.Context) {
	url, err := h.oauth.AuthCodeURL(c.Request.Context(), c.Param("provider"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// OAuthCallback finishes the handshake and hands the token to the web
// client via a redirect query parameter.
func (h *Handler) OAuthCallback(c *gin.Context) {
	token, err := h.oauth.HandleCallback(
		c.Request.Context(),
		c.Param("provider"),
		c.Query("state"),
		c.Query("code"),
	)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/auth/callback?token=%s", h.clientURL, token))
}
