package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliniqor/cliniqor-api/pkg/token"
)

const (
	// HeaderAuthToken is the request header carrying the bearer token.
	HeaderAuthToken = "x-auth-token"

	contextUserID = "userID"
)

type AuthMiddleware struct {
	tokenSvc token.Service
}

func NewAuthMiddleware(tokenSvc token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate verifies the x-auth-token header and sets the doctor's id
// in the request context. Verification is pure signature math; nothing is
// cached across requests.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader(HeaderAuthToken)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		userID, err := m.tokenSvc.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		c.Set(contextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated doctor's id set by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
