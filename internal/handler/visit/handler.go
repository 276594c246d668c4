package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cliniqor/cliniqor-api/internal/handler"
	"github.com/cliniqor/cliniqor-api/internal/middleware"
	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/service/visit"
	"github.com/cliniqor/cliniqor-api/pkg/validator"
)

type Handler struct {
	service visit.Service
}

func NewHandler(service visit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.GET("/:patientId", h.ListVisits)
		visits.POST("/:patientId", h.CreateVisit)
	}
}

func (h *Handler) ListVisits(c *gin.Context) {
	doctorID, _ := middleware.UserID(c)

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	visits, err := h.service.List(c.Request.Context(), doctorID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(visits))
}

func (h *Handler) CreateVisit(c *gin.Context) {
	doctorID, _ := middleware.UserID(c)

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, validator.TranslateBindingError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), doctorID, patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}
