package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type sessionGenerator interface {
	Generate(ctx context.Context, tenant models.Tenant, req dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error)
}

// GeneratorHandler materialises weekly templates into sessions.
type GeneratorHandler struct {
	service sessionGenerator
}

// NewGeneratorHandler constructs the handler.
func NewGeneratorHandler(svc *service.SessionGeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate sessions from weekly templates
// @Description Both dates are inclusive. Occurrences that already exist are skipped, so reruns are safe.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSessionsRequest true "Date range"
// @Success 200 {object} response.Envelope{data=dto.GenerateSessionsResponse}
// @Failure 400 {object} response.Envelope
// @Router /sessions/generate [post]
func (h *GeneratorHandler) Generate(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GenerateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
