package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/scheduling"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type conflictService interface {
	CheckConflicts(ctx context.Context, tenant models.Tenant, req dto.ConflictCheckRequest) (*models.ConflictResult, error)
	CheckBatchConflicts(ctx context.Context, tenant models.Tenant, req dto.BatchConflictRequest) (map[string]bool, error)
	SuggestNextAvailable(ctx context.Context, tenant models.Tenant, req dto.SuggestionRequest) ([]scheduling.Suggestion, error)
}

// ConflictHandler exposes advisory conflict checks and suggestions.
type ConflictHandler struct {
	service conflictService
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// Check godoc
// @Summary Check a prospective session for room and teacher conflicts
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Candidate session"
// @Success 200 {object} response.Envelope{data=models.ConflictResult}
// @Failure 400 {object} response.Envelope
// @Router /sessions/conflicts/check [post]
func (h *ConflictHandler) Check(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid conflict check payload"))
		return
	}
	result, err := h.service.CheckConflicts(c.Request.Context(), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Batch godoc
// @Summary Flag conflicting sessions in a batch
// @Description Returns a map from each submitted id to whether it collides with another batch entry or a stored session.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.BatchConflictRequest true "Candidate sessions"
// @Success 200 {object} response.Envelope
// @Router /sessions/conflicts/batch [post]
func (h *ConflictHandler) Batch(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.BatchConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid batch payload"))
		return
	}
	flags, err := h.service.CheckBatchConflicts(c.Request.Context(), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flags, nil)
}

// Suggestions godoc
// @Summary Suggest a later start time or free rooms for a blocked slot
// @Description Returns an empty list when the requested slot is free.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionRequest true "Blocked slot"
// @Success 200 {object} response.Envelope
// @Router /sessions/suggestions [post]
func (h *ConflictHandler) Suggestions(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid suggestion payload"))
		return
	}
	suggestions, err := h.service.SuggestNextAvailable(c.Request.Context(), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
