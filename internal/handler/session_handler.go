package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, tenant models.Tenant, query dto.ListSessionsQuery) ([]models.ClassSessionDetail, error)
	Create(ctx context.Context, tenant models.Tenant, req dto.CreateSessionRequest) (*models.ClassSession, error)
	Update(ctx context.Context, tenant models.Tenant, id string, req dto.UpdateSessionRequest) (*dto.UpdateSessionResponse, error)
	Delete(ctx context.Context, tenant models.Tenant, id string) error
	GetParticipants(ctx context.Context, tenant models.Tenant, classID string) (*models.ClassParticipants, error)
}

type sessionExporter interface {
	Export(ctx context.Context, tenant models.Tenant, query dto.ExportSessionsQuery) (*service.ExportResult, error)
}

// SessionHandler exposes class session CRUD, participants and exports.
type SessionHandler struct {
	sessions sessionService
	exports  sessionExporter
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions *service.ClassSessionService, exports *service.ExportService) *SessionHandler {
	return &SessionHandler{sessions: sessions, exports: exports}
}

// List godoc
// @Summary List class sessions in a date range
// @Tags Sessions
// @Produce json
// @Param startDate query string true "Range start (YYYY-MM-DD or RFC3339)"
// @Param endDate query string true "Range end (YYYY-MM-DD or RFC3339)"
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ListSessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	sessions, err := h.sessions.List(c.Request.Context(), tenant, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(sessions))
	response.JSON(c, http.StatusOK, sessions, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create a class session
// @Description Set checkConflicts to reject the session when it overlaps a room or teacher booking.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid session payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), tenant, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Reschedule or edit a class session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [patch]
func (h *SessionHandler) Update(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid session payload"))
		return
	}
	result, err := h.sessions.Update(c.Request.Context(), tenant, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a class session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), tenant, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Participants godoc
// @Summary List the teacher and students of a class
// @Tags Sessions
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/participants [get]
func (h *SessionHandler) Participants(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	participants, err := h.sessions.GetParticipants(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participants, nil)
}

// Export godoc
// @Summary Download sessions in a date range
// @Tags Sessions
// @Produce text/csv
// @Produce application/pdf
// @Param startDate query string true "Range start"
// @Param endDate query string true "Range end"
// @Param classId query string false "Class ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /sessions/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ExportSessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	result, err := h.exports.Export(c.Request.Context(), tenant, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
