package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 64 << 10

type importPreviewer interface {
	Preview(ctx context.Context, tenant models.Tenant, file io.Reader, size int64) (*dto.ImportPreviewResponse, error)
	MaxFileSize() int64
}

// ImportHandler previews spreadsheet imports.
type ImportHandler struct {
	service importPreviewer
}

// NewImportHandler constructs the handler.
func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Preview godoc
// @Summary Preview an xlsx session import with conflict flags
// @Description Columns: id, class_id, date (YYYY-MM-DD), start (HH:MM), end (HH:MM), room. Nothing is saved.
// @Tags Sessions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} response.Envelope{data=dto.ImportPreviewResponse}
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /sessions/import/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := h.service.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, appErrors.Clone(appErrors.ErrTooLarge, fmt.Sprintf("file exceeds %d bytes", limit)))
			return
		}
		response.Error(c, bindError(err, "multipart field \"file\" is required"))
		return
	}
	if header.Size > limit {
		response.Error(c, appErrors.Clone(appErrors.ErrTooLarge, fmt.Sprintf("file exceeds %d bytes", limit)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to open upload"))
		return
	}
	defer file.Close()

	preview, err := h.service.Preview(c.Request.Context(), tenant, file, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}
