package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/pkg/export"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

type sessionLister interface {
	List(ctx context.Context, tenant models.Tenant, query dto.ListSessionsQuery) ([]models.ClassSessionDetail, error)
}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the session listing as CSV or PDF.
type ExportService struct {
	sessions  sessionLister
	renderers map[string]renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(sessions sessionLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		renderers: map[string]renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
	}
}

var sessionExportHeaders = []string{"Date", "Start", "End", "Class", "Course", "Teacher", "Room", "Status", "Students"}

// Export renders the sessions matching query in the requested format (csv by default).
func (s *ExportService) Export(ctx context.Context, tenant models.Tenant, query dto.ExportSessionsQuery) (*ExportResult, error) {
	format := query.Format
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	sessions, err := s.sessions.List(ctx, tenant, query.ListSessionsQuery)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Class sessions %s to %s", query.StartDate, query.EndDate),
		Headers: sessionExportHeaders,
		Rows:    make([]map[string]string, 0, len(sessions)),
	}
	for _, session := range sessions {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     session.StartTime.Format(dateLayout),
			"Start":    session.StartTime.Format("15:04"),
			"End":      session.EndTime.Format("15:04"),
			"Class":    session.ClassName,
			"Course":   deref(session.CourseName),
			"Teacher":  deref(session.TeacherName),
			"Room":     session.Room(),
			"Status":   string(session.Status),
			"Students": strconv.Itoa(session.StudentCount),
		})
	}

	payload, err := r.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("sessions exported",
		zap.String("center_id", tenant.CenterID()),
		zap.String("format", format),
		zap.Int("rows", len(sessions)),
	)

	return &ExportResult{
		Filename:    fmt.Sprintf("sessions-%s.%s", time.Now().UTC().Format("20060102-150405"), r.Extension()),
		ContentType: r.ContentType(),
		Payload:     payload,
	}, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
