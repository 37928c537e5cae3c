package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/events"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

type templateReader interface {
	ListByCenter(ctx context.Context, tenant models.Tenant) ([]models.ClassScheduleTemplate, error)
}

type generatedSessionStore interface {
	ListStartingInRange(ctx context.Context, tenant models.Tenant, from, to time.Time) ([]models.ClassSession, error)
	BulkCreate(ctx context.Context, tenant models.Tenant, sessions []models.ClassSession) error
}

// SessionGeneratorService materialises weekly templates into concrete sessions.
type SessionGeneratorService struct {
	templates templateReader
	sessions  generatedSessionStore
	rooms     roomInvalidator
	publisher events.Publisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionGeneratorService wires generator dependencies.
func NewSessionGeneratorService(templates templateReader, sessions generatedSessionStore, rooms roomInvalidator, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SessionGeneratorService{
		templates: templates,
		sessions:  sessions,
		rooms:     rooms,
		publisher: publisher,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate expands every template over the inclusive date range and inserts the
// occurrences that do not exist yet. Re-running over the same range inserts nothing.
func (s *SessionGeneratorService) Generate(ctx context.Context, tenant models.Tenant, req dto.GenerateSessionsRequest) (*dto.GenerateSessionsResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid generation payload")
	}
	from, _ := time.Parse(dateLayout, req.StartDate)
	to, _ := time.Parse(dateLayout, req.EndDate)
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	templates, err := s.templates.ListByCenter(ctx, tenant)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load schedule templates")
	}
	if len(templates) == 0 {
		return &dto.GenerateSessionsResponse{GeneratedCount: 0}, nil
	}

	existing, err := s.sessions.ListStartingInRange(ctx, tenant, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load existing sessions")
	}

	plan := scheduling.PlanGeneration(templates, from, to, existing)
	for _, skipped := range plan.Skipped {
		s.logger.Warn("skipping invalid schedule template",
			zap.String("center_id", tenant.CenterID()),
			zap.String("template_id", skipped.TemplateID),
			zap.Error(skipped.Err),
		)
	}

	sessions := make([]models.ClassSession, 0, len(plan.Occurrences))
	for _, occ := range plan.Occurrences {
		sessions = append(sessions, models.ClassSession{
			ClassID:   occ.ClassID,
			StartTime: occ.Start,
			EndTime:   occ.End,
			RoomName:  occ.RoomName,
			Status:    models.SessionStatusScheduled,
		})
	}
	if len(sessions) == 0 {
		return &dto.GenerateSessionsResponse{GeneratedCount: 0}, nil
	}

	if err := s.sessions.BulkCreate(ctx, tenant, sessions); err != nil {
		return nil, appErrors.Internal(err, "failed to insert generated sessions")
	}

	count := len(sessions)
	s.rooms.Invalidate(ctx, tenant)
	s.metrics.AddGeneratedSessions(count)
	s.logger.Info("sessions generated",
		zap.String("center_id", tenant.CenterID()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("generated", count),
		zap.Int("duplicates", plan.Duplicates),
	)

	event := events.SessionsGeneratedEvent{
		EventType:      events.SubjectSessionsGenerated,
		CenterID:       tenant.CenterID(),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		GeneratedCount: count,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.SubjectSessionsGenerated, event); err != nil {
		s.logger.Warn("failed to publish generation event", zap.Error(err))
	}

	return &dto.GenerateSessionsResponse{GeneratedCount: count}, nil
}
