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

type classSessionStore interface {
	List(ctx context.Context, tenant models.Tenant, filter models.ClassSessionFilter) ([]models.ClassSessionDetail, error)
	FindByID(ctx context.Context, tenant models.Tenant, id string) (*models.ClassSession, error)
	Create(ctx context.Context, tenant models.Tenant, session *models.ClassSession) error
	Update(ctx context.Context, tenant models.Tenant, session *models.ClassSession) error
	Delete(ctx context.Context, tenant models.Tenant, id string) error
}

type participantReader interface {
	classFinder
	ListStudentIDs(ctx context.Context, tenant models.Tenant, classID string) ([]string, error)
}

type sessionClassifier interface {
	Classify(ctx context.Context, tenant models.Tenant, candidate scheduling.Candidate, excludeID string) (models.ConflictResult, error)
}

// ClassSessionService implements tenant-scoped session CRUD with opt-in conflict checks.
type ClassSessionService struct {
	sessions  classSessionStore
	classes   participantReader
	conflicts sessionClassifier
	rooms     roomInvalidator
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassSessionService constructs a ClassSessionService.
func NewClassSessionService(sessions classSessionStore, classes participantReader, conflicts sessionClassifier, rooms roomInvalidator, publisher events.Publisher, validate *validator.Validate, logger *zap.Logger) *ClassSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ClassSessionService{
		sessions:  sessions,
		classes:   classes,
		conflicts: conflicts,
		rooms:     rooms,
		publisher: publisher,
		validator: validate,
		logger:    logger,
	}
}

// List returns sessions starting within the range with display projections.
func (s *ClassSessionService) List(ctx context.Context, tenant models.Tenant, query dto.ListSessionsQuery) ([]models.ClassSessionDetail, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "startDate and endDate are required")
	}
	start, err := parseDateBound(query.StartDate, false)
	if err != nil {
		return nil, err
	}
	end, err := parseDateBound(query.EndDate, true)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be after startDate")
	}

	sessions, err := s.sessions.List(ctx, tenant, models.ClassSessionFilter{Start: start, End: end, ClassID: query.ClassID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.ClassSessionDetail{}
	}
	return sessions, nil
}

// Create stores a new session after verifying its class exists.
func (s *ClassSessionService) Create(ctx context.Context, tenant models.Tenant, req dto.CreateSessionRequest) (*models.ClassSession, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	if err := requireInterval(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	class, err := findClass(ctx, s.classes, tenant, req.ClassID)
	if err != nil {
		return nil, err
	}

	session := &models.ClassSession{
		ClassID:   class.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		RoomName:  normaliseRoom(req.RoomName),
		Status:    models.SessionStatus(req.Status),
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}

	if req.CheckConflicts {
		if err := s.ensureFree(ctx, tenant, session, class.TeacherID, ""); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Create(ctx, tenant, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	if session.RoomName != nil {
		s.rooms.Invalidate(ctx, tenant)
	}
	return session, nil
}

// Update applies the supplied fields and reports the times before the change.
func (s *ClassSessionService) Update(ctx context.Context, tenant models.Tenant, id string, req dto.UpdateSessionRequest) (*dto.UpdateSessionResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}

	session, err := s.sessions.FindByID(ctx, tenant, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}

	previousStart, previousEnd := session.StartTime, session.EndTime
	previousRoom := session.Room()

	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}
	if req.RoomName != nil {
		session.RoomName = normaliseRoom(req.RoomName)
	}
	if req.Status != nil && *req.Status != "" {
		session.Status = models.SessionStatus(*req.Status)
	}
	if err := requireInterval(session.StartTime, session.EndTime); err != nil {
		return nil, err
	}

	if req.CheckConflicts {
		class, err := findClass(ctx, s.classes, tenant, session.ClassID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureFree(ctx, tenant, session, class.TeacherID, session.ID); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Update(ctx, tenant, session); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to update session")
	}

	if session.Room() != previousRoom {
		s.rooms.Invalidate(ctx, tenant)
	}
	if !session.StartTime.Equal(previousStart) || !session.EndTime.Equal(previousEnd) {
		s.publishRescheduled(ctx, tenant, session, previousStart, previousEnd)
	}

	return &dto.UpdateSessionResponse{
		Session:           *session,
		PreviousStartTime: previousStart,
		PreviousEndTime:   previousEnd,
	}, nil
}

// Delete removes a session.
func (s *ClassSessionService) Delete(ctx context.Context, tenant models.Tenant, id string) error {
	if err := requireTenant(tenant); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, tenant, id); err != nil {
		if isNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Internal(err, "failed to delete session")
	}
	s.rooms.Invalidate(ctx, tenant)
	return nil
}

// GetParticipants resolves the class teacher and enrolled students.
func (s *ClassSessionService) GetParticipants(ctx context.Context, tenant models.Tenant, classID string) (*models.ClassParticipants, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	class, err := findClass(ctx, s.classes, tenant, classID)
	if err != nil {
		return nil, err
	}
	students, err := s.classes.ListStudentIDs(ctx, tenant, class.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list class students")
	}
	if students == nil {
		students = []string{}
	}
	return &models.ClassParticipants{ClassID: class.ID, TeacherID: class.TeacherID, StudentIDs: students}, nil
}

func (s *ClassSessionService) ensureFree(ctx context.Context, tenant models.Tenant, session *models.ClassSession, teacherID *string, excludeID string) error {
	candidate := scheduling.Candidate{
		ClassID:   session.ClassID,
		Start:     session.StartTime,
		End:       session.EndTime,
		RoomName:  session.RoomName,
		TeacherID: teacherID,
	}
	result, err := s.conflicts.Classify(ctx, tenant, candidate, excludeID)
	if err != nil {
		return err
	}
	if result.HasConflicts {
		return conflictError(result)
	}
	return nil
}

func (s *ClassSessionService) publishRescheduled(ctx context.Context, tenant models.Tenant, session *models.ClassSession, previousStart, previousEnd time.Time) {
	event := events.SessionRescheduledEvent{
		EventType:         events.SubjectSessionRescheduled,
		CenterID:          tenant.CenterID(),
		SessionID:         session.ID,
		ClassID:           session.ClassID,
		PreviousStartTime: previousStart,
		PreviousEndTime:   previousEnd,
		StartTime:         session.StartTime,
		EndTime:           session.EndTime,
		RoomName:          session.RoomName,
		OccurredAt:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.SubjectSessionRescheduled, event); err != nil {
		s.logger.Warn("failed to publish reschedule event", zap.String("session_id", session.ID), zap.Error(err))
	}
}
