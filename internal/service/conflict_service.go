package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

type conflictSessionReader interface {
	ListActiveInRoom(ctx context.Context, tenant models.Tenant, room string, from, to time.Time) ([]models.ClassSession, error)
	ListActiveForTeacher(ctx context.Context, tenant models.Tenant, teacherID string, from, to time.Time) ([]models.AnnotatedSession, error)
	ListAnnotatedInRange(ctx context.Context, tenant models.Tenant, from, to time.Time) ([]models.AnnotatedSession, error)
}

type conflictClassReader interface {
	classFinder
	ListTeachers(ctx context.Context, tenant models.Tenant, classIDs []string) ([]models.ClassTeacher, error)
}

type roomSource interface {
	Rooms(ctx context.Context, tenant models.Tenant) ([]string, error)
}

// ConflictServiceConfig bounds batch sizes and suggestion fan-out.
type ConflictServiceConfig struct {
	SuggestionConcurrency int
	MaxBatchSize          int
}

// ConflictService detects room and teacher double-booking and proposes alternatives.
type ConflictService struct {
	sessions  conflictSessionReader
	classes   conflictClassReader
	rooms     roomSource
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ConflictServiceConfig
}

// NewConflictService wires the conflict engine.
func NewConflictService(sessions conflictSessionReader, classes conflictClassReader, rooms roomSource, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ConflictServiceConfig) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SuggestionConcurrency <= 0 {
		cfg.SuggestionConcurrency = 4
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	return &ConflictService{
		sessions:  sessions,
		classes:   classes,
		rooms:     rooms,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CheckConflicts classifies a single candidate against persisted sessions.
func (s *ConflictService) CheckConflicts(ctx context.Context, tenant models.Tenant, req dto.ConflictCheckRequest) (*models.ConflictResult, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid conflict check payload")
	}
	if err := requireInterval(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	class, err := findClass(ctx, s.classes, tenant, req.ClassID)
	if err != nil {
		return nil, err
	}

	candidate := scheduling.Candidate{
		ClassID:   class.ID,
		Start:     req.StartTime,
		End:       req.EndTime,
		RoomName:  normaliseRoom(req.RoomName),
		TeacherID: class.TeacherID,
	}
	result, err := s.Classify(ctx, tenant, candidate, req.ExcludeSessionID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordConflictCheck("single", result.HasConflicts)
	return &result, nil
}

// Classify fetches the room and teacher pools the candidate needs and classifies it.
// A candidate without a room or teacher issues no query for that check.
func (s *ConflictService) Classify(ctx context.Context, tenant models.Tenant, candidate scheduling.Candidate, excludeID string) (models.ConflictResult, error) {
	roomPool, teacherPool, err := s.pools(ctx, tenant, candidate)
	if err != nil {
		return models.ConflictResult{}, err
	}
	return scheduling.Classify(candidate, roomPool, teacherPool, excludeID), nil
}

func (s *ConflictService) pools(ctx context.Context, tenant models.Tenant, candidate scheduling.Candidate) ([]models.ClassSession, []models.AnnotatedSession, error) {
	from, _ := scheduling.DayBounds(candidate.Start)
	_, to := scheduling.DayBounds(candidate.End.Add(-time.Nanosecond))

	var roomPool []models.ClassSession
	if candidate.HasRoom() {
		pool, err := s.sessions.ListActiveInRoom(ctx, tenant, *candidate.RoomName, from, to)
		if err != nil {
			return nil, nil, appErrors.Internal(err, "failed to load room sessions")
		}
		roomPool = pool
	}

	var teacherPool []models.AnnotatedSession
	if candidate.HasTeacher() {
		pool, err := s.sessions.ListActiveForTeacher(ctx, tenant, *candidate.TeacherID, from, to)
		if err != nil {
			return nil, nil, appErrors.Internal(err, "failed to load teacher sessions")
		}
		teacherPool = pool
	}
	return roomPool, teacherPool, nil
}

// CheckBatchConflicts flags every candidate that collides with another candidate or a
// persisted session in the batch's date span.
func (s *ConflictService) CheckBatchConflicts(ctx context.Context, tenant models.Tenant, req dto.BatchConflictRequest) (map[string]bool, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if len(req.Sessions) == 0 {
		return map[string]bool{}, nil
	}
	if len(req.Sessions) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "too many sessions in batch")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid batch payload")
	}

	classIDs := make([]string, 0, len(req.Sessions))
	seenClass := make(map[string]struct{}, len(req.Sessions))
	seenID := make(map[string]struct{}, len(req.Sessions))
	for _, in := range req.Sessions {
		if _, dup := seenID[in.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate session id "+in.ID+" in batch")
		}
		seenID[in.ID] = struct{}{}
		if err := requireInterval(in.StartTime, in.EndTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "session "+in.ID+": startTime must be before endTime")
		}
		if _, ok := seenClass[in.ClassID]; !ok {
			seenClass[in.ClassID] = struct{}{}
			classIDs = append(classIDs, in.ClassID)
		}
	}

	teachers, err := s.classes.ListTeachers(ctx, tenant, classIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to resolve class teachers")
	}
	teacherByClass := make(map[string]*string, len(teachers))
	for _, t := range teachers {
		teacherByClass[t.ClassID] = t.TeacherID
	}
	var missing []string
	for _, id := range classIDs {
		if _, ok := teacherByClass[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		unknown := &models.UnknownClassError{ClassIDs: missing}
		return nil, appErrors.Wrap(unknown, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, unknown.Error())
	}

	candidates := make([]models.AnnotatedSession, 0, len(req.Sessions))
	for _, in := range req.Sessions {
		status := models.SessionStatus(in.Status)
		if status == "" {
			status = models.SessionStatusScheduled
		}
		candidates = append(candidates, models.AnnotatedSession{
			ClassSession: models.ClassSession{
				ID:        in.ID,
				CenterID:  tenant.CenterID(),
				ClassID:   in.ClassID,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				RoomName:  normaliseRoom(in.RoomName),
				Status:    status,
			},
			TeacherID: teacherByClass[in.ClassID],
		})
	}

	from, to, _ := scheduling.Span(candidates)
	persisted, err := s.sessions.ListAnnotatedInRange(ctx, tenant, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load sessions for batch")
	}

	result := scheduling.AnalyzeBatch(candidates, persisted)
	conflicts := 0
	for _, flagged := range result {
		if flagged {
			conflicts++
		}
	}
	s.metrics.RecordConflictCheck("batch", conflicts > 0)
	s.logger.Debug("batch conflicts analysed",
		zap.String("center_id", tenant.CenterID()),
		zap.Int("candidates", len(candidates)),
		zap.Int("persisted", len(persisted)),
		zap.Int("conflicts", conflicts),
	)
	return result, nil
}

// SuggestNextAvailable proposes a later start in the same room and alternative free
// rooms for a blocked slot. A free slot yields no suggestions.
func (s *ConflictService) SuggestNextAvailable(ctx context.Context, tenant models.Tenant, req dto.SuggestionRequest) ([]scheduling.Suggestion, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid suggestion payload")
	}
	if err := requireInterval(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	class, err := findClass(ctx, s.classes, tenant, req.ClassID)
	if err != nil {
		return nil, err
	}

	duration := req.EndTime.Sub(req.StartTime)
	if req.Duration != nil {
		duration = time.Duration(*req.Duration) * time.Minute
	}
	candidate := scheduling.Candidate{
		ClassID:   class.ID,
		Start:     req.StartTime,
		End:       req.StartTime.Add(duration),
		RoomName:  normaliseRoom(req.RoomName),
		TeacherID: class.TeacherID,
	}

	roomPool, teacherPool, err := s.pools(ctx, tenant, candidate)
	if err != nil {
		return nil, err
	}
	result := scheduling.Classify(candidate, roomPool, teacherPool, "")
	if !result.HasConflicts {
		return []scheduling.Suggestion{}, nil
	}

	blockers := make([]scheduling.Interval, 0, len(roomPool)+len(teacherPool))
	for _, session := range roomPool {
		blockers = append(blockers, scheduling.Interval{Start: session.StartTime, End: session.EndTime})
	}
	for _, session := range teacherPool {
		blockers = append(blockers, scheduling.Interval{Start: session.StartTime, End: session.EndTime})
	}
	timeSuggestion := scheduling.SuggestTime(candidate.Interval(), duration, blockers)

	var freeRooms []string
	if candidate.HasRoom() {
		freeRooms, err = s.freeRooms(ctx, tenant, candidate)
		if err != nil {
			return nil, err
		}
	}

	suggestions := scheduling.Assemble(timeSuggestion, freeRooms)
	timeCount := 0
	if timeSuggestion != nil {
		timeCount = 1
	}
	s.metrics.RecordSuggestions(timeCount, len(freeRooms))
	return suggestions, nil
}

// freeRooms checks every other known room for the candidate window with bounded
// concurrency and returns the free ones in catalogue order.
func (s *ConflictService) freeRooms(ctx context.Context, tenant models.Tenant, candidate scheduling.Candidate) ([]string, error) {
	catalogue, err := s.rooms.Rooms(ctx, tenant)
	if err != nil {
		return nil, err
	}

	alternatives := make([]string, 0, len(catalogue))
	for _, room := range catalogue {
		if room != *candidate.RoomName {
			alternatives = append(alternatives, room)
		}
	}

	free := make([]bool, len(alternatives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SuggestionConcurrency)
	for i, room := range alternatives {
		i, room := i, room
		g.Go(func() error {
			pool, err := s.sessions.ListActiveInRoom(gctx, tenant, room, candidate.Start, candidate.End)
			if err != nil {
				return appErrors.Internal(err, "failed to check room "+room)
			}
			probe := candidate
			probe.RoomName = &room
			free[i] = len(scheduling.RoomConflicts(probe, pool, "")) == 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(alternatives))
	for i, room := range alternatives {
		if free[i] {
			out = append(out, room)
		}
	}
	return out, nil
}
