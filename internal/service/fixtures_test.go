package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/scheduling"
)

func strPtr(v string) *string { return &v }

func at(hour, minute int) time.Time {
	return time.Date(2026, time.January, 20, hour, minute, 0, 0, time.UTC)
}

func testTenant() models.Tenant {
	tenant, _ := models.NewTenant("center-1")
	return tenant
}

func persisted(id, classID, room string, start, end time.Time) models.ClassSession {
	s := models.ClassSession{ID: id, CenterID: "center-1", ClassID: classID, StartTime: start, EndTime: end, Status: models.SessionStatusScheduled}
	if room != "" {
		s.RoomName = strPtr(room)
	}
	return s
}

type fakeSessionRepo struct {
	mu sync.Mutex

	sessions map[string]*models.ClassSession
	teachers map[string]string // class id -> teacher id
	rooms    []string

	roomQueries    []string
	teacherQueries []string
	rangeQueries   int
	created        []models.ClassSession
	updated        []models.ClassSession
	deleted        []string
	err            error
}

func newFakeSessionRepo(teachers map[string]string, sessions ...models.ClassSession) *fakeSessionRepo {
	repo := &fakeSessionRepo{sessions: map[string]*models.ClassSession{}, teachers: teachers}
	for i := range sessions {
		s := sessions[i]
		repo.sessions[s.ID] = &s
	}
	return repo
}

func (f *fakeSessionRepo) annotate(s models.ClassSession) models.AnnotatedSession {
	a := models.AnnotatedSession{ClassSession: s}
	if t, ok := f.teachers[s.ClassID]; ok {
		a.TeacherID = strPtr(t)
	}
	return a
}

func (f *fakeSessionRepo) ListActiveInRoom(_ context.Context, _ models.Tenant, room string, from, to time.Time) ([]models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomQueries = append(f.roomQueries, room)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ClassSession
	for _, s := range f.sessions {
		if s.Room() == room && s.Status.Active() && scheduling.Overlaps(s.StartTime, s.EndTime, from, to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListActiveForTeacher(_ context.Context, _ models.Tenant, teacherID string, from, to time.Time) ([]models.AnnotatedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teacherQueries = append(f.teacherQueries, teacherID)
	var out []models.AnnotatedSession
	for _, s := range f.sessions {
		if f.teachers[s.ClassID] == teacherID && s.Status.Active() && scheduling.Overlaps(s.StartTime, s.EndTime, from, to) {
			out = append(out, f.annotate(*s))
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListAnnotatedInRange(_ context.Context, _ models.Tenant, from, to time.Time) ([]models.AnnotatedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rangeQueries++
	var out []models.AnnotatedSession
	for _, s := range f.sessions {
		if s.Status.Active() && scheduling.Overlaps(s.StartTime, s.EndTime, from, to) {
			out = append(out, f.annotate(*s))
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListStartingInRange(_ context.Context, _ models.Tenant, from, to time.Time) ([]models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ClassSession
	for _, s := range f.sessions {
		if !s.StartTime.Before(from) && s.StartTime.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListDistinctRooms(context.Context, models.Tenant) ([]string, error) {
	return f.rooms, nil
}

func (f *fakeSessionRepo) BulkCreate(_ context.Context, tenant models.Tenant, sessions []models.ClassSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range sessions {
		sessions[i].ID = "gen-" + sessions[i].ClassID + "-" + sessions[i].StartTime.Format(time.RFC3339)
		sessions[i].CenterID = tenant.CenterID()
		s := sessions[i]
		f.sessions[s.ID] = &s
		f.created = append(f.created, s)
	}
	return nil
}

func (f *fakeSessionRepo) List(context.Context, models.Tenant, models.ClassSessionFilter) ([]models.ClassSessionDetail, error) {
	var out []models.ClassSessionDetail
	for _, s := range f.sessions {
		out = append(out, models.ClassSessionDetail{ClassSession: *s, ClassName: "Class " + s.ClassID})
	}
	return out, nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, _ models.Tenant, id string) (*models.ClassSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionRepo) Create(_ context.Context, tenant models.Tenant, session *models.ClassSession) error {
	if f.err != nil {
		return f.err
	}
	session.ID = "new-session"
	session.CenterID = tenant.CenterID()
	s := *session
	f.sessions[s.ID] = &s
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessionRepo) Update(_ context.Context, _ models.Tenant, session *models.ClassSession) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return sql.ErrNoRows
	}
	s := *session
	f.sessions[s.ID] = &s
	f.updated = append(f.updated, s)
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, _ models.Tenant, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeClassRepo struct {
	classes  map[string]models.Class
	students map[string][]string
	lookups  int
}

func (f *fakeClassRepo) FindByID(_ context.Context, _ models.Tenant, id string) (*models.Class, error) {
	f.lookups++
	class, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

func (f *fakeClassRepo) ListTeachers(_ context.Context, _ models.Tenant, ids []string) ([]models.ClassTeacher, error) {
	var out []models.ClassTeacher
	for _, id := range ids {
		if class, ok := f.classes[id]; ok {
			out = append(out, models.ClassTeacher{ClassID: id, TeacherID: class.TeacherID})
		}
	}
	return out, nil
}

func (f *fakeClassRepo) ListStudentIDs(_ context.Context, _ models.Tenant, classID string) ([]string, error) {
	return f.students[classID], nil
}

type staticRooms []string

func (r staticRooms) Rooms(context.Context, models.Tenant) ([]string, error) { return r, nil }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context, models.Tenant) { c.calls++ }

type capturedEvent struct {
	subject string
	event   interface{}
}

type capturingPublisher struct{ events []capturedEvent }

func (p *capturingPublisher) Publish(_ context.Context, subject string, event interface{}) error {
	p.events = append(p.events, capturedEvent{subject: subject, event: event})
	return nil
}
