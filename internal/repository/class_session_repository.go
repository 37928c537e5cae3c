package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

const classSessionColumns = "cs.id, cs.center_id, cs.class_id, cs.start_time, cs.end_time, cs.room_name, cs.status, cs.created_at, cs.updated_at"

const activeSessionCondition = "cs.status <> 'CANCELLED'"

// ClassSessionRepository provides tenant-scoped persistence for class sessions.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository creates a new class session repository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

// List returns sessions starting inside [filter.Start, filter.End) with class, course,
// teacher and enrolment projections.
func (r *ClassSessionRepository) List(ctx context.Context, tenant models.Tenant, filter models.ClassSessionFilter) ([]models.ClassSessionDetail, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	if !filter.Start.IsZero() {
		q.where("cs.start_time >= $%d", filter.Start)
	}
	if !filter.End.IsZero() {
		q.where("cs.start_time < $%d", filter.End)
	}
	if filter.ClassID != "" {
		q.where("cs.class_id = $%d", filter.ClassID)
	}

	query := fmt.Sprintf(`SELECT %s, c.name AS class_name, c.course_id, co.name AS course_name, c.teacher_id, t.name AS teacher_name,
(SELECT COUNT(*) FROM class_students st WHERE st.class_id = c.id) AS student_count
FROM class_sessions cs
JOIN classes c ON c.id = cs.class_id
LEFT JOIN courses co ON co.id = c.course_id
LEFT JOIN teachers t ON t.id = c.teacher_id
%s ORDER BY cs.start_time ASC, cs.id ASC`, classSessionColumns, q.clause())

	var sessions []models.ClassSessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, q.args...); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}

// FindByID loads a session by id within the tenant.
func (r *ClassSessionRepository) FindByID(ctx context.Context, tenant models.Tenant, id string) (*models.ClassSession, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.where("cs.id = $%d", id)

	query := fmt.Sprintf("SELECT %s FROM class_sessions cs %s", classSessionColumns, q.clause())
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, q.args...); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActiveInRoom returns non-cancelled sessions in the room overlapping [from, to).
func (r *ClassSessionRepository) ListActiveInRoom(ctx context.Context, tenant models.Tenant, room string, from, to time.Time) ([]models.ClassSession, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.where("cs.room_name = $%d", room).
		where("cs.start_time < $%d", to).
		where("cs.end_time > $%d", from).
		raw(activeSessionCondition)

	query := fmt.Sprintf("SELECT %s FROM class_sessions cs %s ORDER BY cs.start_time ASC", classSessionColumns, q.clause())
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, q.args...); err != nil {
		return nil, fmt.Errorf("list sessions in room: %w", err)
	}
	return sessions, nil
}

// ListActiveForTeacher returns non-cancelled sessions of classes taught by the teacher overlapping [from, to).
func (r *ClassSessionRepository) ListActiveForTeacher(ctx context.Context, tenant models.Tenant, teacherID string, from, to time.Time) ([]models.AnnotatedSession, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.where("c.teacher_id = $%d", teacherID).
		where("cs.start_time < $%d", to).
		where("cs.end_time > $%d", from).
		raw(activeSessionCondition)

	query := fmt.Sprintf("SELECT %s, c.teacher_id FROM class_sessions cs JOIN classes c ON c.id = cs.class_id %s ORDER BY cs.start_time ASC", classSessionColumns, q.clause())
	var sessions []models.AnnotatedSession
	if err := r.db.SelectContext(ctx, &sessions, query, q.args...); err != nil {
		return nil, fmt.Errorf("list sessions for teacher: %w", err)
	}
	return sessions, nil
}

// ListAnnotatedInRange returns every non-cancelled session overlapping [from, to) with its class teacher.
func (r *ClassSessionRepository) ListAnnotatedInRange(ctx context.Context, tenant models.Tenant, from, to time.Time) ([]models.AnnotatedSession, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.where("cs.start_time < $%d", to).
		where("cs.end_time > $%d", from).
		raw(activeSessionCondition)

	query := fmt.Sprintf("SELECT %s, c.teacher_id FROM class_sessions cs LEFT JOIN classes c ON c.id = cs.class_id %s ORDER BY cs.start_time ASC", classSessionColumns, q.clause())
	var sessions []models.AnnotatedSession
	if err := r.db.SelectContext(ctx, &sessions, query, q.args...); err != nil {
		return nil, fmt.Errorf("list annotated sessions: %w", err)
	}
	return sessions, nil
}

// ListStartingInRange returns sessions of any status whose start lies in [from, to).
func (r *ClassSessionRepository) ListStartingInRange(ctx context.Context, tenant models.Tenant, from, to time.Time) ([]models.ClassSession, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.where("cs.start_time >= $%d", from).
		where("cs.start_time < $%d", to)

	query := fmt.Sprintf("SELECT %s FROM class_sessions cs %s", classSessionColumns, q.clause())
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, q.args...); err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	return sessions, nil
}

// ListDistinctRooms returns every room name the tenant has used, sorted.
func (r *ClassSessionRepository) ListDistinctRooms(ctx context.Context, tenant models.Tenant) ([]string, error) {
	q, err := newScopedQuery(tenant, "cs.center_id")
	if err != nil {
		return nil, err
	}
	q.raw("cs.room_name IS NOT NULL").raw("cs.room_name <> ''")

	query := fmt.Sprintf("SELECT DISTINCT cs.room_name FROM class_sessions cs %s ORDER BY cs.room_name ASC", q.clause())
	var rooms []string
	if err := r.db.SelectContext(ctx, &rooms, query, q.args...); err != nil {
		return nil, fmt.Errorf("list distinct rooms: %w", err)
	}
	return rooms, nil
}

const insertClassSessionQuery = `INSERT INTO class_sessions (id, center_id, class_id, start_time, end_time, room_name, status, created_at, updated_at) VALUES (:id, :center_id, :class_id, :start_time, :end_time, :room_name, :status, :created_at, :updated_at)`

// Create stores a new session stamped with the tenant.
func (r *ClassSessionRepository) Create(ctx context.Context, tenant models.Tenant, session *models.ClassSession) error {
	if !tenant.Valid() {
		return models.ErrMissingTenant
	}
	prepareSession(tenant, session, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertClassSessionQuery, session); err != nil {
		return fmt.Errorf("create class session: %w", err)
	}
	return nil
}

// BulkCreate inserts many sessions within a single transaction.
func (r *ClassSessionRepository) BulkCreate(ctx context.Context, tenant models.Tenant, sessions []models.ClassSession) (err error) {
	if !tenant.Valid() {
		return models.ErrMissingTenant
	}
	if len(sessions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create class sessions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range sessions {
		prepareSession(tenant, &sessions[i], now)
		if _, err = sqlx.NamedExecContext(ctx, tx, insertClassSessionQuery, &sessions[i]); err != nil {
			return fmt.Errorf("bulk insert class session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create class sessions: %w", err)
	}
	return nil
}

func prepareSession(tenant models.Tenant, session *models.ClassSession, now time.Time) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CenterID = tenant.CenterID()
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
}

// Update persists time, room and status of a session. A missing row yields sql.ErrNoRows.
func (r *ClassSessionRepository) Update(ctx context.Context, tenant models.Tenant, session *models.ClassSession) error {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return err
	}
	q.where("id = $%d", session.ID)
	session.CenterID = tenant.CenterID()
	session.UpdatedAt = time.Now().UTC()

	n := q.next()
	query := fmt.Sprintf("UPDATE class_sessions SET start_time = $%d, end_time = $%d, room_name = $%d, status = $%d, updated_at = $%d %s",
		n, n+1, n+2, n+3, n+4, q.clause())
	args := append(q.args, session.StartTime, session.EndTime, session.RoomName, session.Status, session.UpdatedAt)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update class session: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a session by id. A missing row yields sql.ErrNoRows.
func (r *ClassSessionRepository) Delete(ctx context.Context, tenant models.Tenant, id string) error {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return err
	}
	q.where("id = $%d", id)

	res, err := r.db.ExecContext(ctx, "DELETE FROM class_sessions "+q.clause(), q.args...)
	if err != nil {
		return fmt.Errorf("delete class session: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
