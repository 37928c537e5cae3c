package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// ClassRepository reads the classes that own sessions.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by id within the tenant.
func (r *ClassRepository) FindByID(ctx context.Context, tenant models.Tenant, id string) (*models.Class, error) {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return nil, err
	}
	q.where("id = $%d", id)

	query := "SELECT id, center_id, name, course_id, teacher_id FROM classes " + q.clause()
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, q.args...); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListTeachers resolves the teacher of each class id. Unknown ids are omitted.
func (r *ClassRepository) ListTeachers(ctx context.Context, tenant models.Tenant, classIDs []string) ([]models.ClassTeacher, error) {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return nil, err
	}
	if len(classIDs) == 0 {
		return nil, nil
	}
	q.where("id = ANY($%d)", pq.Array(classIDs))

	query := "SELECT id AS class_id, teacher_id FROM classes " + q.clause()
	var teachers []models.ClassTeacher
	if err := r.db.SelectContext(ctx, &teachers, query, q.args...); err != nil {
		return nil, fmt.Errorf("list class teachers: %w", err)
	}
	return teachers, nil
}

// ListStudentIDs returns the ids of students enrolled in the class.
func (r *ClassRepository) ListStudentIDs(ctx context.Context, tenant models.Tenant, classID string) ([]string, error) {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return nil, err
	}
	q.where("class_id = $%d", classID)

	query := "SELECT student_id FROM class_students " + q.clause() + " ORDER BY student_id ASC"
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, q.args...); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return ids, nil
}
