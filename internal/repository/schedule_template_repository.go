package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// ScheduleTemplateRepository reads weekly recurrence templates.
type ScheduleTemplateRepository struct {
	db *sqlx.DB
}

// NewScheduleTemplateRepository creates a new template repository.
func NewScheduleTemplateRepository(db *sqlx.DB) *ScheduleTemplateRepository {
	return &ScheduleTemplateRepository{db: db}
}

// ListByCenter returns every template of the tenant ordered by class and weekday.
func (r *ScheduleTemplateRepository) ListByCenter(ctx context.Context, tenant models.Tenant) ([]models.ClassScheduleTemplate, error) {
	q, err := newScopedQuery(tenant, "center_id")
	if err != nil {
		return nil, err
	}

	query := "SELECT id, center_id, class_id, day_of_week, start_time, end_time, room_name FROM class_schedules " + q.clause() + " ORDER BY class_id ASC, day_of_week ASC, start_time ASC"
	var templates []models.ClassScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, q.args...); err != nil {
		return nil, fmt.Errorf("list schedule templates: %w", err)
	}
	return templates, nil
}
