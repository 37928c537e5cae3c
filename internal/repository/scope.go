package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// scopedQuery accumulates WHERE conditions for a single tenant. It can only be
// built from a valid Tenant, and center_id is always the first placeholder.
type scopedQuery struct {
	conditions []string
	args       []interface{}
}

func newScopedQuery(tenant models.Tenant, column string) (*scopedQuery, error) {
	if !tenant.Valid() {
		return nil, models.ErrMissingTenant
	}
	return &scopedQuery{
		conditions: []string{column + " = $1"},
		args:       []interface{}{tenant.CenterID()},
	}, nil
}

// where appends a condition; format receives the next placeholder index.
func (q *scopedQuery) where(format string, value interface{}) *scopedQuery {
	q.conditions = append(q.conditions, fmt.Sprintf(format, len(q.args)+1))
	q.args = append(q.args, value)
	return q
}

// raw appends a condition that binds no argument.
func (q *scopedQuery) raw(condition string) *scopedQuery {
	q.conditions = append(q.conditions, condition)
	return q
}

func (q *scopedQuery) clause() string {
	return "WHERE " + strings.Join(q.conditions, " AND ")
}

func (q *scopedQuery) next() int {
	return len(q.args) + 1
}
