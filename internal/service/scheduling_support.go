package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type roomInvalidator interface {
	Invalidate(ctx context.Context, tenant models.Tenant)
}

func requireTenant(tenant models.Tenant) error {
	if !tenant.Valid() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "center scope is required")
	}
	return nil
}

func validationError(err error, message string) error {
	if err == nil {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func requireInterval(start, end time.Time) error {
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	return nil
}

// normaliseRoom trims the name and maps blank to nil.
func normaliseRoom(room *string) *string {
	if room == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*room)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDateBound accepts YYYY-MM-DD or RFC3339. A bare date used as an upper bound
// covers the whole day, so the returned time is the following midnight.
func parseDateBound(value string, upper bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		if upper {
			return t.AddDate(0, 0, 1), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, validationError(err, "dates must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type classFinder interface {
	FindByID(ctx context.Context, tenant models.Tenant, id string) (*models.Class, error)
}

func findClass(ctx context.Context, classes classFinder, tenant models.Tenant, classID string) (*models.Class, error) {
	class, err := classes.FindByID(ctx, tenant, classID)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	return class, nil
}

func conflictError(result models.ConflictResult) error {
	cause := &models.SessionConflictError{Message: "session conflicts with existing sessions", Result: result}
	appErr := appErrors.Wrap(cause, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, cause.Message)
	appErr.Details = result
	return appErr
}
