package dto

import (
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// ListSessionsQuery filters the session listing. Dates accept YYYY-MM-DD or RFC3339.
type ListSessionsQuery struct {
	StartDate string `form:"startDate" validate:"required"`
	EndDate   string `form:"endDate" validate:"required"`
	ClassID   string `form:"classId"`
}

// ExportSessionsQuery extends the listing filter with an output format.
type ExportSessionsQuery struct {
	ListSessionsQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// CreateSessionRequest creates a single session.
type CreateSessionRequest struct {
	ClassID        string    `json:"classId" validate:"required"`
	StartTime      time.Time `json:"startTime" validate:"required"`
	EndTime        time.Time `json:"endTime" validate:"required"`
	RoomName       *string   `json:"roomName" validate:"omitempty,max=120"`
	Status         string    `json:"status" validate:"omitempty,oneof=SCHEDULED CANCELLED COMPLETED"`
	CheckConflicts bool      `json:"checkConflicts"`
}

// UpdateSessionRequest applies only the supplied fields. An empty roomName clears the room.
type UpdateSessionRequest struct {
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	RoomName       *string    `json:"roomName" validate:"omitempty,max=120"`
	Status         *string    `json:"status" validate:"omitempty,oneof=SCHEDULED CANCELLED COMPLETED"`
	CheckConflicts bool       `json:"checkConflicts"`
}

// UpdateSessionResponse returns the stored session and its times before the update.
type UpdateSessionResponse struct {
	Session           models.ClassSession `json:"session"`
	PreviousStartTime time.Time           `json:"previousStartTime"`
	PreviousEndTime   time.Time           `json:"previousEndTime"`
}

// ConflictCheckRequest describes a candidate slot for a single conflict check.
type ConflictCheckRequest struct {
	ClassID          string    `json:"classId" validate:"required"`
	StartTime        time.Time `json:"startTime" validate:"required"`
	EndTime          time.Time `json:"endTime" validate:"required"`
	RoomName         *string   `json:"roomName" validate:"omitempty,max=120"`
	ExcludeSessionID string    `json:"excludeSessionId"`
}

// BatchSessionInput is one not-yet-persisted session of a batch.
type BatchSessionInput struct {
	ID        string    `json:"id" validate:"required"`
	ClassID   string    `json:"classId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	RoomName  *string   `json:"roomName" validate:"omitempty,max=120"`
	Status    string    `json:"status" validate:"omitempty,oneof=SCHEDULED CANCELLED COMPLETED"`
}

// BatchConflictRequest carries candidate sessions for pairwise analysis.
type BatchConflictRequest struct {
	Sessions []BatchSessionInput `json:"sessions" validate:"dive"`
}

// SuggestionRequest asks for alternatives to a blocked slot. Duration is in minutes
// and overrides endTime - startTime.
type SuggestionRequest struct {
	ClassID   string    `json:"classId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	RoomName  *string   `json:"roomName" validate:"omitempty,max=120"`
	Duration  *int      `json:"duration" validate:"omitempty,min=1,max=1440"`
}

// GenerateSessionsRequest expands templates over an inclusive date range.
type GenerateSessionsRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// GenerateSessionsResponse reports how many sessions were inserted.
type GenerateSessionsResponse struct {
	GeneratedCount int `json:"generatedCount"`
}

// ImportPreviewRow is one spreadsheet row after parsing and conflict analysis.
type ImportPreviewRow struct {
	Row       int        `json:"row"`
	ID        string     `json:"id"`
	ClassID   string     `json:"classId"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	RoomName  *string    `json:"roomName,omitempty"`
	Valid     bool       `json:"valid"`
	Error     string     `json:"error,omitempty"`
	Conflict  bool       `json:"conflict"`
}

// ImportPreviewResponse summarises an import preview.
type ImportPreviewResponse struct {
	Rows          []ImportPreviewRow `json:"rows"`
	ValidCount    int                `json:"validCount"`
	InvalidCount  int                `json:"invalidCount"`
	ConflictCount int                `json:"conflictCount"`
}
