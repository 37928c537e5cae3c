package events

import (
	"context"
	"time"
)

// Subjects published by the scheduler.
const (
	SubjectSessionRescheduled = "session.rescheduled"
	SubjectSessionsGenerated  = "sessions.generated"
)

// Publisher delivers domain events to interested collaborators.
type Publisher interface {
	Publish(ctx context.Context, subject string, event interface{}) error
}

// SessionRescheduledEvent is emitted when an update moves a session in time.
type SessionRescheduledEvent struct {
	EventType         string    `json:"event_type"`
	CenterID          string    `json:"center_id"`
	SessionID         string    `json:"session_id"`
	ClassID           string    `json:"class_id"`
	PreviousStartTime time.Time `json:"previous_start_time"`
	PreviousEndTime   time.Time `json:"previous_end_time"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	RoomName          *string   `json:"room_name,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// SessionsGeneratedEvent is emitted after a generation run inserted sessions.
type SessionsGeneratedEvent struct {
	EventType      string    `json:"event_type"`
	CenterID       string    `json:"center_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	GeneratedCount int       `json:"generated_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
