package models

import "strings"

// ConflictResult partitions persisted sessions colliding with a candidate.
type ConflictResult struct {
	HasConflicts     bool           `json:"has_conflicts"`
	RoomConflicts    []ClassSession `json:"room_conflicts"`
	TeacherConflicts []ClassSession `json:"teacher_conflicts"`
}

// NewConflictResult derives HasConflicts from the two lists and never returns nil slices.
func NewConflictResult(room, teacher []ClassSession) ConflictResult {
	if room == nil {
		room = []ClassSession{}
	}
	if teacher == nil {
		teacher = []ClassSession{}
	}
	return ConflictResult{
		HasConflicts:     len(room) > 0 || len(teacher) > 0,
		RoomConflicts:    room,
		TeacherConflicts: teacher,
	}
}

// SessionConflictError is returned when a checked write collides with existing sessions.
type SessionConflictError struct {
	Message string         `json:"message"`
	Result  ConflictResult `json:"result"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// UnknownClassError lists class ids that do not exist in the tenant.
type UnknownClassError struct {
	ClassIDs []string `json:"class_ids"`
}

// Error implements the error interface.
func (e *UnknownClassError) Error() string {
	return "class not found: " + strings.Join(e.ClassIDs, ", ")
}
