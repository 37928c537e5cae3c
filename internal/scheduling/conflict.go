package scheduling

import (
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// Candidate is a session being checked before it is saved.
type Candidate struct {
	ClassID   string
	Start     time.Time
	End       time.Time
	RoomName  *string
	TeacherID *string
}

// Interval returns the candidate's time window.
func (c Candidate) Interval() Interval {
	return Interval{Start: c.Start, End: c.End}
}

// HasRoom reports whether a room check applies.
func (c Candidate) HasRoom() bool {
	return c.RoomName != nil && *c.RoomName != ""
}

// HasTeacher reports whether a teacher check applies.
func (c Candidate) HasTeacher() bool {
	return c.TeacherID != nil && *c.TeacherID != ""
}

// RoomConflicts returns the active sessions in the candidate's room that overlap it.
func RoomConflicts(candidate Candidate, pool []models.ClassSession, excludeID string) []models.ClassSession {
	conflicts := []models.ClassSession{}
	if !candidate.HasRoom() {
		return conflicts
	}
	for _, existing := range pool {
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if !existing.Status.Active() || existing.Room() != *candidate.RoomName {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, existing.StartTime, existing.EndTime) {
			conflicts = append(conflicts, existing)
		}
	}
	return conflicts
}

// TeacherConflicts returns the active sessions taught by the candidate's teacher that overlap it.
func TeacherConflicts(candidate Candidate, pool []models.AnnotatedSession, excludeID string) []models.ClassSession {
	conflicts := []models.ClassSession{}
	if !candidate.HasTeacher() {
		return conflicts
	}
	for _, existing := range pool {
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if !existing.Status.Active() || existing.TeacherID == nil || *existing.TeacherID != *candidate.TeacherID {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, existing.StartTime, existing.EndTime) {
			conflicts = append(conflicts, existing.ClassSession)
		}
	}
	return conflicts
}

// Classify runs both checks independently; a candidate may collide on room, teacher, both or neither.
func Classify(candidate Candidate, roomPool []models.ClassSession, teacherPool []models.AnnotatedSession, excludeID string) models.ConflictResult {
	return models.NewConflictResult(
		RoomConflicts(candidate, roomPool, excludeID),
		TeacherConflicts(candidate, teacherPool, excludeID),
	)
}
