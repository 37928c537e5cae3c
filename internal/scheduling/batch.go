package scheduling

import (
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// Span returns the day-aligned window covering every session, or false for an empty input.
func Span(sessions []models.AnnotatedSession) (time.Time, time.Time, bool) {
	if len(sessions) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end := sessions[0].StartTime, sessions[0].EndTime
	for _, s := range sessions[1:] {
		if s.StartTime.Before(start) {
			start = s.StartTime
		}
		if s.EndTime.After(end) {
			end = s.EndTime
		}
	}
	dayStart, _ := DayBounds(start)
	_, dayEnd := DayBounds(end)
	if end.Equal(startOfDay(end)) {
		dayEnd = end
	}
	return dayStart, dayEnd, true
}

func startOfDay(t time.Time) time.Time {
	start, _ := DayBounds(t)
	return start
}

// Collide reports whether two distinct sessions compete for the same room or teacher.
func Collide(a, b models.AnnotatedSession) bool {
	if a.ID != "" && a.ID == b.ID {
		return false
	}
	if !a.Status.Active() || !b.Status.Active() {
		return false
	}
	if !Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
		return false
	}
	if a.RoomName != nil && b.RoomName != nil && *a.RoomName != "" && *a.RoomName == *b.RoomName {
		return true
	}
	return a.TeacherID != nil && b.TeacherID != nil && *a.TeacherID != "" && *a.TeacherID == *b.TeacherID
}

// AnalyzeBatch flags every candidate that collides with another candidate or with a
// persisted session. The result has one entry per candidate id.
func AnalyzeBatch(candidates, persisted []models.AnnotatedSession) map[string]bool {
	result := make(map[string]bool, len(candidates))
	if len(candidates) == 0 {
		return result
	}

	working := make([]models.AnnotatedSession, 0, len(candidates)+len(persisted))
	working = append(working, candidates...)
	working = append(working, persisted...)

	for i, candidate := range candidates {
		if _, seen := result[candidate.ID]; !seen {
			result[candidate.ID] = false
		}
		for j := i + 1; j < len(working); j++ {
			if !Collide(candidate, working[j]) {
				continue
			}
			result[candidate.ID] = true
			if j < len(candidates) {
				result[working[j].ID] = true
			}
		}
	}
	return result
}
