package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(value string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || len(part) == 0 || len(part) > 2 || n < 0 || n > limits[i] {
			return Clock{}, fmt.Errorf("invalid time %q", value)
		}
		fields[i] = n
	}
	return Clock{Hour: fields[0], Minute: fields[1], Second: fields[2]}, nil
}

// On combines the clock with the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, c.Second, 0, date.Location())
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.seconds() < other.seconds()
}

func (c Clock) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Occurrence is one concrete session produced from a template.
type Occurrence struct {
	ClassID  string
	Start    time.Time
	End      time.Time
	RoomName *string
}

// Key identifies an occurrence for duplicate detection.
func (o Occurrence) Key() OccurrenceKey {
	return OccurrenceKey{ClassID: o.ClassID, Start: o.Start.UTC()}
}

// OccurrenceKey is the (class, start) identity of a session.
type OccurrenceKey struct {
	ClassID string
	Start   time.Time
}

// SessionKey returns the duplicate-detection key of a persisted session.
func SessionKey(s models.ClassSession) OccurrenceKey {
	return OccurrenceKey{ClassID: s.ClassID, Start: s.StartTime.UTC()}
}

// ExpandTemplate lists every occurrence of the template between from and to,
// both calendar days inclusive, in the location of from.
func ExpandTemplate(tpl models.ClassScheduleTemplate, from, to time.Time) ([]Occurrence, error) {
	if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
		return nil, fmt.Errorf("template %s: day of week %d out of range", tpl.ID, tpl.DayOfWeek)
	}
	startClock, err := ParseClock(tpl.StartTime)
	if err != nil {
		return nil, fmt.Errorf("template %s: start: %w", tpl.ID, err)
	}
	endClock, err := ParseClock(tpl.EndTime)
	if err != nil {
		return nil, fmt.Errorf("template %s: end: %w", tpl.ID, err)
	}
	if !startClock.Before(endClock) {
		return nil, fmt.Errorf("template %s: start %s must be before end %s", tpl.ID, tpl.StartTime, tpl.EndTime)
	}

	first, _ := DayBounds(from)
	last, _ := DayBounds(to.In(from.Location()))
	if last.Before(first) {
		return nil, nil
	}

	offset := (tpl.DayOfWeek - int(first.Weekday()) + 7) % 7
	var out []Occurrence
	for day := first.AddDate(0, 0, offset); !day.After(last); day = day.AddDate(0, 0, 7) {
		out = append(out, Occurrence{
			ClassID:  tpl.ClassID,
			Start:    startClock.On(day),
			End:      endClock.On(day),
			RoomName: tpl.RoomName,
		})
	}
	return out, nil
}

// TemplateError records a template that could not be expanded.
type TemplateError struct {
	TemplateID string
	Err        error
}

// Plan is the outcome of expanding templates against existing sessions.
type Plan struct {
	Occurrences []Occurrence
	Skipped     []TemplateError
	Duplicates  int
}

// PlanGeneration expands every template over [from, to] and drops occurrences
// whose (class, start) already exists or was produced earlier in the same plan.
func PlanGeneration(templates []models.ClassScheduleTemplate, from, to time.Time, existing []models.ClassSession) Plan {
	seen := make(map[OccurrenceKey]struct{}, len(existing))
	for _, s := range existing {
		seen[SessionKey(s)] = struct{}{}
	}

	var plan Plan
	for _, tpl := range templates {
		occurrences, err := ExpandTemplate(tpl, from, to)
		if err != nil {
			plan.Skipped = append(plan.Skipped, TemplateError{TemplateID: tpl.ID, Err: err})
			continue
		}
		for _, occ := range occurrences {
			key := occ.Key()
			if _, dup := seen[key]; dup {
				plan.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			plan.Occurrences = append(plan.Occurrences, occ)
		}
	}
	return plan
}
