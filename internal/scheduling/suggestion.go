package scheduling

import (
	"encoding/json"
	"sort"
	"time"
)

// SuggestionType tags a Suggestion variant on the wire.
type SuggestionType string

const (
	SuggestionTypeTime SuggestionType = "time"
	SuggestionTypeRoom SuggestionType = "room"
)

// Suggestion is an alternative to a blocked slot. The only implementations are
// TimeSuggestion and RoomSuggestion.
type Suggestion interface {
	Type() SuggestionType
	json.Marshaler
	sealed()
}

// TimeSuggestion proposes moving the session to a new start in the same room.
type TimeSuggestion struct {
	Start time.Time
}

// Type implements Suggestion.
func (TimeSuggestion) Type() SuggestionType { return SuggestionTypeTime }

func (TimeSuggestion) sealed() {}

// MarshalJSON renders {"type":"time","value":"<RFC3339>"}.
func (s TimeSuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSuggestion{Type: SuggestionTypeTime, Value: s.Start.Format(time.RFC3339)})
}

// RoomSuggestion proposes keeping the time and moving to another room.
type RoomSuggestion struct {
	Room string
}

// Type implements Suggestion.
func (RoomSuggestion) Type() SuggestionType { return SuggestionTypeRoom }

func (RoomSuggestion) sealed() {}

// MarshalJSON renders {"type":"room","value":"<room>"}.
func (s RoomSuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSuggestion{Type: SuggestionTypeRoom, Value: s.Room})
}

type wireSuggestion struct {
	Type  SuggestionType `json:"type"`
	Value string         `json:"value"`
}

// NextAvailableStart pushes start forward past every blocker in the contiguous
// blocked region until a gap of length dur opens. The slot must finish before
// limit; otherwise ok is false. Blockers need not be sorted.
func NextAvailableStart(start time.Time, dur time.Duration, blockers []Interval, limit time.Time) (time.Time, bool) {
	if dur <= 0 {
		return time.Time{}, false
	}
	sorted := make([]Interval, 0, len(blockers))
	for _, b := range blockers {
		if b.Valid() {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	cursor := start
	for _, b := range sorted {
		if !b.Start.Before(cursor.Add(dur)) {
			break
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Add(dur).After(limit) {
		return time.Time{}, false
	}
	return cursor, true
}

// SuggestTime returns the same-day next free start for the window, or nil when
// the day has no room left or the slot is already free.
func SuggestTime(window Interval, dur time.Duration, blockers []Interval) *TimeSuggestion {
	_, dayEnd := DayBounds(window.Start)
	next, ok := NextAvailableStart(window.Start, dur, blockers, dayEnd)
	if !ok || next.Equal(window.Start) {
		return nil
	}
	return &TimeSuggestion{Start: next}
}

// Assemble orders suggestions: the time suggestion first, then rooms in discovery order.
func Assemble(timeSuggestion *TimeSuggestion, rooms []string) []Suggestion {
	out := make([]Suggestion, 0, len(rooms)+1)
	if timeSuggestion != nil {
		out = append(out, *timeSuggestion)
	}
	for _, room := range rooms {
		out = append(out, RoomSuggestion{Room: room})
	}
	return out
}
