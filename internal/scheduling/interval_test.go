package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.January, 20, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
		{"partial", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 30), at(10, 30)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"adjacent", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"disjoint", Interval{at(8, 0), at(9, 0)}, Interval{at(13, 0), at(14, 0)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.expected, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Interval{at(9, 0), at(10, 0)}.Valid())
	assert.False(t, Interval{at(10, 0), at(10, 0)}.Valid())
	assert.False(t, Interval{at(11, 0), at(10, 0)}.Valid())
	assert.Equal(t, time.Hour, Interval{at(9, 0), at(10, 0)}.Duration())
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(at(15, 45))
	assert.Equal(t, at(0, 0), start)
	assert.Equal(t, at(0, 0).AddDate(0, 0, 1), end)
}
