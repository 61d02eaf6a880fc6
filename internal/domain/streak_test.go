package domain

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 2, 15, 9, 30, 0, 0, time.UTC)
	cases := []struct {
		name       string
		current    int
		lastActive time.Time
		want       int
	}{
		{"never active", 0, time.Time{}, 1},
		{"same day", 3, now.Add(-2 * time.Hour), 3},
		{"previous day", 3, now.AddDate(0, 0, -1), 4},
		{"late previous day", 1, time.Date(2026, 2, 14, 23, 59, 0, 0, time.UTC), 2},
		{"gap of two days", 5, now.AddDate(0, 0, -2), 1},
		{"zero streak with activity", 0, now.AddDate(0, 0, -1), 1},
	}
	for _, c := range cases {
		if got := NextStreak(c.current, c.lastActive, now); got != c.want {
			t.Fatalf("%s: NextStreak(%d)=%d, want %d", c.name, c.current, got, c.want)
		}
	}
}
