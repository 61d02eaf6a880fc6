package domain

import "time"

// NextStreak returns the streak after activity at now, given the previous
// streak and the time of the last activity. Days are UTC calendar days.
// Activity on the same day keeps the streak, the following day extends it,
// and any gap resets it to 1.
func NextStreak(current int, lastActive, now time.Time) int {
	if lastActive.IsZero() || current <= 0 {
		return 1
	}
	last := civilDay(lastActive)
	today := civilDay(now)
	switch {
	case today.Equal(last):
		return current
	case today.Equal(last.AddDate(0, 0, 1)):
		return current + 1
	default:
		return 1
	}
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
