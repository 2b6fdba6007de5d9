// Package streak tracks consecutive-practice-day streaks.
//
// Days are UTC calendar days. A user practicing at 23:50 in one timezone
// and 00:10 in another still gets a single, consistent day boundary — the
// one policy is applied for everyone rather than per-user.
package streak

import "time"

// DayFormat is the canonical encoding of a practice day.
const DayFormat = "2006-01-02"

// DayOf truncates a timestamp to its UTC calendar day string.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Update folds one practice day into the streak state.
//
// Policy:
//   - no prior practice: streak becomes 1
//   - same day: unchanged (repeat practice does not advance the streak)
//   - next day: streak + 1
//   - any longer gap: reset to 1 (never 0 — a zero streak only exists
//     before the first practice)
func Update(lastDay string, current, longest int, today string) (newStreak, newLongest int) {
	switch {
	case lastDay == "":
		newStreak = 1
	case today == lastDay:
		newStreak = current
	case today == nextDay(lastDay):
		newStreak = current + 1
	default:
		newStreak = 1
	}

	newLongest = longest
	if newStreak > newLongest {
		newLongest = newStreak
	}
	return newStreak, newLongest
}

func nextDay(day string) string {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DayFormat)
}
