// Package analytics holds the pure calculations behind the dashboard and the
// weekly reflection: streaks and weekly completion metrics.
//
// Nothing here reads the system clock; callers pass the reference day.
package analytics

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

// CalculateStreak counts consecutive completed days ending at today.
// The walk goes back one day at a time and stops at the first day without a
// completed log, so a missing or non-completed log for today yields 0.
func CalculateStreak(logs []domain.DailyLog, today time.Time) int {
	days := completedDays(logs)
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	streak := 0
	expected := domain.CalendarDay(today)

	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}

// IsStreakActive reports whether a completed log exists for today or the day
// before. It is looser than CalculateStreak and keeps a streak "alive" for one
// grace day.
func IsStreakActive(logs []domain.DailyLog, today time.Time) bool {
	day := domain.CalendarDay(today)
	yesterday := day.AddDate(0, 0, -1)

	for _, d := range completedDays(logs) {
		if d.Equal(day) || d.Equal(yesterday) {
			return true
		}
	}
	return false
}

// LongestStreak returns the longest run of consecutive completed days found
// anywhere in the history.
func LongestStreak(logs []domain.DailyLog) int {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, d := range completedDays(logs) {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return longest
}

// completedDays skips logs whose date does not parse.
func completedDays(logs []domain.DailyLog) []time.Time {
	var days []time.Time
	for _, l := range logs {
		if l.Status != domain.StatusCompleted {
			continue
		}
		if d, ok := l.Day(); ok {
			days = append(days, d)
		}
	}
	return days
}
