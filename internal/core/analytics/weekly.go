package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

const daysPerWeek = 7

// MondayOf returns the Monday starting the week that contains t, at midnight
// UTC. Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	day := domain.CalendarDay(t)
	offset := (int(day.Weekday()) + 6) % daysPerWeek
	return day.AddDate(0, 0, -offset)
}

// CalculateWeeklyMetrics aggregates the seven days starting at weekStart.
// weekStart is used as given; pass MondayOf(now) for the current week.
//
// The completion rate is completed days over scheduled days and is not
// clamped: inconsistent input may push it above 1.
func CalculateWeeklyMetrics(logs []domain.DailyLog, scheduled domain.Weekdays, weekStart time.Time) domain.WeeklyMetrics {
	start := domain.CalendarDay(weekStart)
	end := start.AddDate(0, 0, daysPerWeek-1)

	metrics := domain.WeeklyMetrics{
		WeekStart: start.Format(domain.DateLayout),
		WeekEnd:   end.Format(domain.DateLayout),
	}

	totalMinutes := 0
	timed := 0

	for _, l := range logs {
		day, ok := l.Day()
		if !ok || day.Before(start) || day.After(end) {
			continue
		}
		if l.Status != domain.StatusCompleted {
			continue
		}

		metrics.CompletedDays++

		if l.ActualWakeTime != nil {
			totalMinutes += l.ActualWakeTime.Hour()*60 + l.ActualWakeTime.Minute()
			timed++
		}
	}

	for i := 0; i < daysPerWeek; i++ {
		if scheduled.Contains(start.AddDate(0, 0, i).Weekday()) {
			metrics.TotalScheduledDays++
		}
	}

	if metrics.TotalScheduledDays > 0 {
		metrics.CompletionRate = float64(metrics.CompletedDays) / float64(metrics.TotalScheduledDays)
	}

	if timed > 0 {
		avg := FormatMinutes(int(math.Round(float64(totalMinutes) / float64(timed))))
		metrics.AvgWakeTime = &avg
	}

	return metrics
}

// FormatMinutes renders minutes after midnight as zero-padded HH:mm.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
