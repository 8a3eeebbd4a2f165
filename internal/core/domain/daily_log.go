package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for DailyLog.Date and week bounds.
const DateLayout = "2006-01-02"

var (
	ErrInvalidLogDate   = errors.New("invalid log date (must be YYYY-MM-DD)")
	ErrInvalidLogStatus = errors.New("status must be 'completed', 'snoozed', or 'skipped'")
	ErrInvalidWakeTime  = errors.New("invalid wake time format (must be HH:MM 24h)")
	ErrInvalidSteps     = errors.New("completed steps must reference steps of the habit stack")
	ErrInvalidDateRange = errors.New("from must not be after to")
)

type LogStatus string

const (
	StatusCompleted LogStatus = "completed"
	StatusSnoozed   LogStatus = "snoozed"
	StatusSkipped   LogStatus = "skipped"
)

func (s LogStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusSnoozed, StatusSkipped:
		return true
	}
	return false
}

// DailyLog is one day's outcome for one goal.
type DailyLog struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	GoalID string `json:"goal_id" db:"goal_id"`

	Date           string     `json:"date" db:"date"`
	Status         LogStatus  `json:"status" db:"status"`
	ActualWakeTime *time.Time `json:"actual_wake_time,omitempty" db:"actual_wake_time"`
	CompletedSteps []int      `json:"completed_steps" db:"-"`
	SnoozeReason   *string    `json:"snooze_reason,omitempty" db:"snooze_reason"`
	SkipReason     *string    `json:"skip_reason,omitempty" db:"skip_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewDailyLog builds a log for the given calendar day. The reason is kept only
// when it matches the status: a snooze reason for snoozed days, a skip reason
// for skipped days.
func NewDailyLog(userID, goalID string, day time.Time, status LogStatus, reason string) *DailyLog {
	now := time.Now().UTC()

	entry := &DailyLog{
		UserID:         userID,
		GoalID:         goalID,
		Date:           day.Format(DateLayout),
		Status:         status,
		CompletedSteps: []int{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	reason = strings.TrimSpace(reason)
	if reason != "" {
		switch status {
		case StatusSnoozed:
			entry.SnoozeReason = &reason
		case StatusSkipped:
			entry.SkipReason = &reason
		}
	}

	return entry
}

func (l *DailyLog) Validate() error {
	if strings.TrimSpace(l.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(l.GoalID) == "" {
		return errors.New("goal_id is required")
	}
	if _, err := ParseDate(l.Date); err != nil {
		return ErrInvalidLogDate
	}
	if !l.Status.Valid() {
		return ErrInvalidLogStatus
	}
	for _, step := range l.CompletedSteps {
		if step < 1 {
			return ErrInvalidSteps
		}
	}
	return nil
}

// Day returns the log's calendar date as midnight UTC.
func (l DailyLog) Day() (time.Time, bool) {
	d, err := ParseDate(l.Date)
	return d, err == nil
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// CalendarDay drops the clock part of t, keeping the year, month and day as
// seen in t's own location, and returns that day at midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseClock parses an "HH:MM" wake time and returns hour and minute.
func ParseClock(s string) (int, int, error) {
	if !clockRegex.MatchString(s) {
		return 0, 0, ErrInvalidWakeTime
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, ErrInvalidWakeTime
	}
	return t.Hour(), t.Minute(), nil
}
