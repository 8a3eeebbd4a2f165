package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGoalInvalidUserID = errors.New("invalid user id")
	ErrInvalidTargetTime = errors.New("targetTime must be in HH:mm format (e.g., '05:20')")
	ErrInvalidWeekdays   = errors.New("daysOfWeek must be a non-empty array of 0-6")
	ErrInvalidHabitStack = errors.New("habitStack must have 3-7 items")
	ErrHabitStepEmpty    = errors.New("habit step cannot be empty")
	ErrHabitStepTooLong  = errors.New("habit step is too long (max 200 chars)")
	ErrInvalidTimezone   = errors.New("invalid timezone")
)

var clockRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	MinHabitStackSize = 3
	MaxHabitStackSize = 7
	MaxStepLen        = 200
	DefaultTimezone   = "Asia/Tokyo"
)

// Weekdays is a set of weekday indices, 0=Sunday through 6=Saturday.
type Weekdays []int

func (w Weekdays) Contains(day time.Weekday) bool {
	for _, d := range w {
		if d == int(day) {
			return true
		}
	}
	return false
}

func (w Weekdays) Validate() error {
	if len(w) == 0 {
		return ErrInvalidWeekdays
	}
	for _, d := range w {
		if d < 0 || d > 6 {
			return ErrInvalidWeekdays
		}
	}
	return nil
}

func normalizeWeekdays(days []int) Weekdays {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var unique Weekdays
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}

	sort.Ints(unique)
	return unique
}

type HabitStep struct {
	Step  string `json:"step"`
	Order int    `json:"order"`
}

type Goal struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	TargetTime    string      `json:"target_time"`
	Timezone      string      `json:"timezone"`
	DaysOfWeek    Weekdays    `json:"days_of_week"`
	HabitStack    []HabitStep `json:"habit_stack"`
	IsActive      bool        `json:"is_active"`
	CurrentStreak int         `json:"current_streak"`
	LongestStreak int         `json:"longest_streak"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func ValidateTargetTime(s string) error {
	if !clockRegex.MatchString(s) {
		return ErrInvalidTargetTime
	}
	return nil
}

func normalizeHabitStack(steps []HabitStep) ([]HabitStep, error) {
	if len(steps) < MinHabitStackSize || len(steps) > MaxHabitStackSize {
		return nil, ErrInvalidHabitStack
	}

	out := make([]HabitStep, 0, len(steps))
	for i, s := range steps {
		text := strings.TrimSpace(s.Step)
		if text == "" {
			return nil, ErrHabitStepEmpty
		}
		if len([]rune(text)) > MaxStepLen {
			return nil, ErrHabitStepTooLong
		}
		order := s.Order
		if order <= 0 {
			order = i + 1
		}
		out = append(out, HabitStep{Step: text, Order: order})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func NewGoal(userID, targetTime, timezone string, daysOfWeek []int, stack []HabitStep) (*Goal, error) {
	if userID == "" {
		return nil, ErrGoalInvalidUserID
	}

	targetTime = strings.TrimSpace(targetTime)
	if err := ValidateTargetTime(targetTime); err != nil {
		return nil, err
	}

	days := normalizeWeekdays(daysOfWeek)
	if err := days.Validate(); err != nil {
		return nil, err
	}

	steps, err := normalizeHabitStack(stack)
	if err != nil {
		return nil, err
	}

	if timezone == "" {
		timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidTimezone
	}

	now := time.Now().UTC()

	return &Goal{
		ID:         uuid.New().String(),
		UserID:     userID,
		TargetTime: targetTime,
		Timezone:   timezone,
		DaysOfWeek: days,
		HabitStack: steps,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Location falls back to UTC when the stored timezone cannot be loaded.
func (g *Goal) Location() *time.Location {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (g *Goal) UpdateStreak(current, longest int) {
	g.CurrentStreak = current
	g.LongestStreak = longest
	g.UpdatedAt = time.Now().UTC()
}
