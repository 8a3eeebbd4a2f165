package domain

import "time"

type HabitStackPromptInput struct {
	TargetTime  string
	UserContext string
}

type HabitStackResponse struct {
	HabitStack []HabitStep `json:"habit_stack"`
	Rationale  string      `json:"rationale"`
}

type WeeklyReflectionInput struct {
	WeekStart      string
	WeekEnd        string
	CompletionRate float64
	CurrentStreak  int
	AvgWakeTime    *string
	TargetTime     string
	SnoozeReasons  []string
	SkipReasons    []string
}

type WeeklyReflectionResponse struct {
	Summary       string   `json:"summary"`
	Insights      []string `json:"insights"`
	Suggestions   []string `json:"suggestions"`
	Encouragement string   `json:"encouragement"`
}

// WeeklySummary is a stored reflection, one per user and week.
type WeeklySummary struct {
	ID             string                   `json:"id"`
	UserID         string                   `json:"user_id"`
	WeekStart      string                   `json:"week_start"`
	WeekEnd        string                   `json:"week_end"`
	CompletionRate float64                  `json:"completion_rate"`
	CurrentStreak  int                      `json:"current_streak"`
	AvgWakeTime    *string                  `json:"avg_wake_time"`
	Reflection     WeeklyReflectionResponse `json:"reflection"`
	CreatedAt      time.Time                `json:"created_at"`
}
