package domain

type WeeklyMetrics struct {
	WeekStart          string  `json:"week_start"`
	WeekEnd            string  `json:"week_end"`
	CompletionRate     float64 `json:"completion_rate"`
	CompletedDays      int     `json:"completed_days"`
	TotalScheduledDays int     `json:"total_scheduled_days"`
	AvgWakeTime        *string `json:"avg_wake_time"`
}

type Dashboard struct {
	Goal             *Goal         `json:"goal"`
	Today            string        `json:"today"`
	TodayLog         *DailyLog     `json:"today_log"`
	IsScheduledToday bool          `json:"is_scheduled_today"`
	CurrentStreak    int           `json:"current_streak"`
	StreakActive     bool          `json:"streak_active"`
	LongestStreak    int           `json:"longest_streak"`
	Weekly           WeeklyMetrics `json:"weekly"`
}
