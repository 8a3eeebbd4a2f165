package domain

import (
	"context"
	"errors"
)

var (
	ErrLogNotFound = errors.New("daily log not found")
)

type DailyLogRepository interface {
	// Upsert creates the log for (user, goal, date) or overwrites the existing one.
	// On return entry.ID and timestamps reflect the stored row.
	Upsert(ctx context.Context, entry *DailyLog) error

	// GetByDate retrieves the log of a single day.
	GetByDate(ctx context.Context, userID, goalID, date string) (*DailyLog, error)

	// ListByGoal returns every log of a goal, newest date first.
	ListByGoal(ctx context.Context, userID, goalID string) ([]DailyLog, error)

	// ListByRange returns logs of a goal with from <= date <= to, newest first.
	ListByRange(ctx context.Context, userID, goalID, from, to string) ([]DailyLog, error)
}
