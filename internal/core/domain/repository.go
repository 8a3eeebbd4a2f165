package domain

import (
	"context"
	"errors"
)

var (
	ErrGoalNotFound    = errors.New("no active goal found")
	ErrSummaryNotFound = errors.New("weekly summary not found")
	ErrSummaryConflict = errors.New("weekly summary already exists")
)

type GoalRepository interface {
	// Create persists a new goal.
	Create(ctx context.Context, goal *Goal) error

	// GetByID retrieves a goal by its unique identifier, active or not.
	GetByID(ctx context.Context, id string) (*Goal, error)

	// GetActive returns the most recently created active goal of the user.
	GetActive(ctx context.Context, userID string) (*Goal, error)

	// ReplaceActive deactivates every active goal of goal.UserID and stores
	// goal atomically. On failure the previous active goal is untouched.
	ReplaceActive(ctx context.Context, goal *Goal) error

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type WeeklySummaryRepository interface {
	// GetByWeek returns ErrSummaryNotFound when the week has no stored reflection.
	GetByWeek(ctx context.Context, userID, weekStart string) (*WeeklySummary, error)

	// Create fails with ErrSummaryConflict when the week already has one.
	Create(ctx context.Context, summary *WeeklySummary) error
}
