package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

type GoalService struct {
	repo            domain.GoalRepository
	defaultTimezone string
}

func NewGoalService(repo domain.GoalRepository, defaultTimezone string) *GoalService {
	if defaultTimezone == "" {
		defaultTimezone = domain.DefaultTimezone
	}
	return &GoalService{
		repo:            repo,
		defaultTimezone: defaultTimezone,
	}
}

type CreateGoalInput struct {
	UserID     string
	TargetTime string
	Timezone   string
	DaysOfWeek []int
	HabitStack []domain.HabitStep
}

// Create replaces the user's active goal. Older goals stay stored but inactive
// so their logs keep pointing at something.
func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	tz := input.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}

	goal, err := domain.NewGoal(input.UserID, input.TargetTime, tz, input.DaysOfWeek, input.HabitStack)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceActive(ctx, goal); err != nil {
		return nil, fmt.Errorf("goal service: failed to replace active goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) GetActive(ctx context.Context, userID string) (*domain.Goal, error) {
	if userID == "" {
		return nil, domain.ErrGoalInvalidUserID
	}
	return s.repo.GetActive(ctx, userID)
}
