package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-rise/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

type DashboardService struct {
	goalRepo domain.GoalRepository
	logRepo  domain.DailyLogRepository
	clock    Clock
}

func NewDashboardService(goalRepo domain.GoalRepository, logRepo domain.DailyLogRepository, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	return &DashboardService{
		goalRepo: goalRepo,
		logRepo:  logRepo,
		clock:    clock,
	}
}

func (s *DashboardService) Get(ctx context.Context, userID string) (*domain.Dashboard, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByGoal(ctx, userID, goal.ID)
	if err != nil {
		return nil, err
	}

	loc := goal.Location()
	logs = localize(logs, loc)
	now := s.clock().In(loc)
	today := now.Format(domain.DateLayout)

	dash := &domain.Dashboard{
		Goal:             goal,
		Today:            today,
		IsScheduledToday: goal.DaysOfWeek.Contains(now.Weekday()),
		CurrentStreak:    analytics.CalculateStreak(logs, now),
		StreakActive:     analytics.IsStreakActive(logs, now),
		LongestStreak:    analytics.LongestStreak(logs),
		Weekly:           analytics.CalculateWeeklyMetrics(logs, goal.DaysOfWeek, analytics.MondayOf(now)),
	}

	todayLog, err := s.logRepo.GetByDate(ctx, userID, goal.ID, today)
	switch {
	case errors.Is(err, domain.ErrLogNotFound):
	case err != nil:
		return nil, fmt.Errorf("dashboard service: failed to load today's log: %w", err)
	default:
		dash.TodayLog = &localize([]domain.DailyLog{*todayLog}, loc)[0]
	}

	return dash, nil
}
