package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

const defaultHistoryDays = 30

type ChecklistService struct {
	goalRepo domain.GoalRepository
	logRepo  domain.DailyLogRepository
	streaks  StreakEnqueuer
	clock    Clock
}

func NewChecklistService(goalRepo domain.GoalRepository, logRepo domain.DailyLogRepository, streaks StreakEnqueuer, clock Clock) *ChecklistService {
	if clock == nil {
		clock = SystemClock
	}
	return &ChecklistService{
		goalRepo: goalRepo,
		logRepo:  logRepo,
		streaks:  streaks,
		clock:    clock,
	}
}

type LogInput struct {
	UserID         string
	Status         domain.LogStatus
	WakeTime       string
	CompletedSteps []int
	Reason         string
}

// Log records today's outcome for the active goal. "Today" is the calendar
// day in the goal's timezone, and a second call on the same day overwrites
// the first.
func (s *ChecklistService) Log(ctx context.Context, input LogInput) (*domain.DailyLog, error) {
	if !input.Status.Valid() {
		return nil, domain.ErrInvalidLogStatus
	}

	hour, minute, err := domain.ParseClock(strings.TrimSpace(input.WakeTime))
	if err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.GetActive(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	loc := goal.Location()
	now := s.clock().In(loc)

	entry := domain.NewDailyLog(input.UserID, goal.ID, now, input.Status, input.Reason)

	wake := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	entry.ActualWakeTime = &wake

	for _, step := range input.CompletedSteps {
		if step > len(goal.HabitStack) {
			return nil, domain.ErrInvalidSteps
		}
	}
	if input.CompletedSteps != nil {
		entry.CompletedSteps = input.CompletedSteps
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.logRepo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("checklist service: failed to save log: %w", err)
	}

	if s.streaks != nil {
		s.streaks.Enqueue(goal.ID)
	}

	return entry, nil
}

// History lists the active goal's logs between from and to inclusive. Empty
// bounds default to the last thirty days ending today.
func (s *ChecklistService) History(ctx context.Context, userID, from, to string) ([]domain.DailyLog, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.CalendarDay(s.clock().In(goal.Location()))

	toDay := today
	if to != "" {
		if toDay, err = domain.ParseDate(to); err != nil {
			return nil, domain.ErrInvalidLogDate
		}
	}

	fromDay := toDay.AddDate(0, 0, -(defaultHistoryDays - 1))
	if from != "" {
		if fromDay, err = domain.ParseDate(from); err != nil {
			return nil, domain.ErrInvalidLogDate
		}
	}

	if fromDay.After(toDay) {
		return nil, domain.ErrInvalidDateRange
	}

	logs, err := s.logRepo.ListByRange(ctx, userID, goal.ID, fromDay.Format(domain.DateLayout), toDay.Format(domain.DateLayout))
	if err != nil {
		return nil, err
	}

	return localize(logs, goal.Location()), nil
}
