package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-rise/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-rise/internal/core/coach"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

const maxRecentReasons = 5

type CoachService struct {
	llm         Completer
	goalRepo    domain.GoalRepository
	logRepo     domain.DailyLogRepository
	summaryRepo domain.WeeklySummaryRepository
	clock       Clock
}

func NewCoachService(llm Completer, goalRepo domain.GoalRepository, logRepo domain.DailyLogRepository, summaryRepo domain.WeeklySummaryRepository, clock Clock) *CoachService {
	if clock == nil {
		clock = SystemClock
	}
	return &CoachService{
		llm:         llm,
		goalRepo:    goalRepo,
		logRepo:     logRepo,
		summaryRepo: summaryRepo,
		clock:       clock,
	}
}

// SuggestHabitStack asks the model for a morning routine. Output that fails
// to parse is returned as a *coach.ParseError.
func (s *CoachService) SuggestHabitStack(ctx context.Context, input domain.HabitStackPromptInput) (*domain.HabitStackResponse, error) {
	input.TargetTime = strings.TrimSpace(input.TargetTime)
	if err := domain.ValidateTargetTime(input.TargetTime); err != nil {
		return nil, err
	}

	text, err := s.llm.Complete(ctx, coach.HabitStackPrompt(input))
	if err != nil {
		return nil, fmt.Errorf("coach service: habit stack completion failed: %w", err)
	}

	resp, err := coach.ParseHabitStackResponse(text)
	if err != nil {
		log.Printf("[COACH] unusable habit stack output: %v", err)
		return nil, err
	}

	return resp, nil
}

// WeeklyReflection returns the reflection for the current week, generating
// and storing it on the first call of the week.
func (s *CoachService) WeeklyReflection(ctx context.Context, userID string) (*domain.WeeklySummary, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc := goal.Location()
	now := s.clock().In(loc)
	weekStart := analytics.MondayOf(now)

	cached, err := s.summaryRepo.GetByWeek(ctx, userID, weekStart.Format(domain.DateLayout))
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		return nil, err
	}

	logs, err := s.logRepo.ListByGoal(ctx, userID, goal.ID)
	if err != nil {
		return nil, err
	}
	logs = localize(logs, loc)

	metrics := analytics.CalculateWeeklyMetrics(logs, goal.DaysOfWeek, weekStart)
	streak := analytics.CalculateStreak(logs, now)
	snoozeReasons, skipReasons := recentReasons(logs, maxRecentReasons)

	prompt := coach.WeeklyReflectionPrompt(domain.WeeklyReflectionInput{
		WeekStart:      metrics.WeekStart,
		WeekEnd:        metrics.WeekEnd,
		CompletionRate: metrics.CompletionRate,
		CurrentStreak:  streak,
		AvgWakeTime:    metrics.AvgWakeTime,
		TargetTime:     goal.TargetTime,
		SnoozeReasons:  snoozeReasons,
		SkipReasons:    skipReasons,
	})

	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("coach service: reflection completion failed: %w", err)
	}

	reflection, err := coach.ParseWeeklyReflectionResponse(text)
	if err != nil {
		log.Printf("[COACH] unusable reflection output: %v", err)
		return nil, err
	}

	summary := &domain.WeeklySummary{
		ID:             uuid.NewString(),
		UserID:         userID,
		WeekStart:      metrics.WeekStart,
		WeekEnd:        metrics.WeekEnd,
		CompletionRate: metrics.CompletionRate,
		CurrentStreak:  streak,
		AvgWakeTime:    metrics.AvgWakeTime,
		Reflection:     *reflection,
		CreatedAt:      s.clock().UTC(),
	}

	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		// A concurrent request stored this week first; theirs wins.
		if errors.Is(err, domain.ErrSummaryConflict) {
			return s.summaryRepo.GetByWeek(ctx, userID, summary.WeekStart)
		}
		return nil, fmt.Errorf("coach service: failed to save summary: %w", err)
	}

	return summary, nil
}

// recentReasons collects up to limit snooze and skip reasons, newest first.
func recentReasons(logs []domain.DailyLog, limit int) (snooze, skip []string) {
	for _, l := range logs {
		switch {
		case l.Status == domain.StatusSnoozed && l.SnoozeReason != nil && *l.SnoozeReason != "":
			if len(snooze) < limit {
				snooze = append(snooze, *l.SnoozeReason)
			}
		case l.Status == domain.StatusSkipped && l.SkipReason != nil && *l.SkipReason != "":
			if len(skip) < limit {
				skip = append(skip, *l.SkipReason)
			}
		}
	}
	return snooze, skip
}
