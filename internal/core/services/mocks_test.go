package services

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	return m.Called(ctx, goal).Error(0)
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) GetActive(ctx context.Context, userID string) (*domain.Goal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ReplaceActive(ctx context.Context, goal *domain.Goal) error {
	return m.Called(ctx, goal).Error(0)
}

func (m *MockGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return m.Called(ctx, id, current, longest).Error(0)
}

type MockDailyLogRepository struct {
	mock.Mock
}

func (m *MockDailyLogRepository) Upsert(ctx context.Context, entry *domain.DailyLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockDailyLogRepository) GetByDate(ctx context.Context, userID, goalID, date string) (*domain.DailyLog, error) {
	args := m.Called(ctx, userID, goalID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyLog), args.Error(1)
}

func (m *MockDailyLogRepository) ListByGoal(ctx context.Context, userID, goalID string) ([]domain.DailyLog, error) {
	args := m.Called(ctx, userID, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyLog), args.Error(1)
}

func (m *MockDailyLogRepository) ListByRange(ctx context.Context, userID, goalID, from, to string) ([]domain.DailyLog, error) {
	args := m.Called(ctx, userID, goalID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyLog), args.Error(1)
}

type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) GetByWeek(ctx context.Context, userID, weekStart string) (*domain.WeeklySummary, error) {
	args := m.Called(ctx, userID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklySummary), args.Error(1)
}

func (m *MockSummaryRepository) Create(ctx context.Context, summary *domain.WeeklySummary) error {
	return m.Called(ctx, summary).Error(0)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []string
}

func (r *recordingEnqueuer) Enqueue(goalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, goalID)
}

func ptr[T any](v T) *T {
	return &v
}
