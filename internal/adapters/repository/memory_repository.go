package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

// The in-memory repositories back the HTTP end-to-end tests and local runs
// without Postgres. They copy on the way in and out like a real store would.

type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type InMemoryGoalRepository struct {
	mu    sync.RWMutex
	goals map[string]domain.Goal
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{goals: make(map[string]domain.Goal)}
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.goals[goal.ID] = *goal
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	return &g, nil
}

func (r *InMemoryGoalRepository) GetActive(ctx context.Context, userID string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active *domain.Goal
	for _, g := range r.goals {
		if g.UserID != userID || !g.IsActive {
			continue
		}
		if active == nil || g.CreatedAt.After(active.CreatedAt) {
			clone := g
			active = &clone
		}
	}
	if active == nil {
		return nil, domain.ErrGoalNotFound
	}
	return active, nil
}

func (r *InMemoryGoalRepository) ReplaceActive(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.goals[goal.ID]; exists {
		return fmt.Errorf("goal %s already exists", goal.ID)
	}

	now := time.Now().UTC()
	for id, g := range r.goals {
		if g.UserID == goal.UserID && g.IsActive {
			g.IsActive = false
			g.UpdatedAt = now
			r.goals[id] = g
		}
	}
	r.goals[goal.ID] = *goal
	return nil
}

func (r *InMemoryGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.goals[id]
	if !ok {
		return domain.ErrGoalNotFound
	}
	g.UpdateStreak(current, longest)
	r.goals[id] = g
	return nil
}

type InMemoryDailyLogRepository struct {
	mu   sync.RWMutex
	logs map[string]domain.DailyLog
}

func NewInMemoryDailyLogRepository() *InMemoryDailyLogRepository {
	return &InMemoryDailyLogRepository{logs: make(map[string]domain.DailyLog)}
}

func logKey(userID, goalID, date string) string {
	return userID + "|" + goalID + "|" + date
}

func (r *InMemoryDailyLogRepository) Upsert(ctx context.Context, entry *domain.DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := logKey(entry.UserID, entry.GoalID, entry.Date)
	if existing, ok := r.logs[key]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	} else if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	stored := *entry
	stored.CompletedSteps = append([]int{}, entry.CompletedSteps...)
	r.logs[key] = stored
	return nil
}

func (r *InMemoryDailyLogRepository) GetByDate(ctx context.Context, userID, goalID, date string) (*domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.logs[logKey(userID, goalID, date)]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	return &entry, nil
}

func (r *InMemoryDailyLogRepository) ListByGoal(ctx context.Context, userID, goalID string) ([]domain.DailyLog, error) {
	return r.filter(userID, goalID, "", ""), nil
}

func (r *InMemoryDailyLogRepository) ListByRange(ctx context.Context, userID, goalID, from, to string) ([]domain.DailyLog, error) {
	return r.filter(userID, goalID, from, to), nil
}

// filter relies on YYYY-MM-DD dates sorting lexically. An empty bound is open.
func (r *InMemoryDailyLogRepository) filter(userID, goalID, from, to string) []domain.DailyLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := []domain.DailyLog{}
	for _, l := range r.logs {
		if l.UserID == userID && l.GoalID == goalID && l.Date >= from && (to == "" || l.Date <= to) {
			logs = append(logs, l)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})
	return logs
}

type InMemoryWeeklySummaryRepository struct {
	mu        sync.RWMutex
	summaries map[string]domain.WeeklySummary
}

func NewInMemoryWeeklySummaryRepository() *InMemoryWeeklySummaryRepository {
	return &InMemoryWeeklySummaryRepository{summaries: make(map[string]domain.WeeklySummary)}
}

func (r *InMemoryWeeklySummaryRepository) GetByWeek(ctx context.Context, userID, weekStart string) (*domain.WeeklySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.summaries[userID+"|"+weekStart]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	return &s, nil
}

func (r *InMemoryWeeklySummaryRepository) Create(ctx context.Context, summary *domain.WeeklySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := summary.UserID + "|" + summary.WeekStart
	if _, exists := r.summaries[key]; exists {
		return domain.ErrSummaryConflict
	}
	r.summaries[key] = *summary
	return nil
}
