package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.GoalRepository = (*CachedGoalRepository)(nil)

const activeGoalTTL = 30 * time.Minute

// CachedGoalRepository is a cache-aside decorator for the active goal lookup,
// which every check-in, dashboard and reflection request performs.
type CachedGoalRepository struct {
	next  domain.GoalRepository
	cache *redis.Client
}

func NewCachedGoalRepository(next domain.GoalRepository, cache *redis.Client) *CachedGoalRepository {
	return &CachedGoalRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedGoalRepository) cacheKey(userID string) string {
	return fmt.Sprintf("goal:active:%s", userID)
}

func (r *CachedGoalRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

func (r *CachedGoalRepository) GetActive(ctx context.Context, userID string) (*domain.Goal, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var goal domain.Goal
		if err := json.Unmarshal([]byte(val), &goal); err == nil {
			return &goal, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	goal, err := r.next.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(goal); err == nil {
		if setErr := r.cache.Set(ctx, key, data, activeGoalTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return goal, nil
}

func (r *CachedGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	if err := r.next.Create(ctx, goal); err != nil {
		return err
	}
	r.invalidate(ctx, goal.UserID)
	return nil
}

func (r *CachedGoalRepository) ReplaceActive(ctx context.Context, goal *domain.Goal) error {
	if err := r.next.ReplaceActive(ctx, goal); err != nil {
		return err
	}
	r.invalidate(ctx, goal.UserID)
	return nil
}

func (r *CachedGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	goal, err := r.next.GetByID(ctx, id)
	if err == nil && goal != nil {
		defer r.invalidate(ctx, goal.UserID)
	}

	return r.next.UpdateStreaks(ctx, id, current, longest)
}
