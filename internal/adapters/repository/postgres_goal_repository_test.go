package repository

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresGoalRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresGoalRepository(db)
	ctx := context.Background()

	t.Run("Success: Round trip keeps JSONB columns", func(t *testing.T) {
		user := seedUser(t, db)
		goal := seedGoal(t, db, user.ID)

		got, err := repo.GetByID(ctx, goal.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.Weekdays{1, 2, 3, 4, 5}, got.DaysOfWeek)
		require.Len(t, got.HabitStack, 3)
		assert.Equal(t, "Open curtains", got.HabitStack[1].Step)
		assert.Equal(t, 2, got.HabitStack[1].Order)
		assert.True(t, got.IsActive)
	})

	t.Run("Success: Only the newest goal stays active", func(t *testing.T) {
		user := seedUser(t, db)
		old := seedGoal(t, db, user.ID)

		time.Sleep(10 * time.Millisecond)
		current := newTestGoal(t, user.ID)
		require.NoError(t, repo.ReplaceActive(ctx, current))

		active, err := repo.GetActive(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, current.ID, active.ID)

		stale, err := repo.GetByID(ctx, old.ID)
		require.NoError(t, err)
		assert.False(t, stale.IsActive)
	})

	t.Run("Fail: Rejected replacement keeps the previous goal active", func(t *testing.T) {
		user := seedUser(t, db)
		old := seedGoal(t, db, user.ID)

		clash := newTestGoal(t, user.ID)
		clash.ID = old.ID

		err := repo.ReplaceActive(ctx, clash)
		require.Error(t, err)

		active, err := repo.GetActive(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, old.ID, active.ID)
		assert.True(t, active.IsActive)
	})

	t.Run("Fail: Replacement for a missing user", func(t *testing.T) {
		goal := newTestGoal(t, uuid.NewString())

		assert.ErrorIs(t, repo.ReplaceActive(ctx, goal), domain.ErrUserNotFound)
	})

	t.Run("Fail: Cancelled context aborts the transaction", func(t *testing.T) {
		user := seedUser(t, db)
		old := seedGoal(t, db, user.ID)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, repo.ReplaceActive(cancelled, newTestGoal(t, user.ID)), context.Canceled)

		active, err := repo.GetActive(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, old.ID, active.ID)
	})

	t.Run("Success: Update streaks", func(t *testing.T) {
		user := seedUser(t, db)
		goal := seedGoal(t, db, user.ID)

		require.NoError(t, repo.UpdateStreaks(ctx, goal.ID, 4, 9))

		got, err := repo.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.CurrentStreak)
		assert.Equal(t, 9, got.LongestStreak)
	})

	t.Run("Fail: No active goal", func(t *testing.T) {
		user := seedUser(t, db)

		_, err := repo.GetActive(ctx, user.ID)

		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	})

	t.Run("Fail: Unknown goal id", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateStreaks(ctx, uuid.NewString(), 1, 1), domain.ErrGoalNotFound)
	})

	t.Run("Fail: Goal for a missing user", func(t *testing.T) {
		goal, err := domain.NewGoal(uuid.NewString(), "05:20", "", []int{1}, []domain.HabitStep{{Step: "a"}, {Step: "b"}, {Step: "c"}})
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Create(ctx, goal), domain.ErrUserNotFound)
	})
}

func newTestGoal(t *testing.T, userID string) *domain.Goal {
	t.Helper()
	goal, err := domain.NewGoal(userID, "06:00", "Asia/Tokyo", []int{1, 3, 5}, []domain.HabitStep{
		{Step: "Make the bed", Order: 1},
		{Step: "Drink water", Order: 2},
		{Step: "Walk outside", Order: 3},
	})
	require.NoError(t, err)
	return goal
}
