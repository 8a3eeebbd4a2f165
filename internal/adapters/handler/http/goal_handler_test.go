package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

func validGoalPayload() map[string]interface{} {
	return map[string]interface{}{
		"target_time":  "05:20",
		"days_of_week": []int{1, 2, 3, 4, 5},
		"habit_stack": []map[string]interface{}{
			{"step": "Open the curtains", "order": 1},
			{"step": "Drink a glass of water", "order": 2},
			{"step": "Ten minutes of stretching", "order": 3},
		},
	}
}

func TestGoalHandler_Create(t *testing.T) {
	t.Run("Success: Creates goal with default timezone", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", validGoalPayload())

		assert.Equal(t, http.StatusCreated, w.Code)

		var goal domain.Goal
		resp := decodeEnvelope(t, w, &goal)
		assert.True(t, resp.Success)
		assert.Equal(t, "user-1", goal.UserID)
		assert.Equal(t, "05:20", goal.TargetTime)
		assert.Equal(t, domain.DefaultTimezone, goal.Timezone)
		assert.True(t, goal.IsActive)
		assert.Len(t, goal.HabitStack, 3)
	})

	t.Run("Success: New goal replaces the active one", func(t *testing.T) {
		env := setupEnv(t)
		old := env.seedGoal(t, "user-1", allDays)

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", validGoalPayload())
		require.Equal(t, http.StatusCreated, w.Code)

		var created domain.Goal
		decodeEnvelope(t, w, &created)

		active, err := env.goals.GetActive(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, active.ID)

		previous, err := env.goals.GetByID(context.Background(), old.ID)
		require.NoError(t, err)
		assert.False(t, previous.IsActive)
	})

	t.Run("Fail: Invalid target time", func(t *testing.T) {
		env := setupEnv(t)
		payload := validGoalPayload()
		payload["target_time"] = "5:20am"

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "HH:mm")
	})

	t.Run("Fail: Habit stack too short", func(t *testing.T) {
		env := setupEnv(t)
		payload := validGoalPayload()
		payload["habit_stack"] = []map[string]interface{}{
			{"step": "Wake up", "order": 1},
		}

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: Weekday out of range", func(t *testing.T) {
		env := setupEnv(t)
		payload := validGoalPayload()
		payload["days_of_week"] = []int{1, 7}

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: Unknown timezone", func(t *testing.T) {
		env := setupEnv(t)
		payload := validGoalPayload()
		payload["timezone"] = "Mars/Olympus"

		w := env.do(http.MethodPost, "/api/v1/goal", "user-1", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid timezone")
	})

	t.Run("Fail: Missing user context", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodPost, "/api/v1/goal", "", validGoalPayload())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGoalHandler_GetActive(t *testing.T) {
	t.Run("Success: Returns the active goal", func(t *testing.T) {
		env := setupEnv(t)
		seeded := env.seedGoal(t, "user-1", allDays)

		w := env.do(http.MethodGet, "/api/v1/goal", "user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var goal domain.Goal
		decodeEnvelope(t, w, &goal)
		assert.Equal(t, seeded.ID, goal.ID)
	})

	t.Run("Fail: No active goal", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodGet, "/api/v1/goal", "user-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "No active goal found")
	})
}
