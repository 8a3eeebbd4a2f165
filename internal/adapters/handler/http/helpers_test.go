package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
)

type stubCompleter struct {
	text    string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.text, s.err
}

type testEnv struct {
	router    *gin.Engine
	goals     *repository.InMemoryGoalRepository
	logs      *repository.InMemoryDailyLogRepository
	summaries *repository.InMemoryWeeklySummaryRepository
	llm       *stubCompleter
}

// 2024-06-12 is a Wednesday; 06:30 in Tokyo.
var testNow = time.Date(2024, 6, 11, 21, 30, 0, 0, time.UTC)

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		goals:     repository.NewInMemoryGoalRepository(),
		logs:      repository.NewInMemoryDailyLogRepository(),
		summaries: repository.NewInMemoryWeeklySummaryRepository(),
		llm:       &stubCompleter{},
	}
	clock := func() time.Time { return testNow }

	goalSvc := services.NewGoalService(env.goals, domain.DefaultTimezone)
	checklistSvc := services.NewChecklistService(env.goals, env.logs, nil, clock)
	dashboardSvc := services.NewDashboardService(env.goals, env.logs, clock)
	coachSvc := services.NewCoachService(env.llm, env.goals, env.logs, env.summaries, clock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	adapterHTTP.NewGoalHandler(goalSvc).RegisterRoutes(api)
	adapterHTTP.NewChecklistHandler(checklistSvc).RegisterRoutes(api)
	adapterHTTP.NewDashboardHandler(dashboardSvc).RegisterRoutes(api)
	adapterHTTP.NewCoachHandler(coachSvc).RegisterRoutes(api)

	env.router = r
	return env
}

func (e *testEnv) do(method, path, userID string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body.WriteString(p)
		default:
			_ = json.NewEncoder(&body).Encode(p)
		}
	}

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedGoal(t *testing.T, userID string, days []int) *domain.Goal {
	t.Helper()
	goal, err := domain.NewGoal(userID, "05:30", "Asia/Tokyo", days, []domain.HabitStep{
		{Step: "Drink water", Order: 1},
		{Step: "Stretch", Order: 2},
		{Step: "Journal", Order: 3},
	})
	require.NoError(t, err)
	require.NoError(t, e.goals.Create(context.Background(), goal))
	return goal
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

var allDays = []int{0, 1, 2, 3, 4, 5, 6}
