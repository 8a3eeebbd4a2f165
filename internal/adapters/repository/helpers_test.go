package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, EnsureSchema(ctx, db))

	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts a user with a unique email so tests can run in parallel.
func seedUser(t *testing.T, db *sqlx.DB) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("rise_%s@example.com", uuid.NewString()))
	require.NoError(t, err)
	user.PasswordHash = "hash"
	require.NoError(t, NewPostgresUserRepository(db).Create(context.Background(), user))
	return user
}

func seedGoal(t *testing.T, db *sqlx.DB, userID string) *domain.Goal {
	t.Helper()
	goal, err := domain.NewGoal(userID, "05:20", "Asia/Tokyo", []int{1, 2, 3, 4, 5}, []domain.HabitStep{
		{Step: "Drink water", Order: 1},
		{Step: "Open curtains", Order: 2},
		{Step: "Stretch", Order: 3},
	})
	require.NoError(t, err)
	require.NoError(t, NewPostgresGoalRepository(db).Create(context.Background(), goal))
	return goal
}
