package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.GoalRepository = (*PostgresGoalRepository)(nil)

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

const goalColumns = `id, user_id, target_time, timezone, days_of_week, habit_stack,
	is_active, current_streak, longest_streak, created_at, updated_at`

// goalRow mirrors the goals table; the list columns are JSONB.
type goalRow struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	TargetTime    string    `db:"target_time"`
	Timezone      string    `db:"timezone"`
	DaysOfWeek    []byte    `db:"days_of_week"`
	HabitStack    []byte    `db:"habit_stack"`
	IsActive      bool      `db:"is_active"`
	CurrentStreak int       `db:"current_streak"`
	LongestStreak int       `db:"longest_streak"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row goalRow) toDomain() (*domain.Goal, error) {
	g := &domain.Goal{
		ID:            row.ID,
		UserID:        row.UserID,
		TargetTime:    row.TargetTime,
		Timezone:      row.Timezone,
		IsActive:      row.IsActive,
		CurrentStreak: row.CurrentStreak,
		LongestStreak: row.LongestStreak,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if err := json.Unmarshal(row.DaysOfWeek, &g.DaysOfWeek); err != nil {
		return nil, fmt.Errorf("failed to unmarshal days_of_week: %w", err)
	}
	if err := json.Unmarshal(row.HabitStack, &g.HabitStack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal habit_stack: %w", err)
	}
	return g, nil
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return insertGoal(ctx, r.db, g)
}

// ReplaceActive deactivates the user's current goals and inserts g in one
// transaction, so a failed insert leaves the previous goal active.
func (r *PostgresGoalRepository) ReplaceActive(ctx context.Context, g *domain.Goal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        UPDATE goals SET is_active = FALSE, updated_at = NOW()
        WHERE user_id = $1 AND is_active`

	if _, err := tx.ExecContext(ctx, query, g.UserID); err != nil {
		return fmt.Errorf("deactivate query failed: %w", err)
	}

	if err := insertGoal(ctx, tx, g); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit goal replacement: %w", err)
	}
	return nil
}

func insertGoal(ctx context.Context, exec sqlx.ExecerContext, g *domain.Goal) error {
	days, err := json.Marshal(g.DaysOfWeek)
	if err != nil {
		return fmt.Errorf("failed to marshal days_of_week: %w", err)
	}
	stack, err := json.Marshal(g.HabitStack)
	if err != nil {
		return fmt.Errorf("failed to marshal habit_stack: %w", err)
	}

	query := `
        INSERT INTO goals (` + goalColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = exec.ExecContext(ctx, query,
		g.ID, g.UserID, g.TargetTime, g.Timezone, string(days), string(stack),
		g.IsActive, g.CurrentStreak, g.LongestStreak, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	return r.getOne(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
}

func (r *PostgresGoalRepository) GetActive(ctx context.Context, userID string) (*domain.Goal, error) {
	query := `
        SELECT ` + goalColumns + ` FROM goals
        WHERE user_id = $1 AND is_active
        ORDER BY created_at DESC
        LIMIT 1`

	return r.getOne(ctx, query, userID)
}

func (r *PostgresGoalRepository) getOne(ctx context.Context, query string, arg string) (*domain.Goal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row goalRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return row.toDomain()
}

func (r *PostgresGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        UPDATE goals
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("failed to update streaks: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}
