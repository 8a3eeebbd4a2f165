package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

var _ domain.DailyLogRepository = (*PostgresDailyLogRepository)(nil)

type PostgresDailyLogRepository struct {
	db *sqlx.DB
}

func NewPostgresDailyLogRepository(db *sqlx.DB) *PostgresDailyLogRepository {
	return &PostgresDailyLogRepository{db: db}
}

const logColumns = `id, user_id, goal_id, to_char(date, 'YYYY-MM-DD') AS date, status,
	actual_wake_time, completed_steps, snooze_reason, skip_reason, created_at, updated_at`

type logRow struct {
	domain.DailyLog
	Steps []byte `db:"completed_steps"`
}

func (row *logRow) toDomain() (domain.DailyLog, error) {
	entry := row.DailyLog
	entry.CompletedSteps = []int{}
	if len(row.Steps) > 0 {
		if err := json.Unmarshal(row.Steps, &entry.CompletedSteps); err != nil {
			return entry, fmt.Errorf("failed to unmarshal completed_steps: %w", err)
		}
	}
	return entry, nil
}

// Upsert keeps the original id and created_at when the day already has a log.
func (r *PostgresDailyLogRepository) Upsert(ctx context.Context, entry *domain.DailyLog) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	steps := entry.CompletedSteps
	if steps == nil {
		steps = []int{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to marshal completed_steps: %w", err)
	}

	query := `
		INSERT INTO daily_logs (
			id, user_id, goal_id, date, status,
			actual_wake_time, completed_steps, snooze_reason, skip_reason,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, goal_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			actual_wake_time = EXCLUDED.actual_wake_time,
			completed_steps = EXCLUDED.completed_steps,
			snooze_reason = EXCLUDED.snooze_reason,
			skip_reason = EXCLUDED.skip_reason,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	var stored struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	err = r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.UserID, entry.GoalID, entry.Date, entry.Status,
		entry.ActualWakeTime, string(stepsJSON), entry.SnoozeReason, entry.SkipReason,
		entry.CreatedAt, entry.UpdatedAt,
	).StructScan(&stored)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return errors.New("referenced goal or user does not exist")
		}
		return fmt.Errorf("failed to upsert daily log: %w", err)
	}

	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	entry.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *PostgresDailyLogRepository) GetByDate(ctx context.Context, userID, goalID, date string) (*domain.DailyLog, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + logColumns + ` FROM daily_logs WHERE user_id = $1 AND goal_id = $2 AND date = $3`

	var row logRow
	if err := r.db.GetContext(ctx, &row, query, userID, goalID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}

	entry, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresDailyLogRepository) ListByGoal(ctx context.Context, userID, goalID string) ([]domain.DailyLog, error) {
	query := `
		SELECT ` + logColumns + ` FROM daily_logs
		WHERE user_id = $1 AND goal_id = $2
		ORDER BY date DESC`

	return r.list(ctx, query, userID, goalID)
}

func (r *PostgresDailyLogRepository) ListByRange(ctx context.Context, userID, goalID, from, to string) ([]domain.DailyLog, error) {
	query := `
		SELECT ` + logColumns + ` FROM daily_logs
		WHERE user_id = $1 AND goal_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date DESC`

	return r.list(ctx, query, userID, goalID, from, to)
}

func (r *PostgresDailyLogRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.DailyLog, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []logRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	logs := make([]domain.DailyLog, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
