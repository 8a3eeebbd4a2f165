package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

var _ domain.WeeklySummaryRepository = (*PostgresWeeklySummaryRepository)(nil)

type PostgresWeeklySummaryRepository struct {
	db *sqlx.DB
}

func NewPostgresWeeklySummaryRepository(db *sqlx.DB) *PostgresWeeklySummaryRepository {
	return &PostgresWeeklySummaryRepository{db: db}
}

type summaryRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	WeekStart      string         `db:"week_start"`
	WeekEnd        string         `db:"week_end"`
	CompletionRate float64        `db:"completion_rate"`
	CurrentStreak  int            `db:"current_streak"`
	AvgWakeTime    sql.NullString `db:"avg_wake_time"`
	Summary        string         `db:"summary"`
	Insights       pq.StringArray `db:"insights"`
	Suggestions    pq.StringArray `db:"suggestions"`
	Encouragement  string         `db:"encouragement"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (row summaryRow) toDomain() *domain.WeeklySummary {
	s := &domain.WeeklySummary{
		ID:             row.ID,
		UserID:         row.UserID,
		WeekStart:      row.WeekStart,
		WeekEnd:        row.WeekEnd,
		CompletionRate: row.CompletionRate,
		CurrentStreak:  row.CurrentStreak,
		Reflection: domain.WeeklyReflectionResponse{
			Summary:       row.Summary,
			Insights:      []string(row.Insights),
			Suggestions:   []string(row.Suggestions),
			Encouragement: row.Encouragement,
		},
		CreatedAt: row.CreatedAt,
	}
	if row.AvgWakeTime.Valid {
		avg := row.AvgWakeTime.String
		s.AvgWakeTime = &avg
	}
	if s.Reflection.Insights == nil {
		s.Reflection.Insights = []string{}
	}
	if s.Reflection.Suggestions == nil {
		s.Reflection.Suggestions = []string{}
	}
	return s
}

func (r *PostgresWeeklySummaryRepository) GetByWeek(ctx context.Context, userID, weekStart string) (*domain.WeeklySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id,
			to_char(week_start, 'YYYY-MM-DD') AS week_start,
			to_char(week_end, 'YYYY-MM-DD') AS week_end,
			completion_rate, current_streak, avg_wake_time,
			summary, insights, suggestions, encouragement, created_at
		FROM weekly_summaries
		WHERE user_id = $1 AND week_start = $2`

	var row summaryRow
	if err := r.db.GetContext(ctx, &row, query, userID, weekStart); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("summary query failed: %w", err)
	}

	return row.toDomain(), nil
}

func (r *PostgresWeeklySummaryRepository) Create(ctx context.Context, s *domain.WeeklySummary) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO weekly_summaries (
			id, user_id, week_start, week_end, completion_rate, current_streak, avg_wake_time,
			summary, insights, suggestions, encouragement, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.WeekStart, s.WeekEnd, s.CompletionRate, s.CurrentStreak, s.AvgWakeTime,
		s.Reflection.Summary, pq.Array(s.Reflection.Insights), pq.Array(s.Reflection.Suggestions),
		s.Reflection.Encouragement, s.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrSummaryConflict
		}
		return fmt.Errorf("failed to insert weekly summary: %w", err)
	}

	return nil
}
