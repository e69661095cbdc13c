package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/ports"
)

// Postgres-backed implementation of the ScheduleRepository port. A single
// row holds the active expression; saving replaces it and bumps the
// last-updated timestamp.
type PostgresScheduleRepository struct {
	DB *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{DB: db}
}

func (r *PostgresScheduleRepository) Save(ctx context.Context, expression string) (domain.ScheduleConfig, error) {
	if r.DB == nil {
		return domain.ScheduleConfig{}, errors.New("schedule repository: db is nil")
	}
	if expression == "" {
		return domain.ScheduleConfig{}, errors.New("save schedule: expression must not be empty")
	}

	q := `
	INSERT INTO schedule_config (id, expression, last_updated)
	VALUES (1, $1, now())
	ON CONFLICT (id) DO UPDATE
	SET expression = EXCLUDED.expression,
		last_updated = EXCLUDED.last_updated
	RETURNING expression, last_updated;
	`

	var cfg domain.ScheduleConfig
	if err := r.DB.QueryRowContext(ctx, q, expression).Scan(&cfg.Expression, &cfg.LastUpdated); err != nil {
		return domain.ScheduleConfig{}, fmt.Errorf("save schedule: upsert schedule_config: %w", err)
	}

	return cfg, nil
}

func (r *PostgresScheduleRepository) Latest(ctx context.Context) (domain.ScheduleConfig, error) {
	if r.DB == nil {
		return domain.ScheduleConfig{}, errors.New("schedule repository: db is nil")
	}

	q := `
	SELECT expression, last_updated
	FROM schedule_config
	ORDER BY last_updated DESC
	LIMIT 1;
	`

	var cfg domain.ScheduleConfig
	err := r.DB.QueryRowContext(ctx, q).Scan(&cfg.Expression, &cfg.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScheduleConfig{}, ports.ErrNoSchedule
	}
	if err != nil {
		return domain.ScheduleConfig{}, fmt.Errorf("latest schedule: query schedule_config table: %w", err)
	}

	return cfg, nil
}
