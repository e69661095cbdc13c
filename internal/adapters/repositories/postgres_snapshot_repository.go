package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/ports"
)

// Postgres-backed implementation of the SnapshotRepository port. The run
// payload is stored as a JSONB document; rows are never updated or deleted.
type PostgresSnapshotRepository struct {
	DB *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db}
}

func (r *PostgresSnapshotRepository) Insert(ctx context.Context, snap *domain.Snapshot) error {
	if r.DB == nil {
		return errors.New("snapshot repository: db is nil")
	}
	if snap == nil {
		return errors.New("insert snapshot: snapshot is nil")
	}

	payload, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("insert snapshot: marshal payload: %w", err)
	}

	q := `
	INSERT INTO route_snapshots (generated_at, data)
	VALUES ($1, $2);
	`
	if _, err := r.DB.ExecContext(ctx, q, snap.GeneratedAt, payload); err != nil {
		return fmt.Errorf("insert snapshot: exec insert: %w", err)
	}

	return nil
}

func (r *PostgresSnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	if r.DB == nil {
		return nil, errors.New("snapshot repository: db is nil")
	}

	q := `
	SELECT generated_at, data
	FROM route_snapshots
	ORDER BY generated_at DESC
	LIMIT 1;
	`

	var snap domain.Snapshot
	var payload []byte
	err := r.DB.QueryRowContext(ctx, q).Scan(&snap.GeneratedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: query route_snapshots table: %w", err)
	}

	if err := json.Unmarshal(payload, &snap.Result); err != nil {
		return nil, fmt.Errorf("latest snapshot: unmarshal payload: %w", err)
	}

	return &snap, nil
}
