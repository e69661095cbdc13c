package ports

import (
	"context"
	"errors"
	"weekly-route-service/internal/domain"
)

// ErrNoSnapshot is returned by Latest when no run has been persisted yet.
var ErrNoSnapshot = errors.New("no snapshot generated yet")

// Port: append-only store of batch run snapshots.
type SnapshotRepository interface {
	// Append one snapshot. Snapshots are never updated or deleted.
	Insert(ctx context.Context, snap *domain.Snapshot) error

	// Return the snapshot with the maximum generation timestamp, or
	// ErrNoSnapshot when none exists.
	Latest(ctx context.Context) (*domain.Snapshot, error)
}
