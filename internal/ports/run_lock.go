package ports

import "context"

// Port: mutual exclusion for batch runs. The scheduler trigger and the
// administrative run-now path both go through this lock so two runs can
// never overlap.
type RunLock interface {
	// Attempt to take the lock. Returns false without blocking when
	// another run holds it.
	TryAcquire(ctx context.Context) (bool, error)

	// Release the lock if this instance still holds it.
	Release(ctx context.Context) error
}
