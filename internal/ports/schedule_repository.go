package ports

import (
	"context"
	"errors"
	"weekly-route-service/internal/domain"
)

// ErrNoSchedule is returned by Latest when no schedule has been saved yet.
var ErrNoSchedule = errors.New("no schedule configured")

// Port: store of the recurring-trigger expression. At most one config is
// meaningful; the most recently updated one wins.
type ScheduleRepository interface {
	// Insert or update the active schedule expression.
	Save(ctx context.Context, expression string) (domain.ScheduleConfig, error)

	// Return the most recently updated config, or ErrNoSchedule.
	Latest(ctx context.Context) (domain.ScheduleConfig, error)
}
