package ports

import (
	"context"
	"weekly-route-service/internal/domain"
)

// Geocoder resolves a free-text postal address to coordinates.
//
// ok is false whenever the address could not be resolved with enough
// confidence; provider failures are handled (logged) by the implementation
// and surface as ok=false rather than an error. Each call is a single
// best-effort lookup: no caching and no retries, the caller owns fallback
// behavior such as rescheduling the order.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, bool)
}
