package ports

import (
	"context"
	"weekly-route-service/internal/domain"
)

// OrderChange is one pending order mutation accumulated during a batch run.
// Changes are persisted together at the end of the run.
type OrderChange struct {
	OrderID            string
	Status             domain.OrderStatus
	RescheduleQuantity int
	// Restock returns the reserved stock of the order's line items to the
	// product inventory. Set when the change cancels the order.
	Restock bool
}

// Port: a boundary for reading candidate orders and persisting state
// transitions produced by a batch run.
type OrderRepository interface {
	// Return all orders in any of the given statuses, each with its
	// customer, city, and province denormalized onto the order.
	ListByStatuses(ctx context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error)

	// Persist all accumulated changes in a single transaction. A failure
	// must leave every order unmodified.
	PersistBatch(ctx context.Context, changes []OrderChange) error
}
