package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/ports"
)

// Postgres-backed implementation of the OrderRepository port. Reads return
// orders with the customer address denormalized; writes apply a whole batch
// run's mutations in one transaction.
type PostgresOrderRepository struct {
	DB *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

// Return all orders in any of the given statuses with customer, city and
// province attached.
func (r *PostgresOrderRepository) ListByStatuses(
	ctx context.Context,
	statuses []domain.OrderStatus,
) ([]*domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("order repository: db is nil")
	}

	if len(statuses) == 0 {
		return []*domain.Order{}, nil
	}

	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	q := `
	SELECT
		o.id, o.order_number, o.status, o.total, o.reschedule_quantity,
		o.order_date, o.updated_date,
		c.first_name, c.last_name, c.email,
		c.street, c.street_number, c.city, c.province
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	WHERE o.status = ANY($1::text[])
	ORDER BY o.order_date;
	`

	rows, err := r.DB.QueryContext(ctx, q, values)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &status, &o.Total, &o.RescheduleQuantity,
			&o.OrderDate, &o.UpdatedDate,
			&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Email,
			&o.Customer.Street, &o.Customer.StreetNumber, &o.Customer.City, &o.Customer.Province,
		); err != nil {
			return nil, fmt.Errorf("list orders by status: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders by status: row iteration: %w", err)
	}

	return orders, nil
}

// Persist all accumulated order changes in a single transaction. Restocking
// happens inside the same transaction so a cancelled order and its returned
// stock commit together.
func (r *PostgresOrderRepository) PersistBatch(ctx context.Context, changes []ports.OrderChange) error {
	if r.DB == nil {
		return errors.New("order repository: db is nil")
	}

	if len(changes) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist order batch: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update, err := tx.PrepareContext(ctx, `
	UPDATE orders
	SET status = $1,
		reschedule_quantity = $2,
		updated_date = now()
	WHERE id = $3;
	`)
	if err != nil {
		return fmt.Errorf("persist order batch: prepare update: %w", err)
	}
	defer update.Close()

	restock, err := tx.PrepareContext(ctx, `
	UPDATE products p
	SET stock = p.stock + oi.quantity
	FROM order_items oi
	WHERE oi.order_id = $1
		AND oi.product_id = p.id;
	`)
	if err != nil {
		return fmt.Errorf("persist order batch: prepare restock: %w", err)
	}
	defer restock.Close()

	for _, c := range changes {
		if c.OrderID == "" {
			return errors.New("persist order batch: empty order id")
		}

		if _, err := update.ExecContext(ctx, string(c.Status), c.RescheduleQuantity, c.OrderID); err != nil {
			return fmt.Errorf("persist order batch: update order id=%q: %w", c.OrderID, err)
		}

		if c.Restock {
			if _, err := restock.ExecContext(ctx, c.OrderID); err != nil {
				return fmt.Errorf("persist order batch: restock order id=%q: %w", c.OrderID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist order batch: commit: %w", err)
	}

	return nil
}
