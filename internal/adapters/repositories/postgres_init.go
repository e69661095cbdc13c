package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Initialize the Postgres schema used by the routing core.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		street_number TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		province TEXT NOT NULL DEFAULT ''
	);
	`

	createProductsQuery := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		stock INTEGER NOT NULL DEFAULT 0
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		total NUMERIC NOT NULL DEFAULT 0,
		reschedule_quantity INTEGER NOT NULL DEFAULT 0,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		order_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_date TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOrderItemsQuery := `
	CREATE TABLE IF NOT EXISTS order_items (
		order_id TEXT NOT NULL REFERENCES orders(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		PRIMARY KEY (order_id, product_id)
	);
	`

	createSnapshotsQuery := `
	CREATE TABLE IF NOT EXISTS route_snapshots (
		id BIGSERIAL PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL,
		data JSONB NOT NULL
	);
	`

	createScheduleQuery := `
	CREATE TABLE IF NOT EXISTS schedule_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		expression TEXT NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQueries := `
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_route_snapshots_generated_at
	ON route_snapshots(generated_at DESC);
	`

	statements := []string{
		createCustomersQuery,
		createProductsQuery,
		createOrdersQuery,
		createOrderItemsQuery,
		createSnapshotsQuery,
		createScheduleQuery,
		createIndexQueries,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type CustomerSeed struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
	City         string `json:"city"`
	Province     string `json:"province"`
}

type ItemSeed struct {
	Product  string `json:"product"`
	Stock    int    `json:"stock"`
	Quantity int    `json:"quantity"`
}

type OrderSeed struct {
	OrderNumber string       `json:"order_number"`
	Status      string       `json:"status"`
	Total       float64      `json:"total"`
	Customer    CustomerSeed `json:"customer"`
	Items       []ItemSeed   `json:"items"`
}

// Populate the database with demo orders from a JSON file. Existing orders
// with the same order number are left untouched.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed orders: read %q: %w", jsonPath, err)
	}

	var seeds []OrderSeed
	if err := json.Unmarshal(bytes, &seeds); err != nil {
		return fmt.Errorf("seed orders: parse json: %w", err)
	}

	for i, s := range seeds {
		if strings.TrimSpace(s.OrderNumber) == "" {
			return fmt.Errorf("seed orders: item at index %d: order_number cannot be empty", i+1)
		}
		if strings.TrimSpace(s.Status) == "" {
			return fmt.Errorf("seed orders: item %q: status cannot be empty", s.OrderNumber)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range seeds {
		var exists bool
		if err := tx.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1);`, s.OrderNumber,
		).Scan(&exists); err != nil {
			return fmt.Errorf("seed orders: check order %q: %w", s.OrderNumber, err)
		}
		if exists {
			continue
		}

		customerID := uuid.NewString()
		if _, err := tx.Exec(`
		INSERT INTO customers (id, first_name, last_name, email, street, street_number, city, province)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, customerID, s.Customer.FirstName, s.Customer.LastName, s.Customer.Email,
			s.Customer.Street, s.Customer.StreetNumber, s.Customer.City, s.Customer.Province,
		); err != nil {
			return fmt.Errorf("seed orders: insert customer for %q: %w", s.OrderNumber, err)
		}

		orderID := uuid.NewString()
		if _, err := tx.Exec(`
		INSERT INTO orders (id, order_number, status, total, customer_id)
		VALUES ($1, $2, $3, $4, $5);
		`, orderID, s.OrderNumber, s.Status, s.Total, customerID); err != nil {
			return fmt.Errorf("seed orders: insert order %q: %w", s.OrderNumber, err)
		}

		for _, item := range s.Items {
			var productID string
			if err := tx.QueryRow(`
			INSERT INTO products (id, name, stock)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET stock = products.stock
			RETURNING id;
			`, uuid.NewString(), item.Product, item.Stock).Scan(&productID); err != nil {
				return fmt.Errorf("seed orders: upsert product %q: %w", item.Product, err)
			}

			if _, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (order_id, product_id) DO NOTHING;
			`, orderID, productID, item.Quantity); err != nil {
				return fmt.Errorf("seed orders: insert item %q for %q: %w", item.Product, s.OrderNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed orders: commit tx: %w", err)
	}

	return nil
}
