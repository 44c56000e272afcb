package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/minishop/internal/domain/catalog"
	"github.com/example/minishop/internal/domain/order"
)

// PostgresStore is the system of record for orders and the catalog.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return db, nil
}

// InitSchema creates the tables when they do not exist yet.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_url   TEXT NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(12,2) NOT NULL,
			image_url   TEXT NOT NULL DEFAULT '',
			stock       INTEGER NOT NULL DEFAULT 0,
			category_id TEXT REFERENCES categories(id),
			featured    BOOLEAN NOT NULL DEFAULT FALSE,
			active      BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS orders (
			id               TEXT PRIMARY KEY,
			customer_name    TEXT NOT NULL,
			customer_email   TEXT NOT NULL,
			customer_phone   TEXT NOT NULL,
			customer_address TEXT NOT NULL,
			total            NUMERIC(12,2) NOT NULL,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id     TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id   TEXT NOT NULL,
			product_name TEXT NOT NULL,
			price        NUMERIC(12,2) NOT NULL,
			quantity     INTEGER NOT NULL,
			image_url    TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
		CREATE INDEX IF NOT EXISTS idx_orders_customer_email ON orders(customer_email);
		CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
	`)
	return err
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if len(o.Items) == 0 {
		return order.Order{}, order.ErrEmptyOrder
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-price every line from the product row and take the stock while
	// holding the row lock.
	for i := range o.Items {
		item := &o.Items[i]

		var name, imageURL string
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT name, price, stock, image_url FROM products WHERE id = $1 FOR UPDATE`,
			item.ProductID,
		).Scan(&name, &item.Price, &stock, &imageURL)
		if errors.Is(err, sql.ErrNoRows) {
			return order.Order{}, fmt.Errorf("%w with id: %s", ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return order.Order{}, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}

		if stock < item.Quantity {
			return order.Order{}, &StockError{ProductName: name}
		}

		item.ProductName = name
		if item.ImageURL == "" {
			item.ImageURL = imageURL
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2`,
			item.Quantity, item.ProductID,
		); err != nil {
			return order.Order{}, fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
	}

	now := time.Now().UTC()
	o.ID = uuid.New().String()
	o.Status = order.StatusPending
	o.Total = o.ComputeTotal()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_address, total, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Address,
		o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return order.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, price, quantity, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, item.ProductID, item.ProductName, item.Price, item.Quantity, item.ImageURL,
		); err != nil {
			return order.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return o, nil
}

const orderColumns = `id, customer_name, customer_email, customer_phone, customer_address, total, status, created_at, updated_at`

func (s *PostgresStore) Order(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
	}
	if err != nil {
		return order.Order{}, err
	}

	if err := s.loadItems(ctx, &o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *PostgresStore) Orders(ctx context.Context) ([]order.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresStore) OrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`,
		string(status))
}

func (s *PostgresStore) OrdersByCustomerEmail(ctx context.Context, email string) ([]order.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE LOWER(customer_email) = LOWER($1) ORDER BY created_at DESC`,
		email)
}

func (s *PostgresStore) OrdersByDateRange(ctx context.Context, start, end time.Time) ([]order.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at DESC`,
		start, end)
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, order.Status, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, "", fmt.Errorf("begin status transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, "", fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
	}
	if err != nil {
		return order.Order{}, "", fmt.Errorf("load order status: %w", err)
	}

	previous := order.Status(current)
	if !previous.CanTransitionTo(status) {
		return order.Order{}, "", previous.TransitionError(status)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	); err != nil {
		return order.Order{}, "", fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, "", fmt.Errorf("commit status update: %w", err)
	}

	o, err := s.Order(ctx, id)
	if err != nil {
		return order.Order{}, "", err
	}
	return o, previous, nil
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w with id: %s", order.ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Products(ctx context.Context) ([]catalog.Product, error) {
	return s.queryProducts(ctx,
		`SELECT id, name, description, price, image_url, stock, COALESCE(category_id, ''), featured, active
		 FROM products ORDER BY name`)
}

func (s *PostgresStore) Product(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image_url, stock, COALESCE(category_id, ''), featured, active
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CategoryID, &p.Featured, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, fmt.Errorf("%w with id: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	return s.queryProducts(ctx,
		`SELECT id, name, description, price, image_url, stock, COALESCE(category_id, ''), featured, active
		 FROM products WHERE category_id = $1 ORDER BY name`, categoryID)
}

func (s *PostgresStore) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, image_url, active FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CategoryID, &p.Featured, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) loadItems(ctx context.Context, o *order.Order) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, product_name, price, quantity, image_url
		 FROM order_items WHERE order_id = $1`, o.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Price, &item.Quantity, &item.ImageURL); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Customer.Address, &o.Total, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}
	o.Status = order.Status(status)
	return o, nil
}
