package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artelar/shop/internal/order/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const orderColumns = `id, customer, shipping_address, shipping_selection, items, payment,
	status, tracking_code, refund_reason, refund_photo_urls, created_at, updated_at, shipped_at`

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}
	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping selection: %w", err)
	}
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	paymentJSON, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	query := `INSERT INTO orders (id, customer, shipping_address, shipping_selection, items, payment,
	          status, tracking_code, refund_reason, refund_photo_urls, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		customerJSON,
		addressJSON,
		shippingJSON,
		itemsJSON,
		paymentJSON,
		order.Status,
		order.TrackingCode,
		order.RefundReason,
		pq.Array(order.RefundPhotoURLs),
	)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByCustomerEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE customer->>'email' = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, shippedAt *time.Time, events []OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	if shippedAt != nil {
		result, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, shipped_at = $3, updated_at = NOW() WHERE id = $1`,
			id, status, *shippedAt)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
			id, status)
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}

	if errInsert := insertEvents(ctx, tx, id, events); errInsert != nil {
		return errInsert
	}

	return tx.Commit()
}

func (r *Repository) SetTrackingCode(ctx context.Context, id uuid.UUID, code string, events []OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tracking update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET tracking_code = $2, updated_at = NOW() WHERE id = $1`,
		id, code)
	if err != nil {
		return fmt.Errorf("update tracking code: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}

	if errInsert := insertEvents(ctx, tx, id, events); errInsert != nil {
		return errInsert
	}

	return tx.Commit()
}

func (r *Repository) SetRefund(ctx context.Context, id uuid.UUID, reason string, photoURLs []string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, refund_reason = $3, refund_photo_urls = $4, updated_at = NOW() WHERE id = $1`,
		id, domain.StatusRefundRequested, reason, pq.Array(photoURLs))
	if err != nil {
		return fmt.Errorf("update refund: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, order_id, event_type, payload, created_at, processed
	          FROM notification_outbox WHERE processed = FALSE ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if errScan := rows.Scan(&event.ID, &event.OrderID, &event.EventType, &event.Payload,
			&event.CreatedAt, &event.Processed); errScan != nil {
			return nil, fmt.Errorf("scan outbox event: %w", errScan)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notification_outbox SET processed = TRUE, processed_at = NOW() WHERE id = $1`,
		eventID)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, events []OutboxEvent) error {
	for _, event := range events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notification_outbox (order_id, event_type, payload, created_at, processed)
			 VALUES ($1, $2, $3, NOW(), FALSE)`,
			orderID, event.EventType, event.Payload)
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var customerJSON, addressJSON, shippingJSON, itemsJSON, paymentJSON []byte
	var trackingCode, refundReason sql.NullString
	var shippedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&customerJSON,
		&addressJSON,
		&shippingJSON,
		&itemsJSON,
		&paymentJSON,
		&order.Status,
		&trackingCode,
		&refundReason,
		pq.Array(&order.RefundPhotoURLs),
		&order.CreatedAt,
		&order.UpdatedAt,
		&shippedAt,
	)
	if err != nil {
		return nil, err
	}

	if errUn := json.Unmarshal(customerJSON, &order.Customer); errUn != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", errUn)
	}
	if errUn := json.Unmarshal(addressJSON, &order.ShippingAddress); errUn != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", errUn)
	}
	if errUn := json.Unmarshal(shippingJSON, &order.Shipping); errUn != nil {
		return nil, fmt.Errorf("unmarshal shipping selection: %w", errUn)
	}
	if errUn := json.Unmarshal(itemsJSON, &order.Items); errUn != nil {
		return nil, fmt.Errorf("unmarshal items: %w", errUn)
	}
	if errUn := json.Unmarshal(paymentJSON, &order.Payment); errUn != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", errUn)
	}

	order.TrackingCode = trackingCode.String
	order.RefundReason = refundReason.String
	if shippedAt.Valid {
		t := shippedAt.Time
		order.ShippedAt = &t
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
