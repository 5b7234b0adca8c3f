package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// Repository defines the persistence operations for order aggregates.
// Methods take a Querier so the whole placement or cancellation flow runs
// inside one transaction.
type Repository interface {
	InsertOrder(ctx context.Context, q postgres.Querier, o *Order) error
	InsertItems(ctx context.Context, q postgres.Querier, orderID string, items []Item) error
	InsertPayment(ctx context.Context, q postgres.Querier, p *Payment) error
	AppendTracking(ctx context.Context, q postgres.Querier, e TrackingEntry) error

	// GetByNumber loads the order with its items. Returns nil when absent.
	GetByNumber(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error)

	// GetByNumberForUpdate is GetByNumber holding a row lock on the order.
	GetByNumberForUpdate(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error)

	// GetFull loads the order with items, payment and tracking history
	// (newest first). Returns nil when absent.
	GetFull(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error)

	ListByUser(ctx context.Context, q postgres.Querier, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, q postgres.Querier, orderID string, status Status) error

	GetPaymentByOrderID(ctx context.Context, q postgres.Querier, orderID string) (*Payment, error)
	SetPaymentStatus(ctx context.Context, q postgres.Querier, paymentID string, status PaymentStatus, transactionID *string) error
}

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

const orderColumns = `id, order_number, user_id, status, total_amount, currency,
	shipping_address_id, billing_address_id, applied_discount_id, created_at, updated_at`

func (r *PostgresRepository) InsertOrder(ctx context.Context, q postgres.Querier, o *Order) error {
	err := q.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, status, total_amount, currency,
			shipping_address_id, billing_address_id, applied_discount_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, o.OrderNumber, o.UserID, o.Status, o.TotalAmount, o.Currency,
		o.ShippingAddressID, o.BillingAddressID, o.AppliedDiscountID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertItems(ctx context.Context, q postgres.Querier, orderID string, items []Item) error {
	for i := range items {
		err := q.QueryRow(ctx, `
			INSERT INTO order_items (order_id, variant_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, orderID, items[i].VariantID, items[i].Quantity, items[i].PriceAtPurchase).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) InsertPayment(ctx context.Context, q postgres.Querier, p *Payment) error {
	err := q.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, status, payment_method, installments, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, p.OrderID, p.Amount, p.Status, p.Method, p.Installments, p.TransactionID).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppendTracking(ctx context.Context, q postgres.Querier, e TrackingEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO order_tracking (order_id, status, message, created_at)
		VALUES ($1, $2, $3, NOW())
	`, e.OrderID, e.Status, e.Message)
	if err != nil {
		return fmt.Errorf("failed to append tracking entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getByNumber(ctx context.Context, q postgres.Querier, orderNumber string, forUpdate bool) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o Order
	err := q.QueryRow(ctx, query, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.TotalAmount, &o.Currency,
		&o.ShippingAddressID, &o.BillingAddressID, &o.AppliedDiscountID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.listItems(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PostgresRepository) GetByNumber(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	return r.getByNumber(ctx, q, orderNumber, false)
}

func (r *PostgresRepository) GetByNumberForUpdate(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	return r.getByNumber(ctx, q, orderNumber, true)
}

func (r *PostgresRepository) GetFull(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	o, err := r.GetByNumber(ctx, q, orderNumber)
	if err != nil || o == nil {
		return o, err
	}

	payment, err := r.GetPaymentByOrderID(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	o.Payment = payment

	tracking, err := r.listTracking(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	o.Tracking = tracking
	return o, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, q postgres.Querier, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, variant_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}

// listTracking returns the audit trail newest first, the order clients read
// it in.
func (r *PostgresRepository) listTracking(ctx context.Context, q postgres.Querier, orderID string) ([]TrackingEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, status, message, created_at
		FROM order_tracking
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking entries: %w", err)
	}
	defer rows.Close()

	entries := make([]TrackingEntry, 0)
	for rows.Next() {
		var e TrackingEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracking entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracking entries: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, q postgres.Querier, userID string) ([]Order, error) {
	rows, err := q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := make([]Order, 0)
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.TotalAmount, &o.Currency,
			&o.ShippingAddressID, &o.BillingAddressID, &o.AppliedDiscountID,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for i := range result {
		items, err := r.listItems(ctx, q, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, q postgres.Querier, orderID string, status Status) error {
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for status update", orderID)
	}
	return nil
}

func (r *PostgresRepository) GetPaymentByOrderID(ctx context.Context, q postgres.Querier, orderID string) (*Payment, error) {
	query := `
		SELECT id, order_id, amount, status, payment_method, installments, transaction_id
		FROM payments
		WHERE order_id = $1
	`

	var p Payment
	err := q.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.Method, &p.Installments, &p.TransactionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) SetPaymentStatus(ctx context.Context, q postgres.Querier, paymentID string, status PaymentStatus, transactionID *string) error {
	tag, err := q.Exec(ctx, `
		UPDATE payments
		SET status = $2,
			transaction_id = COALESCE($3, transaction_id),
			updated_at = NOW()
		WHERE id = $1
	`, paymentID, status, transactionID)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found for status update", paymentID)
	}
	return nil
}
