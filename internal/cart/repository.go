package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) GetByUser(ctx context.Context, q postgres.Querier, userID string) (*Cart, error) {
	var c Cart
	err := q.QueryRow(ctx,
		`SELECT id, user_id, created_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items, err := r.listItems(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, q postgres.Querier, userID string) (*Cart, error) {
	c, err := r.GetByUser(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	created := &Cart{UserID: userID, Items: []Item{}}
	err = q.QueryRow(ctx,
		`INSERT INTO carts (user_id, created_at) VALUES ($1, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, created_at`,
		userID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, q postgres.Querier, cartID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, variant_id, quantity, price_at_addition
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Quantity, &item.PriceAtAddition); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) UpsertItem(ctx context.Context, q postgres.Querier, cartID, variantID string, quantity int, price float64) error {
	// price_at_addition is preserved on conflict: the snapshot belongs to
	// the first add, not the latest quantity change.
	_, err := q.Exec(ctx, `
		INSERT INTO cart_items (cart_id, variant_id, quantity, price_at_addition)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`, cartID, variantID, quantity, price)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, q postgres.Querier, cartID, variantID string) error {
	_, err := q.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`,
		cartID, variantID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearItems(ctx context.Context, q postgres.Querier, cartID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}
