package cart

import (
	"context"
	"time"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// Item is one line of a cart. PriceAtAddition freezes the variant price at
// the moment the item entered the cart; order totals are computed from it,
// never from the variant's current price.
type Item struct {
	ID              int64   `json:"id"`
	VariantID       string  `json:"variant_id"`
	Quantity        int     `json:"quantity"`
	PriceAtAddition float64 `json:"price_at_addition"`
}

// Cart is a user's mutable working state. The row outlives order placement;
// only its items are drained.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the persistence operations for carts.
type Repository interface {
	// GetByUser loads a user's cart with its items. Returns nil when the
	// user has no cart yet.
	GetByUser(ctx context.Context, q postgres.Querier, userID string) (*Cart, error)

	// GetOrCreate loads the user's cart, creating an empty one on first
	// access.
	GetOrCreate(ctx context.Context, q postgres.Querier, userID string) (*Cart, error)

	// UpsertItem adds an item or, if the variant is already in the cart,
	// replaces its quantity. The price snapshot is taken on insert only.
	UpsertItem(ctx context.Context, q postgres.Querier, cartID, variantID string, quantity int, price float64) error

	// RemoveItem deletes one variant's line from the cart.
	RemoveItem(ctx context.Context, q postgres.Querier, cartID, variantID string) error

	// ClearItems drains every item, leaving the cart row in place.
	ClearItems(ctx context.Context, q postgres.Querier, cartID string) error
}
