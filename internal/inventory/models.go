package inventory

import (
	"context"
	"time"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// ChangeType classifies an inventory log entry.
type ChangeType string

const (
	ChangeSale       ChangeType = "SALE"
	ChangeReturn     ChangeType = "RETURN"
	ChangeRestock    ChangeType = "RESTOCK"
	ChangeAdjustment ChangeType = "ADJUSTMENT"
)

// Variant is a purchasable SKU. StockQuantity is the single source of truth
// for availability and is only ever mutated through the ledger.
type Variant struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LogEntry is one immutable row of the append-only stock change log.
// Quantity is signed: negative means stock leaving, positive means stock
// returning.
type LogEntry struct {
	ID         int64      `json:"id"`
	VariantID  string     `json:"variant_id"`
	ChangeType ChangeType `json:"change_type"`
	Quantity   int        `json:"quantity"`
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ReservationLine is one variant/quantity pair of a reservation batch.
type ReservationLine struct {
	VariantID     string `json:"variant_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	ReservationID string `json:"reservation_id"`
}

// StockUpdate is one variant/quantity pair of a confirm, restock or adjust
// batch. For AdjustStock, Quantity is the absolute value to set.
type StockUpdate struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// Repository defines the persistence operations of the inventory ledger.
// Methods take a Querier so they compose into a caller's transaction.
type Repository interface {
	// GetVariant reads a variant without locking it.
	GetVariant(ctx context.Context, q postgres.Querier, variantID string) (*Variant, error)

	// GetVariantForUpdate reads a variant holding a row lock until the
	// surrounding transaction resolves.
	GetVariantForUpdate(ctx context.Context, q postgres.Querier, variantID string) (*Variant, error)

	// DecrementStock conditionally subtracts qty, refusing to go below
	// zero. Returns false when the guard rejected the update.
	DecrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) (bool, error)

	// IncrementStock adds qty back to the variant's stock.
	IncrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error

	// SetStock overwrites the stock counter with an absolute value.
	SetStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error

	// AppendLog inserts one immutable log entry.
	AppendLog(ctx context.Context, q postgres.Querier, entry LogEntry) error

	// ListBelowThreshold returns variants with 0 < stock <= threshold,
	// ascending by stock.
	ListBelowThreshold(ctx context.Context, q postgres.Querier, threshold int) ([]Variant, error)
}
