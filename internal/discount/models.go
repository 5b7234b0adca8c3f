package discount

import (
	"context"
	"time"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

type Type string

const (
	TypePercentage Type = "PERCENTAGE"
	TypeFixed      Type = "FIXED"
)

// Discount is a promotional code. Codes are stored in canonical uppercase.
// For PERCENTAGE discounts Value is in (0, 100]. TimesUsed is an internal
// counter and never serialized to clients.
type Discount struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Type       Type       `json:"type"`
	Value      float64    `json:"value"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	UsageLimit *int       `json:"usage_limit,omitempty"`
	TimesUsed  int        `json:"-"`
}

// Repository defines the persistence operations for discounts.
type Repository interface {
	// GetByCode looks up a discount by its canonical uppercase code.
	// Returns nil when no discount matches.
	GetByCode(ctx context.Context, q postgres.Querier, code string) (*Discount, error)

	// IncrementUsage bumps times_used only while the usage limit is not
	// exhausted, re-checking the counter at write time. Returns false when
	// the limit was already reached.
	IncrementUsage(ctx context.Context, q postgres.Querier, discountID string) (bool, error)
}
