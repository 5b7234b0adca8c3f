package discount

import (
	"context"
	"strings"
	"time"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// UseCase validates discount codes and applies them to order totals.
type UseCase struct {
	db         postgres.Database
	repository Repository
	now        func() time.Time
}

func NewUseCase(db postgres.Database, repository Repository) *UseCase {
	return &UseCase{
		db:         db,
		repository: repository,
		now:        time.Now,
	}
}

// Validate checks a code's temporal and usage validity and returns the
// discount on success. It does not consume a use; Redeem does that.
func (uc *UseCase) Validate(ctx context.Context, code string) (*Discount, error) {
	return uc.ValidateWithin(ctx, uc.db.Querier(), code)
}

// ValidateWithin runs the same checks through the caller's querier, so a
// placement transaction reads the code in the same snapshot it redeems it in.
func (uc *UseCase) ValidateWithin(ctx context.Context, q postgres.Querier, code string) (*Discount, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if canonical == "" {
		return nil, apperr.BadRequest("discount code is required")
	}

	d, err := uc.repository.GetByCode(ctx, q, canonical)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("discount code %s not found", canonical)
	}

	now := uc.now()
	if !d.IsActive {
		return nil, apperr.BadRequest("discount code %s is not active", canonical)
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return nil, apperr.BadRequest("discount code %s is not yet active", canonical)
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return nil, apperr.BadRequest("discount code %s has expired", canonical)
	}
	if d.UsageLimit != nil && d.TimesUsed >= *d.UsageLimit {
		return nil, apperr.BadRequest("discount code %s usage limit reached", canonical)
	}

	return d, nil
}

// Redeem consumes one use of the discount inside the caller's transaction.
// The counter is re-checked against the limit at write time; exhaustion
// under concurrency surfaces as Conflict.
func (uc *UseCase) Redeem(ctx context.Context, q postgres.Querier, d *Discount) error {
	ok, err := uc.repository.IncrementUsage(ctx, q, d.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflict("discount code %s usage limit reached", d.Code)
	}
	return nil
}

// Apply computes the discounted total. PERCENTAGE scales the total down;
// FIXED subtracts with a floor at zero.
func Apply(totalAmount float64, d *Discount) float64 {
	switch d.Type {
	case TypePercentage:
		return totalAmount * (1 - d.Value/100)
	case TypeFixed:
		if d.Value >= totalAmount {
			return 0
		}
		return totalAmount - d.Value
	default:
		return totalAmount
	}
}
