package cart

import (
	"context"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/inventory"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// UseCase is the storefront cart surface.
type UseCase struct {
	db         postgres.Database
	repository Repository
	variants   inventory.Repository
}

func NewUseCase(db postgres.Database, repository Repository, variants inventory.Repository) *UseCase {
	return &UseCase{
		db:         db,
		repository: repository,
		variants:   variants,
	}
}

// Get returns the user's cart, creating an empty one on first access.
func (uc *UseCase) Get(ctx context.Context, userID string) (*Cart, error) {
	var c *Cart
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		var err error
		c, err = uc.repository.GetOrCreate(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem puts quantity units of a variant in the cart, snapshotting the
// variant's current price on first add.
func (uc *UseCase) AddItem(ctx context.Context, userID, variantID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be positive")
	}

	var c *Cart
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		variant, err := uc.variants.GetVariant(ctx, q, variantID)
		if err != nil {
			return err
		}

		c, err = uc.repository.GetOrCreate(ctx, q, userID)
		if err != nil {
			return err
		}
		if err := uc.repository.UpsertItem(ctx, q, c.ID, variantID, quantity, variant.Price); err != nil {
			return err
		}

		c, err = uc.repository.GetByUser(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops a variant's line from the cart.
func (uc *UseCase) RemoveItem(ctx context.Context, userID, variantID string) (*Cart, error) {
	var c *Cart
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		var err error
		c, err = uc.repository.GetByUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("cart not found")
		}
		if err := uc.repository.RemoveItem(ctx, q, c.ID, variantID); err != nil {
			return err
		}

		c, err = uc.repository.GetByUser(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
