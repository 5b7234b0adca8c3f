package discount

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

func (r *PostgresRepository) GetByCode(ctx context.Context, q postgres.Querier, code string) (*Discount, error) {
	query := `
		SELECT id, code, discount_type, value, starts_at, ends_at, is_active, usage_limit, times_used
		FROM discounts
		WHERE code = $1
	`

	var d Discount
	err := q.QueryRow(ctx, query, code).Scan(
		&d.ID,
		&d.Code,
		&d.Type,
		&d.Value,
		&d.StartsAt,
		&d.EndsAt,
		&d.IsActive,
		&d.UsageLimit,
		&d.TimesUsed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get discount by code: %w", err)
	}
	return &d, nil
}

// IncrementUsage is a conditional update: the WHERE clause re-checks the
// usage counter against the limit at write time, so two concurrent orders
// cannot both redeem the last use of a code.
func (r *PostgresRepository) IncrementUsage(ctx context.Context, q postgres.Querier, discountID string) (bool, error) {
	query := `
		UPDATE discounts
		SET times_used = times_used + 1,
			updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR times_used < usage_limit)
	`
	tag, err := q.Exec(ctx, query, discountID)
	if err != nil {
		return false, fmt.Errorf("failed to increment discount usage: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
