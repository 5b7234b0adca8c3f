package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

const variantColumns = `id, sku, price, stock_quantity, created_at, updated_at`

func scanVariant(row pgx.Row) (*Variant, error) {
	var v Variant
	err := row.Scan(&v.ID, &v.SKU, &v.Price, &v.StockQuantity, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan variant: %w", err)
	}
	return &v, nil
}

func (r *PostgresRepository) GetVariant(ctx context.Context, q postgres.Querier, variantID string) (*Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	v, err := scanVariant(q.QueryRow(ctx, query, variantID))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("variant %s not found", variantID)
	}
	return v, nil
}

// GetVariantForUpdate obtains a pessimistic row lock, serializing concurrent
// stock mutations on the same variant.
func (r *PostgresRepository) GetVariantForUpdate(ctx context.Context, q postgres.Querier, variantID string) (*Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 FOR UPDATE`
	v, err := scanVariant(q.QueryRow(ctx, query, variantID))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("variant %s not found", variantID)
	}
	return v, nil
}

// DecrementStock is a conditional update: the WHERE clause re-checks the
// counter at write time so stock can never go negative, even if the value
// read earlier in the request is stale.
func (r *PostgresRepository) DecrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) (bool, error) {
	query := `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $2,
			updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`
	tag, err := q.Exec(ctx, query, variantID, qty)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) IncrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error {
	query := `
		UPDATE product_variants
		SET stock_quantity = stock_quantity + $2,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, variantID, qty)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("variant %s not found", variantID)
	}
	return nil
}

func (r *PostgresRepository) SetStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error {
	query := `
		UPDATE product_variants
		SET stock_quantity = $2,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, variantID, qty)
	if err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("variant %s not found", variantID)
	}
	return nil
}

func (r *PostgresRepository) AppendLog(ctx context.Context, q postgres.Querier, entry LogEntry) error {
	query := `
		INSERT INTO inventory_log (variant_id, change_type, quantity, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := q.Exec(ctx, query, entry.VariantID, entry.ChangeType, entry.Quantity, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to append inventory log entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListBelowThreshold(ctx context.Context, q postgres.Querier, threshold int) ([]Variant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE stock_quantity > 0 AND stock_quantity <= $1
		ORDER BY stock_quantity ASC
	`
	rows, err := q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock variants: %w", err)
	}
	defer rows.Close()

	variants := make([]Variant, 0)
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.SKU, &v.Price, &v.StockQuantity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read low stock variants: %w", err)
	}
	return variants, nil
}
