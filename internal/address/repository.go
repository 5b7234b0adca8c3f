// Package address is the thin collaborator the order flow uses to verify
// that a shipping or billing address exists and belongs to the buyer.
package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

type Address struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

// Repository defines address lookups.
type Repository interface {
	// Find returns the address only when it exists and is owned by
	// userID; nil otherwise.
	Find(ctx context.Context, q postgres.Querier, addressID, userID string) (*Address, error)
}

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

func (r *PostgresRepository) Find(ctx context.Context, q postgres.Querier, addressID, userID string) (*Address, error) {
	query := `
		SELECT id, user_id, street, city, country, zip_code
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	var a Address
	err := q.QueryRow(ctx, query, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.Street, &a.City, &a.Country, &a.ZipCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return &a, nil
}
