// Package reservation bridges the gap between checkout start and payment
// resolution: it holds stock under a named reservation until the caller
// either confirms the sale or releases the hold.
package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/inventory"
)

// Ledger is the slice of the inventory ledger the manager drives.
type Ledger interface {
	ReserveStock(ctx context.Context, lines []inventory.ReservationLine) error
	ReleaseStock(ctx context.Context, lines []inventory.ReservationLine) error
	ConfirmReservation(ctx context.Context, lines []inventory.ReservationLine) error
}

// Line is one variant/quantity pair requested by the caller.
type Line struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// Reservation is the named hold handed back to the caller. It must be
// resolved by exactly one of Confirm or Release; expired-but-unresolved
// reservations are swept by an external job, not here.
type Reservation struct {
	ID        string    `json:"reservation_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Lines     []Line    `json:"lines"`
}

// Manager generates reservation ids and delegates the stock movements to
// the ledger. It owns no storage of its own beyond the ledger's log rows.
type Manager struct {
	ledger Ledger
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(ledger Ledger, ttl time.Duration) *Manager {
	return &Manager{
		ledger: ledger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Reserve puts every line on hold under a fresh reservation id. The whole
// batch succeeds or none of it does.
func (m *Manager) Reserve(ctx context.Context, lines []Line) (*Reservation, error) {
	if len(lines) == 0 {
		return nil, apperr.BadRequest("no reservation lines provided")
	}

	reservationID := uuid.New().String()
	if err := m.ledger.ReserveStock(ctx, toLedgerLines(reservationID, lines)); err != nil {
		return nil, err
	}

	return &Reservation{
		ID:        reservationID,
		ExpiresAt: m.now().Add(m.ttl),
		Lines:     lines,
	}, nil
}

// Release returns the held units to stock. Must be called at most once per
// reservation: the ledger does not guard against double release.
func (m *Manager) Release(ctx context.Context, reservationID string, lines []Line) error {
	if reservationID == "" {
		return apperr.BadRequest("reservation id is required")
	}
	if len(lines) == 0 {
		return apperr.BadRequest("no reservation lines provided")
	}
	return m.ledger.ReleaseStock(ctx, toLedgerLines(reservationID, lines))
}

// Confirm finalizes the reservation as a sale. The ledger converts the hold
// in a single transaction: the held units never become available to
// concurrent checkouts, and a failed confirm leaves the hold in place so the
// caller can retry or release.
func (m *Manager) Confirm(ctx context.Context, reservationID string, lines []Line) error {
	if reservationID == "" {
		return apperr.BadRequest("reservation id is required")
	}
	if len(lines) == 0 {
		return apperr.BadRequest("no reservation lines provided")
	}
	return m.ledger.ConfirmReservation(ctx, toLedgerLines(reservationID, lines))
}

func toLedgerLines(reservationID string, lines []Line) []inventory.ReservationLine {
	ledgerLines := make([]inventory.ReservationLine, len(lines))
	for i, line := range lines {
		ledgerLines[i] = inventory.ReservationLine{
			VariantID:     line.VariantID,
			Quantity:      line.Quantity,
			ReservationID: reservationID,
		}
	}
	return ledgerLines
}
