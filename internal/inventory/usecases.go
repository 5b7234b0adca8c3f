package inventory

import (
	"context"
	"fmt"
	"log"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/metrics"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// UseCase is the inventory ledger: every stock mutation goes through here,
// paired with exactly one log entry in the same transaction.
type UseCase struct {
	db         postgres.Database
	repository Repository
	metrics    *metrics.AppMetrics
}

func NewUseCase(db postgres.Database, repository Repository, m *metrics.AppMetrics) *UseCase {
	return &UseCase{
		db:         db,
		repository: repository,
		metrics:    m,
	}
}

func insufficientStock(variantID string, requested, available int) *apperr.Error {
	return apperr.BadRequest(
		"insufficient stock for variant %s: requested %d, available %d",
		variantID, requested, available,
	)
}

// CheckStock reports whether qty units of the variant are available. Pure
// read, no side effects.
func (uc *UseCase) CheckStock(ctx context.Context, variantID string, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperr.BadRequest("quantity must be positive")
	}

	variant, err := uc.repository.GetVariant(ctx, uc.db.Querier(), variantID)
	if err != nil {
		return false, err
	}
	return qty <= variant.StockQuantity, nil
}

// ReserveStock puts the whole batch on hold or none of it. Each line
// decrements the variant's stock and appends a negative ADJUSTMENT entry
// naming the reservation.
func (uc *UseCase) ReserveStock(ctx context.Context, lines []ReservationLine) error {
	if len(lines) == 0 {
		return apperr.BadRequest("no reservation lines provided")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperr.BadRequest("quantity must be positive for variant %s", line.VariantID)
		}
	}

	var units int64
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, line := range lines {
			variant, err := uc.repository.GetVariantForUpdate(ctx, q, line.VariantID)
			if err != nil {
				return err
			}
			if line.Quantity > variant.StockQuantity {
				uc.metrics.RecordStockRejection(ctx, line.VariantID)
				return insufficientStock(line.VariantID, line.Quantity, variant.StockQuantity)
			}

			ok, err := uc.repository.DecrementStock(ctx, q, line.VariantID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Conflict("stock for variant %s changed concurrently", line.VariantID)
			}

			entry := LogEntry{
				VariantID:  line.VariantID,
				ChangeType: ChangeAdjustment,
				Quantity:   -line.Quantity,
				Reason:     fmt.Sprintf("reservation %s hold", line.ReservationID),
			}
			if err := uc.repository.AppendLog(ctx, q, entry); err != nil {
				return err
			}
			units += int64(line.Quantity)
		}
		return nil
	})
	if err != nil {
		log.Printf("[RESERVE] failed: %v", err)
		return err
	}

	uc.metrics.RecordStockReserved(ctx, units)
	return nil
}

// ReleaseStock returns held units to stock with a positive ADJUSTMENT entry
// per line. Callers must release a reservation at most once: a second call
// credits the stock again.
func (uc *UseCase) ReleaseStock(ctx context.Context, lines []ReservationLine) error {
	if len(lines) == 0 {
		return apperr.BadRequest("no reservation lines provided")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperr.BadRequest("quantity must be positive for variant %s", line.VariantID)
		}
	}

	var units int64
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, line := range lines {
			if _, err := uc.repository.GetVariantForUpdate(ctx, q, line.VariantID); err != nil {
				return err
			}
			if err := uc.repository.IncrementStock(ctx, q, line.VariantID, line.Quantity); err != nil {
				return err
			}

			entry := LogEntry{
				VariantID:  line.VariantID,
				ChangeType: ChangeAdjustment,
				Quantity:   line.Quantity,
				Reason:     fmt.Sprintf("reservation %s release", line.ReservationID),
			}
			if err := uc.repository.AppendLog(ctx, q, entry); err != nil {
				return err
			}
			units += int64(line.Quantity)
		}
		return nil
	})
	if err != nil {
		log.Printf("[RELEASE] failed: %v", err)
		return err
	}

	uc.metrics.RecordStockReleased(ctx, units)
	return nil
}

// ConfirmReservation converts a hold into a sale. The whole conversion runs
// in one transaction: each held quantity is credited back and immediately
// re-debited through the SALE path under the same row lock, so the units
// never become visible to concurrent checkouts and the stock level is
// unchanged. A failure rolls the conversion back with the hold intact.
func (uc *UseCase) ConfirmReservation(ctx context.Context, lines []ReservationLine) error {
	if len(lines) == 0 {
		return apperr.BadRequest("no reservation lines provided")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperr.BadRequest("quantity must be positive for variant %s", line.VariantID)
		}
	}

	return uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, line := range lines {
			if _, err := uc.repository.GetVariantForUpdate(ctx, q, line.VariantID); err != nil {
				return err
			}

			if err := uc.repository.IncrementStock(ctx, q, line.VariantID, line.Quantity); err != nil {
				return err
			}
			release := LogEntry{
				VariantID:  line.VariantID,
				ChangeType: ChangeAdjustment,
				Quantity:   line.Quantity,
				Reason:     fmt.Sprintf("reservation %s confirmed", line.ReservationID),
			}
			if err := uc.repository.AppendLog(ctx, q, release); err != nil {
				return err
			}

			ok, err := uc.repository.DecrementStock(ctx, q, line.VariantID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Conflict("stock for variant %s changed concurrently", line.VariantID)
			}
			sale := LogEntry{
				VariantID:  line.VariantID,
				ChangeType: ChangeSale,
				Quantity:   -line.Quantity,
				Reason:     fmt.Sprintf("reservation %s confirmed", line.ReservationID),
			}
			if err := uc.repository.AppendLog(ctx, q, sale); err != nil {
				return err
			}
		}
		return nil
	})
}

// ConfirmStockReduction finalizes a sale. Availability is re-verified here
// independently of any earlier reservation, then each line decrements stock
// and appends a SALE entry.
func (uc *UseCase) ConfirmStockReduction(ctx context.Context, updates []StockUpdate) error {
	if len(updates) == 0 {
		return apperr.BadRequest("no stock updates provided")
	}
	for _, u := range updates {
		if u.Quantity <= 0 {
			return apperr.BadRequest("quantity must be positive for variant %s", u.VariantID)
		}
	}

	return uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, u := range updates {
			variant, err := uc.repository.GetVariantForUpdate(ctx, q, u.VariantID)
			if err != nil {
				return err
			}
			if u.Quantity > variant.StockQuantity {
				uc.metrics.RecordStockRejection(ctx, u.VariantID)
				return insufficientStock(u.VariantID, u.Quantity, variant.StockQuantity)
			}

			ok, err := uc.repository.DecrementStock(ctx, q, u.VariantID, u.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Conflict("stock for variant %s changed concurrently", u.VariantID)
			}

			entry := LogEntry{
				VariantID:  u.VariantID,
				ChangeType: ChangeSale,
				Quantity:   -u.Quantity,
				Reason:     u.Reason,
			}
			if err := uc.repository.AppendLog(ctx, q, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restock adds units back to stock with a RESTOCK entry per line. There is
// no upper bound.
func (uc *UseCase) Restock(ctx context.Context, updates []StockUpdate) error {
	if len(updates) == 0 {
		return apperr.BadRequest("no stock updates provided")
	}
	for _, u := range updates {
		if u.Quantity <= 0 {
			return apperr.BadRequest("quantity must be positive for variant %s", u.VariantID)
		}
	}

	return uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, u := range updates {
			if _, err := uc.repository.GetVariantForUpdate(ctx, q, u.VariantID); err != nil {
				return err
			}
			if err := uc.repository.IncrementStock(ctx, q, u.VariantID, u.Quantity); err != nil {
				return err
			}

			entry := LogEntry{
				VariantID:  u.VariantID,
				ChangeType: ChangeRestock,
				Quantity:   u.Quantity,
				Reason:     u.Reason,
			}
			if err := uc.repository.AppendLog(ctx, q, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// AdjustStock is the administrative override: it sets stock to an absolute
// non-negative value and logs the signed delta.
func (uc *UseCase) AdjustStock(ctx context.Context, updates []StockUpdate) error {
	if len(updates) == 0 {
		return apperr.BadRequest("no stock updates provided")
	}
	for _, u := range updates {
		if u.Quantity < 0 {
			return apperr.BadRequest("stock for variant %s cannot be set below zero", u.VariantID)
		}
	}

	return uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		for _, u := range updates {
			variant, err := uc.repository.GetVariantForUpdate(ctx, q, u.VariantID)
			if err != nil {
				return err
			}
			if err := uc.repository.SetStock(ctx, q, u.VariantID, u.Quantity); err != nil {
				return err
			}

			entry := LogEntry{
				VariantID:  u.VariantID,
				ChangeType: ChangeAdjustment,
				Quantity:   u.Quantity - variant.StockQuantity,
				Reason:     u.Reason,
			}
			if err := uc.repository.AppendLog(ctx, q, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// LowStockAlerts lists variants running out, lowest first.
func (uc *UseCase) LowStockAlerts(ctx context.Context, threshold int) ([]Variant, error) {
	if threshold <= 0 {
		return nil, apperr.BadRequest("threshold must be positive")
	}
	return uc.repository.ListBelowThreshold(ctx, uc.db.Querier(), threshold)
}
