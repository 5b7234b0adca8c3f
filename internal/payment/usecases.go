package payment

import (
	"context"
	"log"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/orders"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// UseCase applies payment provider outcomes to the order's payment row.
type UseCase struct {
	db         postgres.Database
	repository orders.Repository
	gateway    Gateway
}

func NewUseCase(db postgres.Database, repository orders.Repository, gateway Gateway) *UseCase {
	return &UseCase{
		db:         db,
		repository: repository,
		gateway:    gateway,
	}
}

// ProviderResult is the outcome reported back for an order, either by the
// provider's webhook or by a direct charge.
type ProviderResult struct {
	OrderNumber   string
	Status        orders.PaymentStatus
	TransactionID string
}

// ApplyResult moves the payment row out of PENDING. Repeating the same
// terminal status is a no-op; conflicting terminal statuses are rejected.
// A failed payment also leaves an EXCEPTION entry on the order's trail.
func (uc *UseCase) ApplyResult(ctx context.Context, result ProviderResult) error {
	if result.Status != orders.PaymentSuccessful && result.Status != orders.PaymentFailed {
		return apperr.BadRequest("unknown payment status %s", result.Status)
	}

	return uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		order, err := uc.repository.GetByNumberForUpdate(ctx, q, result.OrderNumber)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order %s not found", result.OrderNumber)
		}

		pay, err := uc.repository.GetPaymentByOrderID(ctx, q, order.ID)
		if err != nil {
			return err
		}
		if pay == nil {
			return apperr.NotFound("payment for order %s not found", result.OrderNumber)
		}
		if pay.Status == result.Status {
			return nil
		}
		if pay.Status != orders.PaymentPending {
			return apperr.Conflict("payment for order %s already resolved as %s", result.OrderNumber, pay.Status)
		}

		var transactionID *string
		if result.TransactionID != "" {
			transactionID = &result.TransactionID
		}
		if err := uc.repository.SetPaymentStatus(ctx, q, pay.ID, result.Status, transactionID); err != nil {
			return err
		}

		if result.Status == orders.PaymentFailed {
			tracking := orders.TrackingEntry{
				OrderID: order.ID,
				Status:  orders.TrackingException,
				Message: "Payment failed",
			}
			if err := uc.repository.AppendTracking(ctx, q, tracking); err != nil {
				return err
			}
		}
		return nil
	})
}

// ChargeOrder asks the provider to charge a pending order and applies the
// outcome. Only the order's owner may trigger it.
func (uc *UseCase) ChargeOrder(ctx context.Context, userID, orderNumber string) (*Outcome, error) {
	order, err := uc.repository.GetFull(ctx, uc.db.Querier(), orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order %s not found", orderNumber)
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("order %s does not belong to this user", orderNumber)
	}
	if order.Payment == nil {
		return nil, apperr.NotFound("payment for order %s not found", orderNumber)
	}
	if order.Payment.Status != orders.PaymentPending {
		return nil, apperr.Conflict("payment for order %s already resolved as %s", orderNumber, order.Payment.Status)
	}

	outcome, err := uc.gateway.Charge(ctx, order, order.Payment.Method)
	if err != nil {
		log.Printf("[CHARGE] order %s provider call failed: %v", orderNumber, err)
		return nil, err
	}

	err = uc.ApplyResult(ctx, ProviderResult{
		OrderNumber:   orderNumber,
		Status:        outcome.Status,
		TransactionID: outcome.TransactionID,
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
