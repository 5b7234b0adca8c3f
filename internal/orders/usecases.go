package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/matheusmosca/ecommerce-order-core/internal/address"
	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/cart"
	"github.com/matheusmosca/ecommerce-order-core/internal/config"
	"github.com/matheusmosca/ecommerce-order-core/internal/discount"
	"github.com/matheusmosca/ecommerce-order-core/internal/inventory"
	"github.com/matheusmosca/ecommerce-order-core/internal/metrics"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

// AddressFinder is the collaborator that verifies address ownership.
type AddressFinder interface {
	Find(ctx context.Context, q postgres.Querier, addressID, userID string) (*address.Address, error)
}

// CartReader is the collaborator that loads and drains the buyer's cart.
type CartReader interface {
	GetByUser(ctx context.Context, q postgres.Querier, userID string) (*cart.Cart, error)
	ClearItems(ctx context.Context, q postgres.Querier, cartID string) error
}

// StockLedger is the slice of the inventory repository the order flow
// drives inside its own transaction.
type StockLedger interface {
	GetVariantForUpdate(ctx context.Context, q postgres.Querier, variantID string) (*inventory.Variant, error)
	DecrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) (bool, error)
	IncrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error
	AppendLog(ctx context.Context, q postgres.Querier, entry inventory.LogEntry) error
}

// DiscountValidator validates and redeems discount codes inside the
// caller's transaction.
type DiscountValidator interface {
	ValidateWithin(ctx context.Context, q postgres.Querier, code string) (*discount.Discount, error)
	Redeem(ctx context.Context, q postgres.Querier, d *discount.Discount) error
}

// Options are the placement/lifecycle behavior switches.
type Options struct {
	// OnInvalidDiscount: config.InvalidDiscountSkip proceeds without the
	// discount when the code fails validation; config.InvalidDiscountReject
	// aborts the order.
	OnInvalidDiscount string

	// StrictStatusTransitions enforces the order state machine on
	// UpdateStatus.
	StrictStatusTransitions bool

	Currency string
}

// UseCase assembles orders from carts and drives the order lifecycle.
type UseCase struct {
	db         postgres.Database
	repository Repository
	stock      StockLedger
	carts      CartReader
	addresses  AddressFinder
	discounts  DiscountValidator
	metrics    *metrics.AppMetrics
	opts       Options
}

func NewUseCase(
	db postgres.Database,
	repository Repository,
	stock StockLedger,
	carts CartReader,
	addresses AddressFinder,
	discounts DiscountValidator,
	m *metrics.AppMetrics,
	opts Options,
) *UseCase {
	if opts.OnInvalidDiscount == "" {
		opts.OnInvalidDiscount = config.InvalidDiscountSkip
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	return &UseCase{
		db:         db,
		repository: repository,
		stock:      stock,
		carts:      carts,
		addresses:  addresses,
		discounts:  discounts,
		metrics:    m,
		opts:       opts,
	}
}

// PlaceOrderRequest carries everything checkout submits.
type PlaceOrderRequest struct {
	UserID            string
	ShippingAddressID string
	BillingAddressID  string
	PaymentMethod     string
	Installments      *int
	DiscountCode      string
}

// PlaceOrder turns the user's cart into an order. The whole flow runs in
// one transaction: address checks, stock verification, pricing, discount
// redemption, order + items + payment + tracking inserts, stock decrements
// with SALE log entries, and the cart drain. Any failure rolls everything
// back.
func (uc *UseCase) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.PaymentMethod == "" {
		return nil, apperr.BadRequest("payment method is required")
	}

	var placed *Order
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		shipping, err := uc.addresses.Find(ctx, q, req.ShippingAddressID, req.UserID)
		if err != nil {
			return err
		}
		if shipping == nil {
			return apperr.BadRequest("invalid shipping address")
		}
		billing, err := uc.addresses.Find(ctx, q, req.BillingAddressID, req.UserID)
		if err != nil {
			return err
		}
		if billing == nil {
			return apperr.BadRequest("invalid billing address")
		}

		userCart, err := uc.carts.GetByUser(ctx, q, req.UserID)
		if err != nil {
			return err
		}
		if userCart == nil || len(userCart.Items) == 0 {
			return apperr.BadRequest("cart is empty")
		}

		// Verify stock under row locks before writing anything. First
		// insufficient item fails the whole order.
		for _, item := range userCart.Items {
			variant, err := uc.stock.GetVariantForUpdate(ctx, q, item.VariantID)
			if err != nil {
				return err
			}
			if item.Quantity > variant.StockQuantity {
				uc.metrics.RecordStockRejection(ctx, item.VariantID)
				return apperr.BadRequest(
					"insufficient stock for variant %s: requested %d, available %d",
					item.VariantID, item.Quantity, variant.StockQuantity,
				)
			}
		}

		// Total from the price frozen at add-to-cart time.
		var total float64
		for _, item := range userCart.Items {
			total += item.PriceAtAddition * float64(item.Quantity)
		}

		var appliedDiscountID *string
		if req.DiscountCode != "" {
			total, appliedDiscountID, err = uc.applyDiscount(ctx, q, req.DiscountCode, total)
			if err != nil {
				return err
			}
		}

		order := &Order{
			OrderNumber:       NewOrderNumber(),
			UserID:            req.UserID,
			Status:            StatusPending,
			TotalAmount:       total,
			Currency:          uc.opts.Currency,
			ShippingAddressID: req.ShippingAddressID,
			BillingAddressID:  req.BillingAddressID,
			AppliedDiscountID: appliedDiscountID,
		}
		if err := uc.repository.InsertOrder(ctx, q, order); err != nil {
			return err
		}

		items := make([]Item, len(userCart.Items))
		for i, ci := range userCart.Items {
			items[i] = Item{
				VariantID:       ci.VariantID,
				Quantity:        ci.Quantity,
				PriceAtPurchase: ci.PriceAtAddition,
			}
		}
		if err := uc.repository.InsertItems(ctx, q, order.ID, items); err != nil {
			return err
		}
		order.Items = items

		payment := &Payment{
			OrderID:      order.ID,
			Amount:       total,
			Status:       PaymentPending,
			Method:       req.PaymentMethod,
			Installments: req.Installments,
		}
		if err := uc.repository.InsertPayment(ctx, q, payment); err != nil {
			return err
		}
		order.Payment = payment

		// Stock was verified above under the same locks; the conditional
		// decrement still guards the invariant.
		for _, item := range userCart.Items {
			ok, err := uc.stock.DecrementStock(ctx, q, item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Conflict("stock for variant %s changed concurrently", item.VariantID)
			}
			entry := inventory.LogEntry{
				VariantID:  item.VariantID,
				ChangeType: inventory.ChangeSale,
				Quantity:   -item.Quantity,
				Reason:     fmt.Sprintf("order %s placed", order.OrderNumber),
			}
			if err := uc.stock.AppendLog(ctx, q, entry); err != nil {
				return err
			}
		}

		if err := uc.carts.ClearItems(ctx, q, userCart.ID); err != nil {
			return err
		}

		tracking := TrackingEntry{
			OrderID: order.ID,
			Status:  TrackingOrderPlaced,
			Message: "Order has been placed successfully",
		}
		if err := uc.repository.AppendTracking(ctx, q, tracking); err != nil {
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		log.Printf("[PLACE ORDER] user %s failed: %v", req.UserID, err)
		return nil, err
	}

	log.Printf("[PLACE ORDER] user %s placed %s (%.2f %s)",
		req.UserID, placed.OrderNumber, placed.TotalAmount, placed.Currency)
	uc.metrics.RecordOrderPlaced(ctx, placed.TotalAmount, placed.Currency)
	return placed, nil
}

// applyDiscount validates and redeems the code. Failures either abort the
// order or let it proceed at full price, depending on OnInvalidDiscount.
func (uc *UseCase) applyDiscount(ctx context.Context, q postgres.Querier, code string, total float64) (float64, *string, error) {
	d, err := uc.discounts.ValidateWithin(ctx, q, code)
	if err == nil {
		err = uc.discounts.Redeem(ctx, q, d)
	}
	if err != nil {
		if uc.opts.OnInvalidDiscount == config.InvalidDiscountReject {
			return 0, nil, err
		}
		log.Printf("[PLACE ORDER] skipping invalid discount code %s: %v", code, err)
		return total, nil, nil
	}

	uc.metrics.RecordDiscountApplied(ctx, d.Code)
	return discount.Apply(total, d), &d.ID, nil
}

// FindUserOrders returns the user's orders, newest first.
func (uc *UseCase) FindUserOrders(ctx context.Context, userID string) ([]Order, error) {
	return uc.repository.ListByUser(ctx, uc.db.Querier(), userID)
}

// FindOrderByNumber returns one order with payment and tracking history.
// Only the owner may read it.
func (uc *UseCase) FindOrderByNumber(ctx context.Context, userID, orderNumber string) (*Order, error) {
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
	return order, nil
}

// UpdateStatus transitions the order and appends the mapped tracking entry.
// With strict transitions disabled any status change is accepted.
func (uc *UseCase) UpdateStatus(ctx context.Context, orderNumber string, newStatus Status) (*Order, error) {
	if !ValidStatus(newStatus) {
		return nil, apperr.BadRequest("unknown order status %s", newStatus)
	}

	var updated *Order
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		order, err := uc.repository.GetByNumberForUpdate(ctx, q, orderNumber)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order %s not found", orderNumber)
		}

		if uc.opts.StrictStatusTransitions && !CanTransition(order.Status, newStatus) {
			return apperr.BadRequest("cannot transition order from %s to %s", order.Status, newStatus)
		}

		if err := uc.repository.UpdateStatus(ctx, q, order.ID, newStatus); err != nil {
			return err
		}

		tracking := TrackingEntry{
			OrderID: order.ID,
			Status:  TrackingFor(newStatus),
			Message: fmt.Sprintf("Order status updated to %s", newStatus),
		}
		if err := uc.repository.AppendTracking(ctx, q, tracking); err != nil {
			return err
		}

		order.Status = newStatus
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelOrder reverses a placement: status goes to CANCELLED, every item's
// quantity returns to stock with a RETURN log entry, and an EXCEPTION
// tracking entry records the cancellation. All in one transaction.
func (uc *UseCase) CancelOrder(ctx context.Context, userID, orderNumber string) (*Order, error) {
	var cancelled *Order
	err := uc.db.WithinTx(ctx, func(q postgres.Querier) error {
		order, err := uc.repository.GetByNumberForUpdate(ctx, q, orderNumber)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order %s not found", orderNumber)
		}
		if order.UserID != userID {
			return apperr.Forbidden("order %s does not belong to this user", orderNumber)
		}
		if !order.Cancellable() {
			return apperr.BadRequest("order %s cannot be cancelled in status %s", orderNumber, order.Status)
		}

		if err := uc.repository.UpdateStatus(ctx, q, order.ID, StatusCancelled); err != nil {
			return err
		}

		for _, item := range order.Items {
			if _, err := uc.stock.GetVariantForUpdate(ctx, q, item.VariantID); err != nil {
				return err
			}
			if err := uc.stock.IncrementStock(ctx, q, item.VariantID, item.Quantity); err != nil {
				return err
			}
			entry := inventory.LogEntry{
				VariantID:  item.VariantID,
				ChangeType: inventory.ChangeReturn,
				Quantity:   item.Quantity,
				Reason:     fmt.Sprintf("order %s cancelled", order.OrderNumber),
			}
			if err := uc.stock.AppendLog(ctx, q, entry); err != nil {
				return err
			}
		}

		tracking := TrackingEntry{
			OrderID: order.ID,
			Status:  TrackingException,
			Message: "Order cancelled by customer",
		}
		if err := uc.repository.AppendTracking(ctx, q, tracking); err != nil {
			return err
		}

		order.Status = StatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		log.Printf("[CANCEL ORDER] %s failed: %v", orderNumber, err)
		return nil, err
	}

	log.Printf("[CANCEL ORDER] %s cancelled by user %s", orderNumber, userID)
	uc.metrics.RecordOrderCancelled(ctx)
	return cancelled, nil
}
