package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type TrackingStatus string

const (
	TrackingOrderPlaced TrackingStatus = "ORDER_PLACED"
	TrackingProcessing  TrackingStatus = "PROCESSING"
	TrackingShipped     TrackingStatus = "SHIPPED"
	TrackingDelivered   TrackingStatus = "DELIVERED"
	TrackingException   TrackingStatus = "EXCEPTION"
)

// TrackingFor maps an order status to the customer-facing tracking status.
// Unmapped statuses fall back to ORDER_PLACED.
func TrackingFor(s Status) TrackingStatus {
	switch s {
	case StatusProcessing:
		return TrackingProcessing
	case StatusShipped:
		return TrackingShipped
	case StatusDelivered:
		return TrackingDelivered
	case StatusCancelled, StatusRefunded:
		return TrackingException
	default:
		return TrackingOrderPlaced
	}
}

// allowedTransitions is the order state machine, enforced only when strict
// status transitions are enabled.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentFailed     PaymentStatus = "FAILED"
)

// Order is the immutable snapshot of a completed checkout. It is created
// atomically with its items, payment and first tracking entry, and is never
// hard-deleted; cancellation is a status transition.
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	UserID            string          `json:"user_id"`
	Status            Status          `json:"status"`
	TotalAmount       float64         `json:"total_amount"`
	Currency          string          `json:"currency"`
	ShippingAddressID string          `json:"shipping_address_id"`
	BillingAddressID  string          `json:"billing_address_id"`
	AppliedDiscountID *string         `json:"applied_discount_id,omitempty"`
	Items             []Item          `json:"items"`
	Payment           *Payment        `json:"payment,omitempty"`
	Tracking          []TrackingEntry `json:"tracking,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Cancellable reports whether a customer may still cancel the order.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// Item is an immutable order line. PriceAtPurchase is frozen at placement
// time and never re-derived from the variant's current price.
type Item struct {
	ID              int64   `json:"id"`
	VariantID       string  `json:"variant_id"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// Payment is the 1:1 payment record created alongside the order in PENDING
// state. Transitions are driven by the payment provider's callback.
type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"order_id"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	Method        string        `json:"method"`
	Installments  *int          `json:"installments,omitempty"`
	TransactionID *string       `json:"transaction_id,omitempty"`
}

// TrackingEntry is one row of the order's append-only audit trail.
type TrackingEntry struct {
	ID        int64          `json:"id"`
	OrderID   string         `json:"order_id"`
	Status    TrackingStatus `json:"status"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewOrderNumber generates the human-facing order number.
func NewOrderNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "ORD-" + fragment[:12]
}
