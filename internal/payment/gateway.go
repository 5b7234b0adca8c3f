package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matheusmosca/ecommerce-order-core/internal/orders"
)

// Outcome is what the payment provider reports for a charge attempt.
type Outcome struct {
	Status            orders.PaymentStatus `json:"status"`
	TransactionID     string               `json:"transaction_id"`
	ProviderReference string               `json:"provider_reference"`
}

// Gateway is the charge capability this core consumes. The provider's
// protocol details live behind it.
type Gateway interface {
	Charge(ctx context.Context, order *orders.Order, method string) (*Outcome, error)
}

type chargeRequest struct {
	OrderNumber    string  `json:"order_number"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Method         string  `json:"method"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// RestyGateway calls the provider's HTTP charge endpoint.
type RestyGateway struct {
	client *resty.Client
}

func NewRestyGateway(baseURL string, timeout time.Duration) *RestyGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &RestyGateway{client: client}
}

func (g *RestyGateway) Charge(ctx context.Context, order *orders.Order, method string) (*Outcome, error) {
	// The key is stable per payment row, so the provider can collapse
	// duplicate charge attempts for the same order.
	idempotencyKey := order.OrderNumber
	if order.Payment != nil {
		idempotencyKey = order.Payment.ID
	}

	var outcome Outcome
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(chargeRequest{
			OrderNumber:    order.OrderNumber,
			Amount:         order.TotalAmount,
			Currency:       order.Currency,
			Method:         method,
			IdempotencyKey: idempotencyKey,
		}).
		SetResult(&outcome).
		Post("/charges")
	if err != nil {
		return nil, fmt.Errorf("failed to call payment provider: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode())
	}
	return &outcome, nil
}
