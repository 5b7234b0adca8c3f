package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the business metrics recorded by the use cases.
type AppMetrics struct {
	OrdersPlaced    metric.Int64Counter
	OrdersCancelled metric.Int64Counter
	OrderRevenue    metric.Float64Counter

	StockReserved    metric.Int64Counter
	StockReleased    metric.Int64Counter
	StockRejections  metric.Int64Counter
	DiscountsApplied metric.Int64Counter
}

// New registers every instrument on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error

	if m.OrdersPlaced, err = meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Orders successfully placed")); err != nil {
		return nil, fmt.Errorf("failed to create orders_placed_total: %w", err)
	}
	if m.OrdersCancelled, err = meter.Int64Counter("orders_cancelled_total",
		metric.WithDescription("Orders cancelled by customers")); err != nil {
		return nil, fmt.Errorf("failed to create orders_cancelled_total: %w", err)
	}
	if m.OrderRevenue, err = meter.Float64Counter("order_revenue_total",
		metric.WithDescription("Total amount of placed orders")); err != nil {
		return nil, fmt.Errorf("failed to create order_revenue_total: %w", err)
	}
	if m.StockReserved, err = meter.Int64Counter("stock_units_reserved_total",
		metric.WithDescription("Stock units put on hold by reservations")); err != nil {
		return nil, fmt.Errorf("failed to create stock_units_reserved_total: %w", err)
	}
	if m.StockReleased, err = meter.Int64Counter("stock_units_released_total",
		metric.WithDescription("Stock units returned by released reservations")); err != nil {
		return nil, fmt.Errorf("failed to create stock_units_released_total: %w", err)
	}
	if m.StockRejections, err = meter.Int64Counter("stock_rejections_total",
		metric.WithDescription("Operations rejected for insufficient stock")); err != nil {
		return nil, fmt.Errorf("failed to create stock_rejections_total: %w", err)
	}
	if m.DiscountsApplied, err = meter.Int64Counter("discounts_applied_total",
		metric.WithDescription("Discount codes redeemed on orders")); err != nil {
		return nil, fmt.Errorf("failed to create discounts_applied_total: %w", err)
	}

	return m, nil
}

// RecordOrderPlaced records a successful placement and its revenue.
func (m *AppMetrics) RecordOrderPlaced(ctx context.Context, total float64, currency string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("currency", currency))
	m.OrdersPlaced.Add(ctx, 1, attrs)
	m.OrderRevenue.Add(ctx, total, attrs)
}

// RecordOrderCancelled records a customer cancellation.
func (m *AppMetrics) RecordOrderCancelled(ctx context.Context) {
	if m == nil {
		return
	}
	m.OrdersCancelled.Add(ctx, 1)
}

// RecordStockReserved records units put on hold.
func (m *AppMetrics) RecordStockReserved(ctx context.Context, units int64) {
	if m == nil {
		return
	}
	m.StockReserved.Add(ctx, units)
}

// RecordStockReleased records units returned to stock.
func (m *AppMetrics) RecordStockReleased(ctx context.Context, units int64) {
	if m == nil {
		return
	}
	m.StockReleased.Add(ctx, units)
}

// RecordStockRejection records an insufficient-stock rejection.
func (m *AppMetrics) RecordStockRejection(ctx context.Context, variantID string) {
	if m == nil {
		return
	}
	m.StockRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("variant_id", variantID)))
}

// RecordDiscountApplied records a redeemed discount code.
func (m *AppMetrics) RecordDiscountApplied(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.DiscountsApplied.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
