package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/ecommerce-order-core/internal/address"
	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/cart"
	"github.com/matheusmosca/ecommerce-order-core/internal/config"
	"github.com/matheusmosca/ecommerce-order-core/internal/discount"
	"github.com/matheusmosca/ecommerce-order-core/internal/inventory"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
)

type fakeDB struct{}

// txQuerier marks calls made inside the fake transaction.
type txQuerier struct {
	postgres.Querier
}

func (fakeDB) Querier() postgres.Querier { return nil }

func (fakeDB) WithinTx(ctx context.Context, fn func(postgres.Querier) error) error {
	return fn(txQuerier{})
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertOrder(ctx context.Context, q postgres.Querier, o *Order) error {
	args := m.Called(ctx, q, o)
	if args.Error(0) == nil {
		o.ID = "order-1"
	}
	return args.Error(0)
}

func (m *MockRepository) InsertItems(ctx context.Context, q postgres.Querier, orderID string, items []Item) error {
	args := m.Called(ctx, q, orderID, items)
	return args.Error(0)
}

func (m *MockRepository) InsertPayment(ctx context.Context, q postgres.Querier, p *Payment) error {
	args := m.Called(ctx, q, p)
	return args.Error(0)
}

func (m *MockRepository) AppendTracking(ctx context.Context, q postgres.Querier, e TrackingEntry) error {
	args := m.Called(ctx, q, e)
	return args.Error(0)
}

func (m *MockRepository) GetByNumber(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	args := m.Called(ctx, q, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByNumberForUpdate(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	args := m.Called(ctx, q, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetFull(ctx context.Context, q postgres.Querier, orderNumber string) (*Order, error) {
	args := m.Called(ctx, q, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, q postgres.Querier, userID string) ([]Order, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, q postgres.Querier, orderID string, status Status) error {
	args := m.Called(ctx, q, orderID, status)
	return args.Error(0)
}

func (m *MockRepository) GetPaymentByOrderID(ctx context.Context, q postgres.Querier, orderID string) (*Payment, error) {
	args := m.Called(ctx, q, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) SetPaymentStatus(ctx context.Context, q postgres.Querier, paymentID string, status PaymentStatus, transactionID *string) error {
	args := m.Called(ctx, q, paymentID, status, transactionID)
	return args.Error(0)
}

type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) GetVariantForUpdate(ctx context.Context, q postgres.Querier, variantID string) (*inventory.Variant, error) {
	args := m.Called(ctx, q, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Variant), args.Error(1)
}

func (m *MockStockLedger) DecrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) (bool, error) {
	args := m.Called(ctx, q, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockLedger) IncrementStock(ctx context.Context, q postgres.Querier, variantID string, qty int) error {
	args := m.Called(ctx, q, variantID, qty)
	return args.Error(0)
}

func (m *MockStockLedger) AppendLog(ctx context.Context, q postgres.Querier, entry inventory.LogEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

type MockCartReader struct {
	mock.Mock
}

func (m *MockCartReader) GetByUser(ctx context.Context, q postgres.Querier, userID string) (*cart.Cart, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartReader) ClearItems(ctx context.Context, q postgres.Querier, cartID string) error {
	args := m.Called(ctx, q, cartID)
	return args.Error(0)
}

type MockAddressFinder struct {
	mock.Mock
}

func (m *MockAddressFinder) Find(ctx context.Context, q postgres.Querier, addressID, userID string) (*address.Address, error) {
	args := m.Called(ctx, q, addressID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

type MockDiscountValidator struct {
	mock.Mock
}

func (m *MockDiscountValidator) ValidateWithin(ctx context.Context, q postgres.Querier, code string) (*discount.Discount, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Discount), args.Error(1)
}

func (m *MockDiscountValidator) Redeem(ctx context.Context, q postgres.Querier, d *discount.Discount) error {
	args := m.Called(ctx, q, d)
	return args.Error(0)
}

type testMocks struct {
	repo      *MockRepository
	stock     *MockStockLedger
	carts     *MockCartReader
	addresses *MockAddressFinder
	discounts *MockDiscountValidator
}

func newTestUseCase(opts Options) (*UseCase, *testMocks) {
	m := &testMocks{
		repo:      new(MockRepository),
		stock:     new(MockStockLedger),
		carts:     new(MockCartReader),
		addresses: new(MockAddressFinder),
		discounts: new(MockDiscountValidator),
	}
	uc := NewUseCase(fakeDB{}, m.repo, m.stock, m.carts, m.addresses, m.discounts, nil, opts)
	return uc, m
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		UserID:            "user-1",
		ShippingAddressID: "addr-1",
		BillingAddressID:  "addr-2",
		PaymentMethod:     "credit_card",
	}
}

func twoItemCart() *cart.Cart {
	return &cart.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []cart.Item{
			{VariantID: "v1", Quantity: 2, PriceAtAddition: 10},
			{VariantID: "v2", Quantity: 1, PriceAtAddition: 5},
		},
	}
}

func expectOwnedAddresses(m *testMocks) {
	m.addresses.On("Find", mock.Anything, mock.Anything, "addr-1", "user-1").
		Return(&address.Address{ID: "addr-1", UserID: "user-1"}, nil)
	m.addresses.On("Find", mock.Anything, mock.Anything, "addr-2", "user-1").
		Return(&address.Address{ID: "addr-2", UserID: "user-1"}, nil)
}

func TestPlaceOrder(t *testing.T) {
	uc, m := newTestUseCase(Options{Currency: "USD"})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v1").
		Return(&inventory.Variant{ID: "v1", StockQuantity: 5}, nil)
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v2").
		Return(&inventory.Variant{ID: "v2", StockQuantity: 5}, nil)
	m.repo.On("InsertOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(o *Order) bool {
		return o.Status == StatusPending && o.TotalAmount == 25 && o.Currency == "USD" && o.AppliedDiscountID == nil
	})).Return(nil)
	m.repo.On("InsertItems", mock.Anything, mock.Anything, "order-1", mock.MatchedBy(func(items []Item) bool {
		return len(items) == 2 && items[0].PriceAtPurchase == 10 && items[1].PriceAtPurchase == 5
	})).Return(nil)
	m.repo.On("InsertPayment", mock.Anything, mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.Status == PaymentPending && p.Amount == 25 && p.Method == "credit_card"
	})).Return(nil)
	m.stock.On("DecrementStock", mock.Anything, mock.Anything, "v1", 2).Return(true, nil)
	m.stock.On("DecrementStock", mock.Anything, mock.Anything, "v2", 1).Return(true, nil)
	m.stock.On("AppendLog", mock.Anything, mock.Anything, mock.MatchedBy(func(e inventory.LogEntry) bool {
		return e.ChangeType == inventory.ChangeSale && e.Quantity < 0
	})).Return(nil)
	m.carts.On("ClearItems", mock.Anything, mock.Anything, "cart-1").Return(nil)
	m.repo.On("AppendTracking", mock.Anything, mock.Anything, mock.MatchedBy(func(e TrackingEntry) bool {
		return e.Status == TrackingOrderPlaced && e.OrderID == "order-1"
	})).Return(nil)

	order, err := uc.PlaceOrder(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, PaymentPending, order.Payment.Status)
	m.repo.AssertExpectations(t)
	m.stock.AssertExpectations(t)
	m.carts.AssertExpectations(t)
}

func TestPlaceOrder_InvalidAddress(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.addresses.On("Find", mock.Anything, mock.Anything, "addr-1", "user-1").Return(nil, nil)

	order, err := uc.PlaceOrder(context.Background(), validRequest())

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	m.carts.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").
		Return(&cart.Cart{ID: "cart-1", UserID: "user-1", Items: []cart.Item{}}, nil)

	order, err := uc.PlaceOrder(context.Background(), validRequest())

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "cart is empty")
	m.repo.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingCart(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(nil, nil)

	_, err := uc.PlaceOrder(context.Background(), validRequest())

	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestPlaceOrder_InsufficientStockFirstFail(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v1").
		Return(&inventory.Variant{ID: "v1", StockQuantity: 1}, nil)

	order, err := uc.PlaceOrder(context.Background(), validRequest())

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	// First insufficient item fails the order; the second is never read.
	assert.Contains(t, err.Error(), "v1")
	m.stock.AssertNotCalled(t, "GetVariantForUpdate", mock.Anything, mock.Anything, "v2")
	m.repo.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything, mock.Anything)
	m.stock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "ClearItems", mock.Anything, mock.Anything, mock.Anything)
}

func expectHappyPathAfterPricing(m *testMocks, wantTotal float64) {
	m.repo.On("InsertOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(o *Order) bool {
		return o.TotalAmount == wantTotal
	})).Return(nil)
	m.repo.On("InsertItems", mock.Anything, mock.Anything, "order-1", mock.Anything).Return(nil)
	m.repo.On("InsertPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.stock.On("DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	m.stock.On("AppendLog", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.carts.On("ClearItems", mock.Anything, mock.Anything, "cart-1").Return(nil)
	m.repo.On("AppendTracking", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func expectStockedVariants(m *testMocks) {
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v1").
		Return(&inventory.Variant{ID: "v1", StockQuantity: 5}, nil)
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v2").
		Return(&inventory.Variant{ID: "v2", StockQuantity: 5}, nil)
}

func TestPlaceOrder_DiscountApplied(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	expectStockedVariants(m)
	d := &discount.Discount{ID: "disc-1", Code: "SAVE20", Type: discount.TypePercentage, Value: 20}
	// The validity read and the usage increment share the placement
	// transaction's querier.
	m.discounts.On("ValidateWithin", mock.Anything, txQuerier{}, "SAVE20").Return(d, nil)
	m.discounts.On("Redeem", mock.Anything, txQuerier{}, d).Return(nil)
	expectHappyPathAfterPricing(m, 20) // 25 minus 20%

	req := validRequest()
	req.DiscountCode = "SAVE20"
	order, err := uc.PlaceOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, 20.0, order.TotalAmount)
	assert.Equal(t, "disc-1", *order.AppliedDiscountID)
	m.discounts.AssertExpectations(t)
}

func TestPlaceOrder_InvalidDiscountSkipped(t *testing.T) {
	uc, m := newTestUseCase(Options{OnInvalidDiscount: config.InvalidDiscountSkip})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	expectStockedVariants(m)
	m.discounts.On("ValidateWithin", mock.Anything, mock.Anything, "EXPIRED").
		Return(nil, apperr.BadRequest("discount code EXPIRED has expired"))
	expectHappyPathAfterPricing(m, 25) // full price, discount skipped

	req := validRequest()
	req.DiscountCode = "EXPIRED"
	order, err := uc.PlaceOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Nil(t, order.AppliedDiscountID)
}

func TestPlaceOrder_InvalidDiscountRejected(t *testing.T) {
	uc, m := newTestUseCase(Options{OnInvalidDiscount: config.InvalidDiscountReject})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	expectStockedVariants(m)
	m.discounts.On("ValidateWithin", mock.Anything, mock.Anything, "EXPIRED").
		Return(nil, apperr.BadRequest("discount code EXPIRED has expired"))

	req := validRequest()
	req.DiscountCode = "EXPIRED"
	order, err := uc.PlaceOrder(context.Background(), req)

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	m.repo.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_RedeemConflictSkipped(t *testing.T) {
	uc, m := newTestUseCase(Options{OnInvalidDiscount: config.InvalidDiscountSkip})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	expectStockedVariants(m)
	d := &discount.Discount{ID: "disc-1", Code: "LAST1", Type: discount.TypeFixed, Value: 5}
	m.discounts.On("ValidateWithin", mock.Anything, mock.Anything, "LAST1").Return(d, nil)
	m.discounts.On("Redeem", mock.Anything, mock.Anything, d).
		Return(apperr.Conflict("discount code LAST1 usage limit reached"))
	expectHappyPathAfterPricing(m, 25)

	req := validRequest()
	req.DiscountCode = "LAST1"
	order, err := uc.PlaceOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Nil(t, order.AppliedDiscountID)
}

func TestPlaceOrder_TrackingFailureAbortsEverything(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	expectOwnedAddresses(m)
	m.carts.On("GetByUser", mock.Anything, mock.Anything, "user-1").Return(twoItemCart(), nil)
	expectStockedVariants(m)
	m.repo.On("InsertOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.repo.On("InsertItems", mock.Anything, mock.Anything, "order-1", mock.Anything).Return(nil)
	m.repo.On("InsertPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.stock.On("DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	m.stock.On("AppendLog", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.carts.On("ClearItems", mock.Anything, mock.Anything, "cart-1").Return(nil)
	m.repo.On("AppendTracking", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	order, err := uc.PlaceOrder(context.Background(), validRequest())

	// The transaction runner receives the error, so every earlier write in
	// the flow rolls back with it.
	assert.Nil(t, order)
	assert.Error(t, err)
}

func TestUpdateStatus(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-1").
		Return(&Order{ID: "order-1", OrderNumber: "ORD-1", Status: StatusDelivered}, nil)
	m.repo.On("UpdateStatus", mock.Anything, mock.Anything, "order-1", StatusPending).Return(nil)
	m.repo.On("AppendTracking", mock.Anything, mock.Anything, mock.MatchedBy(func(e TrackingEntry) bool {
		return e.Status == TrackingOrderPlaced
	})).Return(nil)

	// Permissive mode accepts even DELIVERED -> PENDING.
	order, err := uc.UpdateStatus(context.Background(), "ORD-1", StatusPending)

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	m.repo.AssertExpectations(t)
}

func TestUpdateStatus_StrictRejectsIllegalTransition(t *testing.T) {
	uc, m := newTestUseCase(Options{StrictStatusTransitions: true})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-1").
		Return(&Order{ID: "order-1", OrderNumber: "ORD-1", Status: StatusDelivered}, nil)

	order, err := uc.UpdateStatus(context.Background(), "ORD-1", StatusPending)

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	m.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-404").Return(nil, nil)

	_, err := uc.UpdateStatus(context.Background(), "ORD-404", StatusShipped)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	uc, _ := newTestUseCase(Options{})

	_, err := uc.UpdateStatus(context.Background(), "ORD-1", Status("LOST"))

	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func cancellableOrder() *Order {
	return &Order{
		ID:          "order-1",
		OrderNumber: "ORD-1",
		UserID:      "user-1",
		Status:      StatusPending,
		Items: []Item{
			{VariantID: "v1", Quantity: 3, PriceAtPurchase: 10},
		},
	}
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-1").
		Return(cancellableOrder(), nil)
	m.repo.On("UpdateStatus", mock.Anything, mock.Anything, "order-1", StatusCancelled).Return(nil)
	m.stock.On("GetVariantForUpdate", mock.Anything, mock.Anything, "v1").
		Return(&inventory.Variant{ID: "v1", StockQuantity: 0}, nil)
	m.stock.On("IncrementStock", mock.Anything, mock.Anything, "v1", 3).Return(nil)
	m.stock.On("AppendLog", mock.Anything, mock.Anything, mock.MatchedBy(func(e inventory.LogEntry) bool {
		return e.ChangeType == inventory.ChangeReturn && e.Quantity == 3 && e.VariantID == "v1"
	})).Return(nil)
	m.repo.On("AppendTracking", mock.Anything, mock.Anything, mock.MatchedBy(func(e TrackingEntry) bool {
		return e.Status == TrackingException
	})).Return(nil)

	order, err := uc.CancelOrder(context.Background(), "user-1", "ORD-1")

	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, order.Status)
	m.repo.AssertExpectations(t)
	m.stock.AssertExpectations(t)
}

func TestCancelOrder_GuardsShippedOrders(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	shipped := cancellableOrder()
	shipped.Status = StatusShipped
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-1").Return(shipped, nil)

	order, err := uc.CancelOrder(context.Background(), "user-1", "ORD-1")

	assert.Nil(t, order)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "cannot be cancelled")
	m.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.stock.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_Forbidden(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-1").
		Return(cancellableOrder(), nil)

	_, err := uc.CancelOrder(context.Background(), "someone-else", "ORD-1")

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	m.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_NotFound(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetByNumberForUpdate", mock.Anything, mock.Anything, "ORD-404").Return(nil, nil)

	_, err := uc.CancelOrder(context.Background(), "user-1", "ORD-404")

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFindOrderByNumber_OwnershipEnforced(t *testing.T) {
	uc, m := newTestUseCase(Options{})
	m.repo.On("GetFull", mock.Anything, mock.Anything, "ORD-1").
		Return(&Order{ID: "order-1", OrderNumber: "ORD-1", UserID: "user-1"}, nil)

	order, err := uc.FindOrderByNumber(context.Background(), "user-1", "ORD-1")
	assert.NoError(t, err)
	assert.Equal(t, "ORD-1", order.OrderNumber)

	_, err = uc.FindOrderByNumber(context.Background(), "someone-else", "ORD-1")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
