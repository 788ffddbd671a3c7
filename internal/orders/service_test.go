package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/pagination"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeBookLoader struct {
	books map[uuid.UUID]*models.Book
}

func (f *fakeBookLoader) GetBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	if book, ok := f.books[id]; ok {
		return book, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
}

type fakeCartStore struct {
	cart  *models.Cart
	items []models.CartProduct
}

func (f *fakeCartStore) WithTx(_ *gorm.DB) cartStore { return f }

func (f *fakeCartStore) FindActiveByUserForUpdate(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if f.cart == nil || !f.cart.IsActive || f.cart.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.cart
	return &copied, nil
}

func (f *fakeCartStore) ListItems(_ context.Context, cartID uuid.UUID) ([]models.CartProduct, error) {
	if f.cart == nil || f.cart.ID != cartID {
		return nil, nil
	}
	return f.items, nil
}

func (f *fakeCartStore) Deactivate(_ context.Context, cartID uuid.UUID) error {
	if f.cart != nil && f.cart.ID == cartID {
		f.cart.IsActive = false
	}
	return nil
}

type fakeOrdersRepo struct {
	orders   map[uuid.UUID]*models.Order
	invoices map[string]uuid.UUID
	payments []models.OrderPayment

	// seeded invoice ids force collisions without a matching order row
	seededInvoices map[string]struct{}

	// claimed invoice ids model a concurrent uncommitted checkout: invisible
	// to InvoiceExists, but the unique index rejects the write
	claimedInvoices map[string]struct{}
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{
		orders:          map[uuid.UUID]*models.Order{},
		invoices:        map[string]uuid.UUID{},
		seededInvoices:  map[string]struct{}{},
		claimedInvoices: map[string]struct{}{},
	}
}

func (f *fakeOrdersRepo) WithTx(_ *gorm.DB) OrdersRepository { return f }

func (f *fakeOrdersRepo) Create(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrdersRepo) Save(_ context.Context, order *models.Order) error {
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeOrdersRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[id]; ok && order.UserID == userID {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) InvoiceExists(_ context.Context, invoiceID string) (bool, error) {
	if _, ok := f.invoices[invoiceID]; ok {
		return true, nil
	}
	_, ok := f.seededInvoices[invoiceID]
	return ok, nil
}

func (f *fakeOrdersRepo) SetInvoiceID(_ context.Context, orderID uuid.UUID, invoiceID string) error {
	if _, ok := f.claimedInvoices[invoiceID]; ok {
		return fmt.Errorf(`duplicate key value violates unique constraint "idx_orders_invoice_id"`)
	}
	f.invoices[invoiceID] = orderID
	if order, ok := f.orders[orderID]; ok {
		value := invoiceID
		order.InvoiceID = &value
	}
	return nil
}

func (f *fakeOrdersRepo) CountForDay(_ context.Context, day time.Time) (int64, error) {
	var count int64
	for _, order := range f.orders {
		if order.CreatedAt.Year() == day.Year() && order.CreatedAt.YearDay() == day.YearDay() {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrdersRepo) CreatePayment(_ context.Context, payment *models.OrderPayment) error {
	payment.ID = uuid.New()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeOrdersRepo) ListByUser(_ context.Context, userID uuid.UUID, _ pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (f *fakeOrdersRepo) ListPendingFirst(_ context.Context, _ int) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range f.orders {
		rows = append(rows, *order)
	}
	return rows, nil
}

type fakeGateway struct {
	session *sslcommerz.Session
	err     error
	calls   int
}

func (f *fakeGateway) InitPayment(_ context.Context, _ sslcommerz.InitParams) (*sslcommerz.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func testOptions() Options {
	return Options{
		ShippingCharge: decimal.RequireFromString("50.00"),
		Currency:       "BDT",
		SuccessURL:     "https://example.test/pay/success",
		FailURL:        "https://example.test/pay/fail",
		CancelURL:      "https://example.test/pay/cancel",
	}
}

func seededCheckout(t *testing.T) (uuid.UUID, *fakeCartStore, *fakeBookLoader) {
	t.Helper()

	userID := uuid.New()
	book := &models.Book{
		ID:            uuid.New(),
		PurchasePrice: decimal.RequireFromString("60.00"),
	}
	cartID := uuid.New()
	carts := &fakeCartStore{
		cart: &models.Cart{
			ID:            cartID,
			UserID:        userID,
			IsActive:      true,
			TotalPrice:    decimal.RequireFromString("200.00"),
			TotalDiscount: decimal.RequireFromString("20.00"),
			NetAmount:     decimal.RequireFromString("180.00"),
		},
		items: []models.CartProduct{{
			ID:         uuid.New(),
			CartID:     cartID,
			BookID:     book.ID,
			Quantity:   2,
			Price:      decimal.RequireFromString("100.00"),
			Discount:   10,
			FinalPrice: decimal.RequireFromString("90.00"),
		}},
	}
	books := &fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}}
	return userID, carts, books
}

func validShipping() ShippingInput {
	return ShippingInput{
		Name:        "Rahim Uddin",
		Phone:       "01700000000",
		AddressLine: "House 7, Road 3",
		City:        "Dhaka",
	}
}

func TestPlaceOrderCODConfirmsPaymentImmediately(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	repo := newFakeOrdersRepo()
	gateway := &fakeGateway{}
	svc, err := NewService(repo, carts, books, fakeTxRunner{}, gateway, nil, testOptions())
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	order := result.Order
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, enums.PaymentStatusConfirmed, order.PaymentStatus)
	require.Equal(t, "230.00", order.NetAmount.StringFixed(2))
	require.Equal(t, "50.00", order.ShippingCharge.StringFixed(2))
	require.Empty(t, result.RedirectURL)
	require.Zero(t, gateway.calls)

	require.NotNil(t, order.InvoiceID)
	require.Equal(t, buildInvoiceID(order.CreatedAt, 1), *order.InvoiceID)

	require.False(t, carts.cart.IsActive)

	require.Len(t, order.Products, 1)
	require.Equal(t, "30.00", order.Products[0].ProfitAmount.StringFixed(2))
}

func TestPlaceOrderOnlineReturnsRedirect(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	repo := newFakeOrdersRepo()
	gateway := &fakeGateway{session: &sslcommerz.Session{GatewayPageURL: "https://gateway.test/pay"}}
	svc, err := NewService(repo, carts, books, fakeTxRunner{}, gateway, nil, testOptions())
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodOnline,
	})
	require.NoError(t, err)
	require.Equal(t, "https://gateway.test/pay", result.RedirectURL)
	require.Equal(t, enums.PaymentStatusPending, result.Order.PaymentStatus)
}

func TestPlaceOrderGatewayFailureLeavesOrderPending(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	repo := newFakeOrdersRepo()
	gateway := &fakeGateway{err: fmt.Errorf("connection timed out")}
	svc, err := NewService(repo, carts, books, fakeTxRunner{}, gateway, nil, testOptions())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodOnline,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())

	// The snapshot survived the failed initiation and stays retryable.
	require.Len(t, repo.orders, 1)
	for _, order := range repo.orders {
		require.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := newFakeOrdersRepo()
	svc, err := NewService(repo, &fakeCartStore{}, &fakeBookLoader{}, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPlaceOrderInvalidShipping(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	svc, err := NewService(newFakeOrdersRepo(), carts, books, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	shipping := validShipping()
	shipping.Phone = ""
	_, err = svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      shipping,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.NotNil(t, typed.Details())
}

func TestInvoiceCollisionRetriesWithSuffix(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	repo := newFakeOrdersRepo()
	// Force a collision on the base id the first order will derive.
	repo.seededInvoices[buildInvoiceID(time.Now(), 1)] = struct{}{}

	svc, err := NewService(repo, carts, books, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	invoice := *result.Order.InvoiceID
	base := buildInvoiceID(result.Order.CreatedAt, 1)
	require.NotEqual(t, base, invoice)
	require.Len(t, invoice, len(base)+3)
	require.Equal(t, base, invoice[:len(base)])
}

func TestInvoiceUniqueViolationRetriesWithSuffix(t *testing.T) {
	t.Parallel()

	userID, carts, books := seededCheckout(t)
	repo := newFakeOrdersRepo()
	// A concurrent checkout holds the base id uncommitted: the existence
	// check passes, the write hits the unique index.
	repo.claimedInvoices[buildInvoiceID(time.Now(), 1)] = struct{}{}

	svc, err := NewService(repo, carts, books, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	result, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Shipping:      validShipping(),
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	invoice := *result.Order.InvoiceID
	base := buildInvoiceID(result.Order.CreatedAt, 1)
	require.NotEqual(t, base, invoice)
	require.Len(t, invoice, len(base)+3)
	require.Equal(t, base, invoice[:len(base)])
}

func TestInvoiceIDsAreUniqueAcrossManyOrders(t *testing.T) {
	t.Parallel()

	repo := newFakeOrdersRepo()
	seen := map[string]struct{}{}
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		order := &models.Order{UserID: uuid.New()}
		require.NoError(t, repo.Create(ctx, order))
		invoice, err := assignInvoiceID(ctx, repo, order.ID, order.CreatedAt)
		require.NoError(t, err)

		_, dup := seen[invoice]
		require.False(t, dup, "duplicate invoice %s", invoice)
		seen[invoice] = struct{}{}
	}
}

func TestSetStatusDeliveredForcesPaymentConfirmed(t *testing.T) {
	t.Parallel()

	repo := newFakeOrdersRepo()
	order := &models.Order{
		UserID:        uuid.New(),
		Status:        enums.OrderStatusShipped,
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), order))

	svc, err := NewService(repo, &fakeCartStore{}, &fakeBookLoader{}, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), order.ID, "delivered")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.Equal(t, enums.PaymentStatusConfirmed, updated.PaymentStatus)
}

func TestSetStatusRejectsUnknownAndIllegalTransitions(t *testing.T) {
	t.Parallel()

	repo := newFakeOrdersRepo()
	order := &models.Order{
		UserID: uuid.New(),
		Status: enums.OrderStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), order))

	svc, err := NewService(repo, &fakeCartStore{}, &fakeBookLoader{}, fakeTxRunner{}, &fakeGateway{}, nil, testOptions())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), order.ID, "returned")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	_, err = svc.SetStatus(context.Background(), order.ID, "delivered")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// Terminal states stay terminal.
	_, err = svc.SetStatus(context.Background(), order.ID, "cancelled")
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, "confirmed")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestCanTransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusDelivered, false},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, true},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPending, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.allowed, canTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
