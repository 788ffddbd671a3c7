package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/metrics"
	"github.com/saifulmridha/boighor-backend/pkg/money"
	"github.com/saifulmridha/boighor-backend/pkg/pagination"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookLoader interface {
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type cartStore interface {
	WithTx(tx *gorm.DB) cartStore
	FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartProduct, error)
	Deactivate(ctx context.Context, cartID uuid.UUID) error
}

type paymentInitiator interface {
	InitPayment(ctx context.Context, params sslcommerz.InitParams) (*sslcommerz.Session, error)
}

// OrdersRepository is the persistence surface the service depends on.
type OrdersRepository interface {
	WithTx(tx *gorm.DB) OrdersRepository
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	InvoiceExists(ctx context.Context, invoiceID string) (bool, error)
	SetInvoiceID(ctx context.Context, orderID uuid.UUID, invoiceID string) error
	CountForDay(ctx context.Context, day time.Time) (int64, error)
	CreatePayment(ctx context.Context, payment *models.OrderPayment) error
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListPendingFirst(ctx context.Context, limit int) ([]models.Order, error)
}

// Options carries checkout configuration resolved at wiring time.
type Options struct {
	ShippingCharge decimal.Decimal
	Currency       string
	SuccessURL     string
	FailURL        string
	CancelURL      string
}

// ShippingInput is the delivery destination posted at checkout.
type ShippingInput struct {
	Name        string `validate:"required"`
	Phone       string `validate:"required"`
	Email       string `validate:"omitempty,email"`
	AddressLine string `validate:"required"`
	City        string `validate:"required"`
	PostalCode  string
	Country     string
}

// PlaceOrderInput captures everything checkout needs.
type PlaceOrderInput struct {
	Shipping      ShippingInput
	PaymentMethod enums.PaymentMethod
}

// PlaceOrderResult is the checkout outcome. RedirectURL is set only for
// online payments.
type PlaceOrderResult struct {
	Order       *models.Order
	RedirectURL string
}

// Service drives checkout and the order status machine.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListOrderQueue(ctx context.Context, limit int) ([]models.Order, error)
}

type service struct {
	repo     OrdersRepository
	carts    cartStore
	books    bookLoader
	tx       txRunner
	gateway  paymentInitiator
	validate *validator.Validate
	metrics  *metrics.CheckoutMetrics
	opts     Options
	now      func() time.Time
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo OrdersRepository, carts cartStore, books bookLoader, tx txRunner, gateway paymentInitiator, checkoutMetrics *metrics.CheckoutMetrics, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:     repo,
		carts:    carts,
		books:    books,
		tx:       tx,
		gateway:  gateway,
		validate: validator.New(),
		metrics:  checkoutMetrics,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// PlaceOrder converts the user's active cart into an immutable order snapshot.
// The cart is deactivated, never deleted. COD orders confirm payment at once;
// online orders hand off to the gateway after the snapshot commits.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error) {
	started := s.now()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if err := s.validate.Struct(input.Shipping); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping address").WithDetails(err.Error())
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		repo := s.repo.WithTx(tx)

		cart, err := carts.FindActiveByUserForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
		}

		items, err := carts.ListItems(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		products := make([]models.OrderProduct, 0, len(items))
		for _, item := range items {
			book, err := s.books.GetBook(ctx, item.BookID)
			if err != nil {
				return err
			}
			products = append(products, models.OrderProduct{
				BookID:        item.BookID,
				Quantity:      item.Quantity,
				Price:         item.Price,
				Discount:      item.Discount,
				FinalPrice:    item.FinalPrice,
				PurchasePrice: book.PurchasePrice,
				ProfitAmount:  money.Quantize(item.FinalPrice.Sub(book.PurchasePrice)),
			})
		}

		netAmount := money.Quantize(cart.NetAmount.Add(s.opts.ShippingCharge))
		paymentStatus := enums.PaymentStatusPending
		if input.PaymentMethod == enums.PaymentMethodCOD {
			paymentStatus = enums.PaymentStatusConfirmed
		}

		email := input.Shipping.Email
		country := input.Shipping.Country
		if country == "" {
			country = "Bangladesh"
		}

		order = &models.Order{
			UserID:         userID,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  paymentStatus,
			PaymentMethod:  input.PaymentMethod,
			TotalPrice:     cart.TotalPrice,
			TotalDiscount:  cart.TotalDiscount,
			ShippingCharge: s.opts.ShippingCharge,
			NetAmount:      netAmount,
			Products:       products,
			ShippingAddress: &models.ShippingAddress{
				Name:        input.Shipping.Name,
				Phone:       input.Shipping.Phone,
				Email:       optional(email),
				AddressLine: input.Shipping.AddressLine,
				City:        input.Shipping.City,
				PostalCode:  optional(input.Shipping.PostalCode),
				Country:     country,
			},
			Payments: []models.OrderPayment{{
				Status: paymentStatus,
				Amount: netAmount,
			}},
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		invoiceID, err := assignInvoiceID(ctx, repo, order.ID, order.CreatedAt)
		if err != nil {
			return err
		}
		order.InvoiceID = &invoiceID

		if err := carts.Deactivate(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &PlaceOrderResult{Order: order}

	if input.PaymentMethod == enums.PaymentMethodOnline {
		session, err := s.gateway.InitPayment(ctx, sslcommerz.InitParams{
			Amount:          order.NetAmount,
			Currency:        s.opts.Currency,
			TranID:          uuid.NewString(),
			CorrelationID:   order.ID.String(),
			CustomerName:    input.Shipping.Name,
			CustomerEmail:   input.Shipping.Email,
			CustomerPhone:   input.Shipping.Phone,
			SuccessURL:      s.opts.SuccessURL,
			FailURL:         s.opts.FailURL,
			CancelURL:       s.opts.CancelURL,
			ProductName:     "book order",
			ProductCategory: "books",
		})
		if err != nil {
			// The order stays pending; the user can retry payment.
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initiation failed")
		}
		result.RedirectURL = session.GatewayPageURL
	}

	s.metrics.IncOrderPlaced(input.PaymentMethod.String())
	s.metrics.ObserveCheckoutDuration(s.now().Sub(started))
	return result, nil
}

// SetStatus applies a staff transition on the fulfillment axis. Reaching
// delivered force-confirms the payment axis.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error) {
	status, err := enums.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unknown order status")
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !canTransition(order.Status, status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, status))
		}

		order.Status = status
		if status == enums.OrderStatusDelivered {
			order.PaymentStatus = enums.PaymentStatusConfirmed
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetOrder loads one of the user's orders with all sub-records.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListMyOrders returns the user's order history newest first.
func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// ListOrderQueue returns the staff review queue, pending orders first.
func (s *service) ListOrderQueue(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := s.repo.ListPendingFirst(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order queue")
	}
	return rows, nil
}

// canTransition encodes the forward-moving status machine. Any non-terminal
// state may cancel.
func canTransition(from, to enums.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCancelled {
		return true
	}
	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusConfirmed
	case enums.OrderStatusConfirmed:
		return to == enums.OrderStatusShipped
	case enums.OrderStatusShipped:
		return to == enums.OrderStatusDelivered
	default:
		return false
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
