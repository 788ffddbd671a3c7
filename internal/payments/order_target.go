package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/internal/orders"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"gorm.io/gorm"
)

// OrderTarget settles online order payments. Each callback appends one
// order_payments row; the order's payment_status only ever moves forward.
type OrderTarget struct {
	repo orders.OrdersRepository
}

// NewOrderTarget builds the order settlement target.
func NewOrderTarget(repo orders.OrdersRepository) (*OrderTarget, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &OrderTarget{repo: repo}, nil
}

// Kind implements Target.
func (t *OrderTarget) Kind() enums.PaymentKind {
	return enums.PaymentKindOrder
}

// Settle implements Target.
func (t *OrderTarget) Settle(ctx context.Context, tx *gorm.DB, payload sslcommerz.CallbackPayload) error {
	orderID, err := uuid.Parse(payload.CorrelationID)
	if err != nil {
		return errUnknownTarget
	}

	repo := t.repo.WithTx(tx)
	order, err := repo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnknownTarget
		}
		return fmt.Errorf("load order: %w", err)
	}

	status := enums.PaymentStatusFailed
	if payload.Valid() {
		status = enums.PaymentStatusConfirmed
	}

	record := &models.OrderPayment{
		OrderID:           order.ID,
		Status:            status,
		Amount:            parseAmount(payload.Amount, order.NetAmount),
		TranID:            optional(payload.TranID),
		ValID:             optional(payload.ValID),
		CardType:          optional(payload.CardType),
		CardIssuer:        optional(payload.CardIssuer),
		CardBrand:         optional(payload.CardBrand),
		CardIssuerCountry: optional(payload.CardIssuerCountry),
		RawPayload:        payload.Raw,
	}
	if err := repo.CreatePayment(ctx, record); err != nil {
		return fmt.Errorf("create order payment: %w", err)
	}

	// A late failure callback never unwinds a confirmed order.
	switch {
	case status == enums.PaymentStatusConfirmed && order.PaymentStatus != enums.PaymentStatusConfirmed:
		order.PaymentStatus = enums.PaymentStatusConfirmed
	case status == enums.PaymentStatusFailed && order.PaymentStatus == enums.PaymentStatusPending:
		order.PaymentStatus = enums.PaymentStatusFailed
	default:
		return nil
	}
	if err := repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}
