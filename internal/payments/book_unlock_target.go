package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/internal/subscriptions"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookUnlockTarget settles pay-per-unlock book payments. The correlation id is
// the subscription book join row; a confirmed callback flips its is_paid flag.
type BookUnlockTarget struct {
	repo subscriptions.SubscriptionsRepository
}

// NewBookUnlockTarget builds the book unlock settlement target.
func NewBookUnlockTarget(repo subscriptions.SubscriptionsRepository) (*BookUnlockTarget, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	return &BookUnlockTarget{repo: repo}, nil
}

// Kind implements Target.
func (t *BookUnlockTarget) Kind() enums.PaymentKind {
	return enums.PaymentKindBookUnlock
}

// Settle implements Target.
func (t *BookUnlockTarget) Settle(ctx context.Context, tx *gorm.DB, payload sslcommerz.CallbackPayload) error {
	pairID, err := uuid.Parse(payload.CorrelationID)
	if err != nil {
		return errUnknownTarget
	}

	repo := t.repo.WithTx(tx)
	pair, err := repo.FindBookPairByID(ctx, pairID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnknownTarget
		}
		return fmt.Errorf("load subscription book: %w", err)
	}

	sub, err := repo.FindByID(ctx, pair.SubscriptionID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}

	status := enums.PaymentStatusFailed
	if payload.Valid() {
		status = enums.PaymentStatusConfirmed
	}

	record := &models.BookPayment{
		UserID:             sub.UserID,
		BookID:             pair.BookID,
		SubscriptionBookID: &pair.ID,
		Status:             status,
		Amount:             parseAmount(payload.Amount, decimal.Zero),
		TranID:             optional(payload.TranID),
		ValID:              optional(payload.ValID),
		CardType:           optional(payload.CardType),
		CardIssuer:         optional(payload.CardIssuer),
		CardBrand:          optional(payload.CardBrand),
		RawPayload:         payload.Raw,
	}
	if err := repo.CreateBookPayment(ctx, record); err != nil {
		return fmt.Errorf("create book payment: %w", err)
	}

	if status == enums.PaymentStatusConfirmed && !pair.IsPaid {
		pair.IsPaid = true
		if err := repo.SaveBookPair(ctx, pair); err != nil {
			return fmt.Errorf("save subscription book: %w", err)
		}
	}
	return nil
}
