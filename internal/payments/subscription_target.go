package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/internal/subscriptions"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"gorm.io/gorm"
)

// SubscriptionTarget settles subscription purchases. The validity window is
// stamped here, at confirmation time, so the paid duration starts when the
// money arrives rather than when the checkout began.
type SubscriptionTarget struct {
	repo subscriptions.SubscriptionsRepository
	now  func() time.Time
}

// NewSubscriptionTarget builds the subscription settlement target.
func NewSubscriptionTarget(repo subscriptions.SubscriptionsRepository) (*SubscriptionTarget, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	return &SubscriptionTarget{repo: repo, now: time.Now}, nil
}

// Kind implements Target.
func (t *SubscriptionTarget) Kind() enums.PaymentKind {
	return enums.PaymentKindSubscription
}

// Settle implements Target.
func (t *SubscriptionTarget) Settle(ctx context.Context, tx *gorm.DB, payload sslcommerz.CallbackPayload) error {
	subID, err := uuid.Parse(payload.CorrelationID)
	if err != nil {
		return errUnknownTarget
	}

	repo := t.repo.WithTx(tx)
	sub, err := repo.FindByIDForUpdate(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnknownTarget
		}
		return fmt.Errorf("load subscription: %w", err)
	}

	sub.TranID = optional(payload.TranID)
	sub.CardType = optional(payload.CardType)
	sub.CardIssuer = optional(payload.CardIssuer)
	sub.CardBrand = optional(payload.CardBrand)
	sub.RawPayload = payload.Raw

	if payload.Valid() && sub.PaymentStatus != enums.SubscriptionPaymentStatusPaid {
		plan, err := repo.FindPlan(ctx, sub.PlanID)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		start := t.now()
		end := start.AddDate(0, 0, plan.DurationDays)
		sub.PaymentStatus = enums.SubscriptionPaymentStatusPaid
		sub.ActiveStatus = enums.ActiveStatusActive
		sub.StartAt = &start
		sub.EndAt = &end
	}

	if err := repo.Save(ctx, sub); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
