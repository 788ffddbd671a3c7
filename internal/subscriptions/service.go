package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/money"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookLoader interface {
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type paymentInitiator interface {
	InitPayment(ctx context.Context, params sslcommerz.InitParams) (*sslcommerz.Session, error)
}

// SubscriptionsRepository is the persistence surface the service depends on.
type SubscriptionsRepository interface {
	WithTx(tx *gorm.DB) SubscriptionsRepository
	FindActiveByUser(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error)
	FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error)
	Create(ctx context.Context, sub *models.UserSubscription) error
	Save(ctx context.Context, sub *models.UserSubscription) error
	FindPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	FindBookPair(ctx context.Context, subscriptionID, bookID uuid.UUID) (*models.UserSubscriptionBook, error)
	FindBookPairByID(ctx context.Context, id uuid.UUID) (*models.UserSubscriptionBook, error)
	CreateBookPair(ctx context.Context, pair *models.UserSubscriptionBook) error
	SaveBookPair(ctx context.Context, pair *models.UserSubscriptionBook) error
	CreateBookPayment(ctx context.Context, payment *models.BookPayment) error
}

// Options carries gateway configuration resolved at wiring time.
type Options struct {
	Currency   string
	SuccessURL string
	FailURL    string
	CancelURL  string
}

// BuySubscriptionResult is the purchase outcome. RedirectURL is set only when
// the plan requires payment.
type BuySubscriptionResult struct {
	Subscription *models.UserSubscription
	RedirectURL  string
}

// UnlockBookResult carries the gateway redirect for a pay-per-unlock book.
type UnlockBookResult struct {
	Payment     *models.BookPayment
	RedirectURL string
}

// Service tracks per-user subscription entitlements.
type Service interface {
	BuySubscription(ctx context.Context, userID, planID uuid.UUID) (*BuySubscriptionResult, error)
	GetActiveSubscription(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error)
	AddBook(ctx context.Context, userID, bookID uuid.UUID) (*models.UserSubscriptionBook, error)
	CanRead(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	Download(ctx context.Context, userID, bookID uuid.UUID) (string, error)
	UnlockBook(ctx context.Context, userID, bookID uuid.UUID) (*UnlockBookResult, error)
}

type service struct {
	repo    SubscriptionsRepository
	tx      txRunner
	books   bookLoader
	gateway paymentInitiator
	opts    Options
	now     func() time.Time
}

// NewService builds a subscriptions service backed by the provided stack.
func NewService(repo SubscriptionsRepository, tx txRunner, books bookLoader, gateway paymentInitiator, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		books:   books,
		gateway: gateway,
		opts:    opts,
		now:     time.Now,
	}, nil
}

// BuySubscription creates a subscription row for the plan. Free plans activate
// immediately with a stamped window; paid plans stay unpaid and inactive until
// the gateway confirms, which is when the window gets stamped.
func (s *service) BuySubscription(ctx context.Context, userID, planID uuid.UUID) (*BuySubscriptionResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}

	now := s.now()
	var sub *models.UserSubscription
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindActiveByUserForUpdate(ctx, userID, now)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active subscription")
		}
		if existing != nil {
			existingPlan, err := repo.FindPlan(ctx, existing.PlanID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing plan")
			}
			if existingPlan.Price.IsPositive() {
				return pkgerrors.New(pkgerrors.CodeConflict, "subscription already active")
			}
		}

		sub = &models.UserSubscription{
			UserID:        userID,
			PlanID:        plan.ID,
			ActiveStatus:  enums.ActiveStatusInactive,
			PaymentStatus: enums.SubscriptionPaymentStatusUnpaid,
		}
		if plan.Price.IsZero() {
			start := now
			end := now.AddDate(0, 0, plan.DurationDays)
			sub.ActiveStatus = enums.ActiveStatusActive
			sub.PaymentStatus = enums.SubscriptionPaymentStatusPaid
			sub.StartAt = &start
			sub.EndAt = &end
		}
		if err := repo.Create(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub.Plan = plan
	result := &BuySubscriptionResult{Subscription: sub}

	if plan.Price.IsPositive() {
		session, err := s.gateway.InitPayment(ctx, sslcommerz.InitParams{
			Amount:          money.Quantize(plan.Price),
			Currency:        s.opts.Currency,
			TranID:          uuid.NewString(),
			CorrelationID:   sub.ID.String(),
			SuccessURL:      s.opts.SuccessURL,
			FailURL:         s.opts.FailURL,
			CancelURL:       s.opts.CancelURL,
			ProductName:     plan.Name,
			ProductCategory: "subscription",
		})
		if err != nil {
			// The unpaid row stays retryable.
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initiation failed")
		}
		result.RedirectURL = session.GatewayPageURL
	}
	return result, nil
}

// GetActiveSubscription returns the currently usable subscription or nil when
// the user holds no entitlement.
func (s *service) GetActiveSubscription(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error) {
	sub, err := s.repo.FindActiveByUser(ctx, userID, at)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active subscription")
	}
	return sub, nil
}

// AddBook puts a digital book into the subscription's library, counting it
// against the plan's read limit. Join row creation and the counter increment
// commit together or not at all.
func (s *service) AddBook(ctx context.Context, userID, bookID uuid.UUID) (*models.UserSubscriptionBook, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.DigitalFile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book has no digital file")
	}

	var pair *models.UserSubscriptionBook
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sub, err := repo.FindActiveByUserForUpdate(ctx, userID, s.now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active subscription")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active subscription")
		}

		plan, err := repo.FindPlan(ctx, sub.PlanID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}

		if _, err := repo.FindBookPair(ctx, sub.ID, bookID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "book already added to subscription")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription book")
		}

		if plan.BookReadLimit == enums.LimitModeLimited && sub.ReadCount >= plan.MaxBookReadLimit {
			return pkgerrors.New(pkgerrors.CodeLimitExceeded, "read limit exceeded")
		}

		pair = &models.UserSubscriptionBook{
			SubscriptionID: sub.ID,
			BookID:         bookID,
		}
		if err := repo.CreateBookPair(ctx, pair); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription book")
		}

		sub.ReadCount++
		if err := repo.Save(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// CanRead reports whether the user may open the book right now.
func (s *service) CanRead(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	sub, err := s.GetActiveSubscription(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}

	if _, err := s.repo.FindBookPair(ctx, sub.ID, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription book")
	}

	plan := sub.Plan
	if plan == nil {
		loaded, err := s.repo.FindPlan(ctx, sub.PlanID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}
		plan = loaded
	}
	if plan.BookReadLimit == enums.LimitModeLimited && sub.ReadCount > plan.MaxBookReadLimit {
		return false, nil
	}
	return true, nil
}

// Download returns the digital file reference. The first download of a pair
// increments both counters exactly once; repeats are free.
func (s *service) Download(ctx context.Context, userID, bookID uuid.UUID) (string, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}
	if book.DigitalFile == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "book has no digital file")
	}
	file := *book.DigitalFile

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sub, err := repo.FindActiveByUserForUpdate(ctx, userID, s.now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active subscription")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active subscription")
		}

		pair, err := repo.FindBookPair(ctx, sub.ID, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not in subscription")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription book")
		}

		// Re-downloads never recount.
		if pair.DownloadCount > 0 {
			return nil
		}

		plan, err := repo.FindPlan(ctx, sub.PlanID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}
		if plan.BookDownloadLimit == enums.LimitModeLimited && sub.DownloadCount >= plan.MaxBookDownloadLimit {
			return pkgerrors.New(pkgerrors.CodeLimitExceeded, "download limit exceeded")
		}

		pair.DownloadCount++
		if err := repo.SaveBookPair(ctx, pair); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription book")
		}
		sub.DownloadCount++
		if err := repo.Save(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return file, nil
}

// UnlockBook starts a gateway payment for a pay-per-unlock digital book. The
// join row's id travels as the correlation id; is_paid flips on the callback.
func (s *service) UnlockBook(ctx context.Context, userID, bookID uuid.UUID) (*UnlockBookResult, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.DigitalFile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book has no digital file")
	}
	if !book.DigitalPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book does not require unlocking")
	}

	sub, err := s.GetActiveSubscription(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active subscription")
	}

	pair, err := s.repo.FindBookPair(ctx, sub.ID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not in subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription book")
	}
	if pair.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "book already unlocked")
	}

	payment := &models.BookPayment{
		UserID:             userID,
		BookID:             bookID,
		SubscriptionBookID: &pair.ID,
		Status:             enums.PaymentStatusPending,
		Amount:             money.Quantize(book.DigitalPrice),
	}
	if err := s.repo.CreateBookPayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book payment")
	}

	session, err := s.gateway.InitPayment(ctx, sslcommerz.InitParams{
		Amount:          payment.Amount,
		Currency:        s.opts.Currency,
		TranID:          uuid.NewString(),
		CorrelationID:   pair.ID.String(),
		SuccessURL:      s.opts.SuccessURL,
		FailURL:         s.opts.FailURL,
		CancelURL:       s.opts.CancelURL,
		ProductName:     book.Title,
		ProductCategory: "book_unlock",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment initiation failed")
	}

	return &UnlockBookResult{Payment: payment, RedirectURL: session.GatewayPageURL}, nil
}
