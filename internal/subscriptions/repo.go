package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for subscription entitlements.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscriptions repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) SubscriptionsRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) activeScope(ctx context.Context, userID uuid.UUID, at time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("active_status = ?", enums.ActiveStatusActive).
		Where("payment_status = ?", enums.SubscriptionPaymentStatusPaid).
		Where("start_at <= ? AND end_at >= ?", at, at)
}

// FindActiveByUser returns the user's currently usable subscription with its plan.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.activeScope(ctx, userID, at).
		Preload("Plan").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindActiveByUserForUpdate locks the usable subscription row so counter
// updates cannot lose increments under concurrent requests.
func (r *Repository) FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID, at time.Time) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.activeScope(ctx, userID, at).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByID loads a subscription with its plan.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByIDForUpdate locks the bare subscription row.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
}

// Save persists the subscription's current field values.
func (r *Repository) Save(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sub).Error
}

// FindPlan loads a plan definition.
func (r *Repository) FindPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindBookPair returns the join row for a (subscription, book) pair.
func (r *Repository) FindBookPair(ctx context.Context, subscriptionID, bookID uuid.UUID) (*models.UserSubscriptionBook, error) {
	var pair models.UserSubscriptionBook
	err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND book_id = ?", subscriptionID, bookID).
		First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// FindBookPairByID loads a join row by primary key.
func (r *Repository) FindBookPairByID(ctx context.Context, id uuid.UUID) (*models.UserSubscriptionBook, error) {
	var pair models.UserSubscriptionBook
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// CreateBookPair inserts a join row.
func (r *Repository) CreateBookPair(ctx context.Context, pair *models.UserSubscriptionBook) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(pair).Error
}

// SaveBookPair persists the join row's current field values.
func (r *Repository) SaveBookPair(ctx context.Context, pair *models.UserSubscriptionBook) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(pair).Error
}

// CreateBookPayment appends a pay-per-unlock audit record.
func (r *Repository) CreateBookPayment(ctx context.Context, payment *models.BookPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
