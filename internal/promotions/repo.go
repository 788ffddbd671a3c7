package promotions

import (
	"context"
	"time"

	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes read access to promotional discount rules.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a promotions repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListActiveRules returns rules in effect at the given instant, lowest
// priority first. Targets are preloaded so the resolver never round-trips.
func (r *Repository) ListActiveRules(ctx context.Context, at time.Time) ([]models.PromotionalDiscount, error) {
	var rules []models.PromotionalDiscount
	err := r.db.WithContext(ctx).
		Preload("Books").
		Preload("Categories").
		Where("active_status = ?", enums.ActiveStatusActive).
		Where("start_date <= ?", at).
		Where("end_date IS NULL OR end_date >= ?", at).
		Order("priority ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
