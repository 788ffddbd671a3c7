package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/internal/cart"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"gorm.io/gorm"
)

// CartAccessor adapts the cart repository to checkout's transactional view.
type CartAccessor struct {
	repo cart.CartRepository
}

// NewCartAccessor wraps the cart repository for use during checkout.
func NewCartAccessor(repo cart.CartRepository) *CartAccessor {
	return &CartAccessor{repo: repo}
}

func (a *CartAccessor) WithTx(tx *gorm.DB) cartStore {
	return &CartAccessor{repo: a.repo.WithTx(tx)}
}

func (a *CartAccessor) FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return a.repo.FindActiveByUserForUpdate(ctx, userID)
}

func (a *CartAccessor) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartProduct, error) {
	return a.repo.ListItems(ctx, cartID)
}

func (a *CartAccessor) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	return a.repo.Deactivate(ctx, cartID)
}
