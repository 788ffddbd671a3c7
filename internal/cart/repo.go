package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for cart aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new cart row.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// Save persists the cart's current field values.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Save(cart).Error
}

// FindActiveByUser loads the user's active cart with its line items.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Book").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUserForUpdate loads the active cart under a row lock so total
// recomputation cannot race a concurrent mutation.
func (r *Repository) FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Deactivate retires the cart once its order is placed. Rows are never deleted.
func (r *Repository) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_active", false).Error
}

// FindItemByBook returns the line item for a book inside a cart.
func (r *Repository) FindItemByBook(ctx context.Context, cartID, bookID uuid.UUID) (*models.CartProduct, error) {
	var item models.CartProduct
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByID returns a line item restricted to the provided cart.
func (r *Repository) FindItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartProduct, error) {
	var item models.CartProduct
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new line item.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartProduct) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveItem persists the line item's current field values.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartProduct) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes the line item.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartProduct{}).Error
}

// ListItems returns the line items belonging to a cart.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartProduct, error) {
	var rows []models.CartProduct
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
