package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to the book catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
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

// FindByID loads a book with its category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListByCategory returns active books in a category.
func (r *Repository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Book, error) {
	var rows []models.Book
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
