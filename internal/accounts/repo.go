package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for user accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads a user by its unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts the user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateLastLogin stamps the login time without touching other fields.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
