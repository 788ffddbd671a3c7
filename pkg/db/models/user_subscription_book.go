package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSubscriptionBook records that a book was added to a subscription's
// library. At most one row per (subscription, book) pair.
type UserSubscriptionBook struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex:idx_subscription_books_pair"`
	BookID         uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_subscription_books_pair"`
	Book           *Book     `gorm:"foreignKey:BookID"`
	ReadCount      int       `gorm:"column:read_count;not null;default:0"`
	DownloadCount  int       `gorm:"column:download_count;not null;default:0"`
	IsPaid         bool      `gorm:"column:is_paid;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
