package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// SubscriptionPlan is the admin-managed plan definition.
type SubscriptionPlan struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string          `gorm:"column:name;not null"`
	Price                decimal.Decimal `gorm:"column:price;type:numeric(19,4);not null;default:0"`
	DurationDays         int             `gorm:"column:duration_days;not null;default:30"`
	BookReadLimit        enums.LimitMode `gorm:"column:book_read_limit;type:limit_mode;not null;default:'limited'"`
	MaxBookReadLimit     int             `gorm:"column:max_book_read_limit;not null;default:0"`
	BookDownloadLimit    enums.LimitMode `gorm:"column:book_download_limit;type:limit_mode;not null;default:'limited'"`
	MaxBookDownloadLimit int             `gorm:"column:max_book_download_limit;not null;default:0"`
	IsActive             bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
