package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a user's single active basket. Totals are derived from products on
// every mutation; deactivated, never deleted, when an order is placed.
type Cart struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	TotalDiscount decimal.Decimal `gorm:"column:total_discount;type:numeric(10,2);not null;default:0"`
	NetAmount     decimal.Decimal `gorm:"column:net_amount;type:numeric(10,2);not null;default:0"`
	Products      []CartProduct   `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
