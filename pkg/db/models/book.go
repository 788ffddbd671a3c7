package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is the catalog listing; the pricing engine reads it, never writes it.
type Book struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string          `gorm:"column:title;not null"`
	CategoryID      uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category        *Category       `gorm:"foreignKey:CategoryID"`
	PhysicalPrice   decimal.Decimal `gorm:"column:physical_price;type:numeric(10,2);not null;default:0"`
	DigitalPrice    decimal.Decimal `gorm:"column:digital_price;type:numeric(10,2);not null;default:0"`
	PurchasePrice   decimal.Decimal `gorm:"column:purchase_price;type:numeric(10,2);not null;default:0"`
	HasPhysicalCopy bool            `gorm:"column:has_physical_copy;not null;default:false"`
	DigitalFile     *string         `gorm:"column:digital_file"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
