package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderProduct is a frozen copy of a cart line at checkout, plus the book's
// purchase cost basis and the resulting profit.
type OrderProduct struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	BookID        uuid.UUID       `gorm:"column:book_id;type:uuid;not null"`
	Book          *Book           `gorm:"foreignKey:BookID"`
	Quantity      int             `gorm:"column:quantity;not null;default:1"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Discount      int64           `gorm:"column:discount;not null;default:0"`
	FinalPrice    decimal.Decimal `gorm:"column:final_price;type:numeric(10,2);not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:numeric(10,2);not null;default:0"`
	ProfitAmount  decimal.Decimal `gorm:"column:profit_amount;type:numeric(10,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
