package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartProduct is one book line inside a cart. Price and discount are
// snapshots taken at add time and re-resolved on quantity changes.
type CartProduct struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID     uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_products_cart_book"`
	BookID     uuid.UUID       `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_cart_products_cart_book"`
	Book       *Book           `gorm:"foreignKey:BookID"`
	Quantity   int             `gorm:"column:quantity;not null;default:1"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Discount   int64           `gorm:"column:discount;not null;default:0"`
	FinalPrice decimal.Decimal `gorm:"column:final_price;type:numeric(10,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
