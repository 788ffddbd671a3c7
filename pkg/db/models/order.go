package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is the immutable checkout snapshot of a cart. Money fields are fixed
// at creation; only status, payment_status and invoice_id mutate afterwards.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	InvoiceID       *string             `gorm:"column:invoice_id;uniqueIndex"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	TotalDiscount   decimal.Decimal     `gorm:"column:total_discount;type:numeric(10,2);not null;default:0"`
	ShippingCharge  decimal.Decimal     `gorm:"column:shipping_charge;type:numeric(10,2);not null;default:0"`
	NetAmount       decimal.Decimal     `gorm:"column:net_amount;type:numeric(10,2);not null;default:0"`
	Products        []OrderProduct      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress *ShippingAddress    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []OrderPayment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
