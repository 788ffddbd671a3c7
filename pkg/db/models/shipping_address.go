package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is the delivery destination captured at checkout, one per order.
type ShippingAddress struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Phone       string    `gorm:"column:phone;not null"`
	Email       *string   `gorm:"column:email"`
	AddressLine string    `gorm:"column:address_line;not null"`
	City        string    `gorm:"column:city;not null"`
	PostalCode  *string   `gorm:"column:postal_code"`
	Country     string    `gorm:"column:country;not null;default:'Bangladesh'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
