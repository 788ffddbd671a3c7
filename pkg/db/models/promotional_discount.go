package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PromotionalDiscount is a staff-managed percentage rule targeting books
// directly or whole categories. Lower priority wins among overlapping rules.
type PromotionalDiscount struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	DiscountAmount *decimal.Decimal   `gorm:"column:discount_amount;type:numeric(19,4)"`
	ActiveStatus   enums.ActiveStatus `gorm:"column:active_status;type:active_status;not null;default:'inactive'"`
	Priority       int                `gorm:"column:priority;not null;default:0"`
	StartDate      time.Time          `gorm:"column:start_date;not null"`
	EndDate        *time.Time         `gorm:"column:end_date"`
	Books          []Book             `gorm:"many2many:promotional_discount_books"`
	Categories     []Category         `gorm:"many2many:promotional_discount_categories"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
