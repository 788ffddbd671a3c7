package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// BookPayment is the append-only audit record for pay-per-unlock digital books.
type BookPayment struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	BookID             uuid.UUID           `gorm:"column:book_id;type:uuid;not null"`
	SubscriptionBookID *uuid.UUID          `gorm:"column:subscription_book_id;type:uuid"`
	Status             enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	Amount             decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null;default:0"`
	TranID             *string             `gorm:"column:tran_id"`
	ValID              *string             `gorm:"column:val_id"`
	CardType           *string             `gorm:"column:card_type"`
	CardIssuer         *string             `gorm:"column:card_issuer"`
	CardBrand          *string             `gorm:"column:card_brand"`
	RawPayload         types.JSONMap       `gorm:"column:raw_payload;type:jsonb"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
