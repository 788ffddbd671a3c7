package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/types"
)

// UserSubscription ties a user to a plan. The validity window is stamped only
// when payment clears, so an unpaid row has nil start/end. Counters are
// monotonically increasing usage against the plan limits.
type UserSubscription struct {
	ID            uuid.UUID                       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID                       `gorm:"column:user_id;type:uuid;not null"`
	PlanID        uuid.UUID                       `gorm:"column:plan_id;type:uuid;not null"`
	Plan          *SubscriptionPlan               `gorm:"foreignKey:PlanID"`
	ActiveStatus  enums.ActiveStatus              `gorm:"column:active_status;type:active_status;not null;default:'inactive'"`
	PaymentStatus enums.SubscriptionPaymentStatus `gorm:"column:payment_status;type:subscription_payment_status;not null;default:'unpaid'"`
	StartAt       *time.Time                      `gorm:"column:start_at"`
	EndAt         *time.Time                      `gorm:"column:end_at"`
	ReadCount     int                             `gorm:"column:read_count;not null;default:0"`
	DownloadCount int                             `gorm:"column:download_count;not null;default:0"`
	TranID        *string                         `gorm:"column:tran_id"`
	CardType      *string                         `gorm:"column:card_type"`
	CardIssuer    *string                         `gorm:"column:card_issuer"`
	CardBrand     *string                         `gorm:"column:card_brand"`
	RawPayload    types.JSONMap                   `gorm:"column:raw_payload;type:jsonb"`
	Books         []UserSubscriptionBook          `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}
