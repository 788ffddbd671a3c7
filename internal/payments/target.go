package payments

import (
	"context"
	"errors"

	"github.com/saifulmridha/boighor-backend/pkg/enums"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// errUnknownTarget marks a callback whose correlation id matches no row. The
// service acknowledges these without failing so the gateway stops retrying.
var errUnknownTarget = errors.New("callback target not found")

// Target settles a gateway callback against one aggregate kind. Settle runs
// inside the reconciliation transaction and must write exactly one audit
// record regardless of the payment outcome.
type Target interface {
	Kind() enums.PaymentKind
	Settle(ctx context.Context, tx *gorm.DB, payload sslcommerz.CallbackPayload) error
}

func parseAmount(raw string, fallback decimal.Decimal) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback
	}
	return amount
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
