package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/saifulmridha/boighor-backend/pkg/metrics"
	"github.com/saifulmridha/boighor-backend/pkg/redis"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
	"gorm.io/gorm"
)

const (
	idempotencyScope = "payment-callback"
	idempotencyTTL   = 24 * time.Hour
)

const (
	outcomeConfirmed = "confirmed"
	outcomeFailed    = "failed"
	outcomeDuplicate = "duplicate"
	outcomeUnknown   = "unknown"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service reconciles gateway callbacks against their aggregates.
type Service interface {
	HandleCallback(ctx context.Context, kind enums.PaymentKind, payload sslcommerz.CallbackPayload) error
}

type service struct {
	targets map[enums.PaymentKind]Target
	tx      txRunner
	idem    redis.IdempotencyStore
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewService wires the settlement targets behind one callback entrypoint.
func NewService(tx txRunner, idem redis.IdempotencyStore, m *metrics.CheckoutMetrics, logg *logger.Logger, targets ...Target) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if idem == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one settlement target required")
	}
	byKind := make(map[enums.PaymentKind]Target, len(targets))
	for _, target := range targets {
		if target == nil {
			return nil, fmt.Errorf("nil settlement target")
		}
		if _, dup := byKind[target.Kind()]; dup {
			return nil, fmt.Errorf("duplicate settlement target for kind %q", target.Kind())
		}
		byKind[target.Kind()] = target
	}
	return &service{
		targets: byKind,
		tx:      tx,
		idem:    idem,
		metrics: m,
		logg:    logg,
	}, nil
}

// HandleCallback settles one gateway callback. Replays of an already-seen
// tran_id and callbacks with unknown correlation ids are acknowledged without
// touching any aggregate, so the gateway's retries stay harmless.
func (s *service) HandleCallback(ctx context.Context, kind enums.PaymentKind, payload sslcommerz.CallbackPayload) error {
	target, ok := s.targets[kind]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment kind")
	}
	if payload.TranID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "callback missing tran_id")
	}

	if s.logg != nil {
		ctx = s.logg.WithTranID(ctx, payload.TranID)
	}

	key := s.idem.IdempotencyKey(idempotencyScope, payload.TranID)
	fresh, err := s.idem.SetNX(ctx, key, payload.Status, idempotencyTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve callback idempotency key")
	}
	if !fresh {
		s.info(ctx, "duplicate payment callback ignored")
		s.metrics.IncPaymentCallback(kind.String(), outcomeDuplicate)
		return nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return target.Settle(ctx, tx, payload)
	})
	if err != nil {
		if errors.Is(err, errUnknownTarget) {
			s.warn(ctx, fmt.Sprintf("payment callback for unknown %s correlation id", kind))
			s.metrics.IncPaymentCallback(kind.String(), outcomeUnknown)
			return nil
		}
		// Release the key so the gateway's retry gets another attempt.
		if delErr := s.idem.Del(ctx, key); delErr != nil {
			s.warn(ctx, "failed to release callback idempotency key")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment callback")
	}

	outcome := outcomeFailed
	if payload.Valid() {
		outcome = outcomeConfirmed
	}
	s.metrics.IncPaymentCallback(kind.String(), outcome)
	s.info(ctx, fmt.Sprintf("payment callback settled (%s/%s)", kind, outcome))
	return nil
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
