package orders

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
)

const (
	invoicePrefix      = "INV"
	invoiceMaxAttempts = 10
)

type invoiceStore interface {
	InvoiceExists(ctx context.Context, invoiceID string) (bool, error)
	SetInvoiceID(ctx context.Context, orderID uuid.UUID, invoiceID string) error
	CountForDay(ctx context.Context, day time.Time) (int64, error)
}

// buildInvoiceID derives the base invoice id from the order's creation date
// and its per-day sequence number.
func buildInvoiceID(at time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", invoicePrefix, at.Format("060102"), seq)
}

// randomInvoiceSuffix returns three random decimal digits.
func randomInvoiceSuffix() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("invoice suffix: %w", err)
	}
	return fmt.Sprintf("%03d", n.Int64()), nil
}

// assignInvoiceID stamps a unique invoice id onto a freshly inserted order.
// The base id is tried first; on collision a fresh 3-digit suffix is appended
// per attempt until the id is unique. Runs inside the checkout transaction and
// happens exactly once per order.
func assignInvoiceID(ctx context.Context, store invoiceStore, orderID uuid.UUID, createdAt time.Time) (string, error) {
	seq, err := store.CountForDay(ctx, createdAt)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders for day")
	}

	base := buildInvoiceID(createdAt, seq)
	candidate := base

	for attempt := 0; attempt < invoiceMaxAttempts; attempt++ {
		exists, err := store.InvoiceExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check invoice id")
		}
		if !exists {
			err := store.SetInvoiceID(ctx, orderID, candidate)
			if err == nil {
				return candidate, nil
			}
			// A concurrent checkout can claim the candidate between the
			// existence check and the write; its uncommitted row is invisible
			// here, so the unique index is the arbiter. Retry with a suffix.
			if !db.IsUniqueViolation(err, "") {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set invoice id")
			}
		}

		suffix, err := randomInvoiceSuffix()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invoice suffix")
		}
		candidate = base + suffix
	}

	return "", pkgerrors.New(pkgerrors.CodeInternal, "exhausted invoice id attempts")
}
