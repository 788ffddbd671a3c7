package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ruleLister interface {
	ListActiveRules(ctx context.Context, at time.Time) ([]models.PromotionalDiscount, error)
}

type bookLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Resolver computes the effective promotional discount for a book.
type Resolver interface {
	ResolveDiscountPercent(ctx context.Context, bookID uuid.UUID, at time.Time) (int64, error)
	ResolveDiscountedPrice(ctx context.Context, bookID uuid.UUID, at time.Time) (decimal.Decimal, error)
}

type resolver struct {
	rules ruleLister
	books bookLoader
}

// NewResolver builds a discount resolver backed by the provided loaders.
func NewResolver(rules ruleLister, books bookLoader) (Resolver, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule lister required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	return &resolver{rules: rules, books: books}, nil
}

// ResolveDiscountPercent returns the whole-number percent for the book at the
// given instant. Book-specific rules always beat category rules; within each
// group the lowest priority wins. Unknown books resolve to 0.
func (r *resolver) ResolveDiscountPercent(ctx context.Context, bookID uuid.UUID, at time.Time) (int64, error) {
	book, err := r.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	rules, err := r.rules.ListActiveRules(ctx, at)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount rules")
	}

	for _, rule := range rules {
		if rule.DiscountAmount == nil {
			continue
		}
		if ruleTargetsBook(rule, book.ID) {
			return money.RoundPercent(*rule.DiscountAmount), nil
		}
	}

	for _, rule := range rules {
		if rule.DiscountAmount == nil {
			continue
		}
		if ruleTargetsCategory(rule, book.CategoryID) {
			return money.RoundPercent(*rule.DiscountAmount), nil
		}
	}

	return 0, nil
}

// ResolveDiscountedPrice applies the resolved percent to the book's physical
// price, floored at zero and quantized to 2 places.
func (r *resolver) ResolveDiscountedPrice(ctx context.Context, bookID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	book, err := r.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	percent, err := r.ResolveDiscountPercent(ctx, bookID, at)
	if err != nil {
		return decimal.Zero, err
	}

	return money.ApplyDiscount(book.PhysicalPrice, percent), nil
}

func ruleTargetsBook(rule models.PromotionalDiscount, bookID uuid.UUID) bool {
	for _, candidate := range rule.Books {
		if candidate.ID == bookID {
			return true
		}
	}
	return false
}

func ruleTargetsCategory(rule models.PromotionalDiscount, categoryID uuid.UUID) bool {
	for _, candidate := range rule.Categories {
		if candidate.ID == categoryID {
			return true
		}
	}
	return false
}
