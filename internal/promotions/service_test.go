package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRuleLister struct {
	rules []models.PromotionalDiscount
	err   error
}

func (s *stubRuleLister) ListActiveRules(_ context.Context, _ time.Time) ([]models.PromotionalDiscount, error) {
	return s.rules, s.err
}

type stubBookLoader struct {
	books map[uuid.UUID]*models.Book
}

func (s *stubBookLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Book, error) {
	if book, ok := s.books[id]; ok {
		return book, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func discountRule(priority int, amount string, books []models.Book, categories []models.Category) models.PromotionalDiscount {
	value := decimal.RequireFromString(amount)
	return models.PromotionalDiscount{
		ID:             uuid.New(),
		DiscountAmount: &value,
		Priority:       priority,
		Books:          books,
		Categories:     categories,
	}
}

func TestResolveDiscountPercentBookRuleBeatsCategoryRule(t *testing.T) {
	t.Parallel()

	category := models.Category{ID: uuid.New()}
	book := &models.Book{
		ID:            uuid.New(),
		CategoryID:    category.ID,
		PhysicalPrice: decimal.RequireFromString("200.00"),
	}

	// Category rule has the lower priority yet the book-specific rule must win.
	rules := &stubRuleLister{rules: []models.PromotionalDiscount{
		discountRule(0, "5.0000", nil, []models.Category{category}),
		discountRule(1, "10.0000", []models.Book{{ID: book.ID}}, nil),
	}}

	resolver, err := NewResolver(rules, &stubBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}})
	require.NoError(t, err)

	percent, err := resolver.ResolveDiscountPercent(context.Background(), book.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 10, percent)
}

func TestResolveDiscountPercentPriorityOrderWithinBookRules(t *testing.T) {
	t.Parallel()

	book := &models.Book{ID: uuid.New(), CategoryID: uuid.New()}
	target := []models.Book{{ID: book.ID}}

	rules := &stubRuleLister{rules: []models.PromotionalDiscount{
		discountRule(1, "15.0000", target, nil),
		discountRule(2, "30.0000", target, nil),
	}}

	resolver, err := NewResolver(rules, &stubBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}})
	require.NoError(t, err)

	percent, err := resolver.ResolveDiscountPercent(context.Background(), book.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 15, percent)
}

func TestResolveDiscountPercentRoundsHalfUp(t *testing.T) {
	t.Parallel()

	book := &models.Book{ID: uuid.New(), CategoryID: uuid.New()}

	rules := &stubRuleLister{rules: []models.PromotionalDiscount{
		discountRule(0, "12.5000", []models.Book{{ID: book.ID}}, nil),
	}}

	resolver, err := NewResolver(rules, &stubBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}})
	require.NoError(t, err)

	percent, err := resolver.ResolveDiscountPercent(context.Background(), book.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 13, percent)
}

func TestResolveDiscountPercentSkipsNilAmounts(t *testing.T) {
	t.Parallel()

	book := &models.Book{ID: uuid.New(), CategoryID: uuid.New()}

	nilRule := models.PromotionalDiscount{
		ID:       uuid.New(),
		Priority: 0,
		Books:    []models.Book{{ID: book.ID}},
	}
	rules := &stubRuleLister{rules: []models.PromotionalDiscount{
		nilRule,
		discountRule(1, "20.0000", []models.Book{{ID: book.ID}}, nil),
	}}

	resolver, err := NewResolver(rules, &stubBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}})
	require.NoError(t, err)

	percent, err := resolver.ResolveDiscountPercent(context.Background(), book.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 20, percent)
}

func TestResolveDiscountPercentUnknownBookReturnsZero(t *testing.T) {
	t.Parallel()

	resolver, err := NewResolver(&stubRuleLister{}, &stubBookLoader{books: map[uuid.UUID]*models.Book{}})
	require.NoError(t, err)

	percent, err := resolver.ResolveDiscountPercent(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Zero(t, percent)

	price, err := resolver.ResolveDiscountedPrice(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestResolveDiscountedPriceQuantizesAndFloors(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		ID:            uuid.New(),
		CategoryID:    uuid.New(),
		PhysicalPrice: decimal.RequireFromString("199.99"),
	}

	rules := &stubRuleLister{rules: []models.PromotionalDiscount{
		discountRule(0, "33.0000", []models.Book{{ID: book.ID}}, nil),
	}}

	resolver, err := NewResolver(rules, &stubBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}})
	require.NoError(t, err)

	price, err := resolver.ResolveDiscountedPrice(context.Background(), book.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, "133.99", price.StringFixed(2))
}
