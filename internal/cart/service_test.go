package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeBookLoader struct {
	books map[uuid.UUID]*models.Book
}

func (f *fakeBookLoader) GetBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	if book, ok := f.books[id]; ok {
		return book, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
}

type fakeResolver struct {
	percents map[uuid.UUID]int64
}

func (f *fakeResolver) ResolveDiscountPercent(_ context.Context, bookID uuid.UUID, _ time.Time) (int64, error) {
	return f.percents[bookID], nil
}

type fakeRepo struct {
	carts map[uuid.UUID]*models.Cart
	items map[uuid.UUID]*models.CartProduct
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		carts: map[uuid.UUID]*models.Cart{},
		items: map[uuid.UUID]*models.CartProduct{},
	}
}

func (f *fakeRepo) WithTx(_ *gorm.DB) CartRepository { return f }

func (f *fakeRepo) Create(_ context.Context, cart *models.Cart) error {
	cart.ID = uuid.New()
	copied := *cart
	f.carts[cart.ID] = &copied
	return nil
}

func (f *fakeRepo) Save(_ context.Context, cart *models.Cart) error {
	copied := *cart
	f.carts[cart.ID] = &copied
	return nil
}

func (f *fakeRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return f.FindActiveByUserForUpdate(ctx, userID)
}

func (f *fakeRepo) FindActiveByUserForUpdate(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	for _, cart := range f.carts {
		if cart.UserID == userID && cart.IsActive {
			copied := *cart
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Deactivate(_ context.Context, cartID uuid.UUID) error {
	if cart, ok := f.carts[cartID]; ok {
		cart.IsActive = false
	}
	return nil
}

func (f *fakeRepo) FindItemByBook(_ context.Context, cartID, bookID uuid.UUID) (*models.CartProduct, error) {
	for _, item := range f.items {
		if item.CartID == cartID && item.BookID == bookID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindItemByID(_ context.Context, cartID, itemID uuid.UUID) (*models.CartProduct, error) {
	if item, ok := f.items[itemID]; ok && item.CartID == cartID {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateItem(_ context.Context, item *models.CartProduct) error {
	item.ID = uuid.New()
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeRepo) SaveItem(_ context.Context, item *models.CartProduct) error {
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepo) ListItems(_ context.Context, cartID uuid.UUID) ([]models.CartProduct, error) {
	var rows []models.CartProduct
	for _, item := range f.items {
		if item.CartID == cartID {
			rows = append(rows, *item)
		}
	}
	return rows, nil
}

func newTestService(t *testing.T, repo *fakeRepo, books *fakeBookLoader, discounts *fakeResolver) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, books, discounts)
	require.NoError(t, err)
	return svc
}

func physicalBook(price string) *models.Book {
	return &models.Book{
		ID:              uuid.New(),
		CategoryID:      uuid.New(),
		PhysicalPrice:   decimal.RequireFromString(price),
		HasPhysicalCopy: true,
	}
}

func TestAddItemCreatesCartAndComputesTotals(t *testing.T) {
	t.Parallel()

	book := physicalBook("100.00")
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{book.ID: 10}},
	)

	cart, err := svc.AddItem(context.Background(), uuid.New(), book.ID, 2)
	require.NoError(t, err)

	require.Equal(t, "200.00", cart.TotalPrice.StringFixed(2))
	require.Equal(t, "20.00", cart.TotalDiscount.StringFixed(2))
	require.Equal(t, "180.00", cart.NetAmount.StringFixed(2))
	require.Len(t, cart.Products, 1)
	require.Equal(t, "90.00", cart.Products[0].FinalPrice.StringFixed(2))
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()

	book := physicalBook("50.00")
	userID := uuid.New()
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{}},
	)

	_, err := svc.AddItem(context.Background(), userID, book.ID, 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(context.Background(), userID, book.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Products, 1)
	require.Equal(t, 3, cart.Products[0].Quantity)
	require.Equal(t, "150.00", cart.TotalPrice.StringFixed(2))
	require.Equal(t, "150.00", cart.NetAmount.StringFixed(2))
}

func TestAddItemRejectsDigitalOnlyBook(t *testing.T) {
	t.Parallel()

	book := physicalBook("75.00")
	book.HasPhysicalCopy = false
	svc := newTestService(t, newFakeRepo(),
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{}},
	)

	_, err := svc.AddItem(context.Background(), uuid.New(), book.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAddItemUnknownBook(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo(),
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{}},
		&fakeResolver{percents: map[uuid.UUID]int64{}},
	)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateItemQuantityRecomputesTotals(t *testing.T) {
	t.Parallel()

	book := physicalBook("40.00")
	userID := uuid.New()
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{book.ID: 25}},
	)

	cart, err := svc.AddItem(context.Background(), userID, book.ID, 1)
	require.NoError(t, err)
	itemID := cart.Products[0].ID

	cart, err = svc.UpdateItemQuantity(context.Background(), userID, itemID, 5)
	require.NoError(t, err)

	require.Equal(t, 5, cart.Products[0].Quantity)
	require.Equal(t, "200.00", cart.TotalPrice.StringFixed(2))
	require.Equal(t, "50.00", cart.TotalDiscount.StringFixed(2))
	require.Equal(t, "150.00", cart.NetAmount.StringFixed(2))
}

func TestUpdateItemQuantityForeignItem(t *testing.T) {
	t.Parallel()

	book := physicalBook("40.00")
	owner := uuid.New()
	intruder := uuid.New()
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{}},
	)

	cart, err := svc.AddItem(context.Background(), owner, book.ID, 1)
	require.NoError(t, err)

	// The intruder has no active cart at all.
	_, err = svc.UpdateItemQuantity(context.Background(), intruder, cart.Products[0].ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// An unrelated item id inside the owner's cart is rejected too.
	_, err = svc.UpdateItemQuantity(context.Background(), owner, uuid.New(), 2)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRemoveItemLeavesConsistentTotals(t *testing.T) {
	t.Parallel()

	first := physicalBook("30.00")
	second := physicalBook("20.00")
	userID := uuid.New()
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{first.ID: first, second.ID: second}},
		&fakeResolver{percents: map[uuid.UUID]int64{first.ID: 50}},
	)

	_, err := svc.AddItem(context.Background(), userID, first.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(context.Background(), userID, second.ID, 1)
	require.NoError(t, err)
	require.Equal(t, "80.00", cart.TotalPrice.StringFixed(2))

	var firstItemID uuid.UUID
	for _, item := range cart.Products {
		if item.BookID == first.ID {
			firstItemID = item.ID
		}
	}

	cart, err = svc.RemoveItem(context.Background(), userID, firstItemID)
	require.NoError(t, err)

	require.Len(t, cart.Products, 1)
	require.Equal(t, "20.00", cart.TotalPrice.StringFixed(2))
	require.Equal(t, "0.00", cart.TotalDiscount.StringFixed(2))
	require.Equal(t, "20.00", cart.NetAmount.StringFixed(2))
}

func TestTotalsInvariantAcrossMutations(t *testing.T) {
	t.Parallel()

	book := physicalBook("19.99")
	userID := uuid.New()
	repo := newFakeRepo()
	svc := newTestService(t, repo,
		&fakeBookLoader{books: map[uuid.UUID]*models.Book{book.ID: book}},
		&fakeResolver{percents: map[uuid.UUID]int64{book.ID: 15}},
	)

	cart, err := svc.AddItem(context.Background(), userID, book.ID, 3)
	require.NoError(t, err)

	assertInvariant := func(cart *models.Cart) {
		t.Helper()
		expected := decimal.Zero
		for _, item := range cart.Products {
			expected = expected.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		require.True(t, cart.TotalPrice.Equal(expected.Round(2)))
		require.True(t, cart.NetAmount.Equal(cart.TotalPrice.Sub(cart.TotalDiscount)))
	}
	assertInvariant(cart)

	cart, err = svc.UpdateItemQuantity(context.Background(), userID, cart.Products[0].ID, 7)
	require.NoError(t, err)
	assertInvariant(cart)

	cart, err = svc.RemoveItem(context.Background(), userID, cart.Products[0].ID)
	require.NoError(t, err)
	assertInvariant(cart)
}
