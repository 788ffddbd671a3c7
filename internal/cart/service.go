package cart

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookLoader interface {
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type discountResolver interface {
	ResolveDiscountPercent(ctx context.Context, bookID uuid.UUID, at time.Time) (int64, error)
}

// CartRepository is the persistence surface the service depends on.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Deactivate(ctx context.Context, cartID uuid.UUID) error
	FindItemByBook(ctx context.Context, cartID, bookID uuid.UUID) (*models.CartProduct, error)
	FindItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartProduct, error)
	CreateItem(ctx context.Context, item *models.CartProduct) error
	SaveItem(ctx context.Context, item *models.CartProduct) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartProduct, error)
}

// Service exposes cart mutations and reads.
type Service interface {
	AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo      CartRepository
	tx        txRunner
	books     bookLoader
	discounts discountResolver
	now       func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, books bookLoader, discounts discountResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount resolver required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		books:     books,
		discounts: discounts,
		now:       time.Now,
	}, nil
}

// AddItem puts a book into the user's single active cart, creating the cart
// when absent and merging quantity when the book is already present. Price and
// discount snapshots are re-resolved on every add.
func (s *service) AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.HasPhysicalCopy {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book is not purchasable")
	}

	price := book.PhysicalPrice
	percent, err := s.discounts.ResolveDiscountPercent(ctx, bookID, s.now())
	if err != nil {
		return nil, err
	}
	finalPrice := money.ApplyDiscount(price, percent)

	var result *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindActiveByUserForUpdate(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
			}
			cart = &models.Cart{UserID: userID, IsActive: true}
			if err := repo.Create(ctx, cart); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
			}
		}

		item, err := repo.FindItemByBook(ctx, cart.ID, bookID)
		switch {
		case err == nil:
			item.Quantity += quantity
			item.Price = price
			item.Discount = percent
			item.FinalPrice = finalPrice
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.CartProduct{
				CartID:     cart.ID,
				BookID:     bookID,
				Quantity:   quantity,
				Price:      price,
				Discount:   percent,
				FinalPrice: finalPrice,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if err := s.refreshTotals(ctx, repo, cart); err != nil {
			return err
		}
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItemQuantity replaces a line's quantity and re-resolves its price and
// discount snapshots before recomputing totals.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.lockOwnedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}

		book, err := s.books.GetBook(ctx, item.BookID)
		if err != nil {
			return err
		}
		percent, err := s.discounts.ResolveDiscountPercent(ctx, item.BookID, s.now())
		if err != nil {
			return err
		}

		item.Quantity = quantity
		item.Price = book.PhysicalPrice
		item.Discount = percent
		item.FinalPrice = money.ApplyDiscount(book.PhysicalPrice, percent)
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}

		if err := s.refreshTotals(ctx, repo, cart); err != nil {
			return err
		}
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes a line and recomputes totals.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.lockOwnedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}

		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		if err := s.refreshTotals(ctx, repo, cart); err != nil {
			return err
		}
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetActiveCart loads the user's active cart with items.
func (s *service) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}
	return cart, nil
}

func (s *service) lockOwnedItem(ctx context.Context, repo CartRepository, userID, itemID uuid.UUID) (*models.Cart, *models.CartProduct, error) {
	cart, err := repo.FindActiveByUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}

	item, err := repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return cart, item, nil
}

func (s *service) refreshTotals(ctx context.Context, repo CartRepository, cart *models.Cart) error {
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	recomputeTotals(cart, items)
	cart.Products = items

	if err := repo.Save(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart totals")
	}
	return nil
}

// recomputeTotals derives all three money fields from the line items. One
// formula covers every mutation path so totals never depend on operation order.
func recomputeTotals(cart *models.Cart, items []models.CartProduct) {
	total := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
		discount = discount.Add(money.PercentOf(line, item.Discount))
	}
	cart.TotalPrice = money.Quantize(total)
	cart.TotalDiscount = money.Quantize(discount)
	cart.NetAmount = money.Quantize(total.Sub(discount))
}
