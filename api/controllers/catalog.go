package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/api/responses"
	catalogsvc "github.com/saifulmridha/boighor-backend/internal/catalog"
	"github.com/saifulmridha/boighor-backend/internal/promotions"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
)

type bookLister interface {
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Book, error)
}

type bookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CategoryID      uuid.UUID `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	PhysicalPrice   string    `json:"physical_price"`
	DigitalPrice    string    `json:"digital_price"`
	HasPhysicalCopy bool      `json:"has_physical_copy"`
	HasDigitalCopy  bool      `json:"has_digital_copy"`
	DiscountPercent int64     `json:"discount_percent"`
	DiscountedPrice string    `json:"discounted_price"`
}

func newBookResponse(ctx context.Context, resolver promotions.Resolver, book *models.Book) (bookResponse, error) {
	resp := bookResponse{
		ID:              book.ID,
		Title:           book.Title,
		CategoryID:      book.CategoryID,
		PhysicalPrice:   book.PhysicalPrice.StringFixed(2),
		DigitalPrice:    book.DigitalPrice.StringFixed(2),
		HasPhysicalCopy: book.HasPhysicalCopy,
		HasDigitalCopy:  book.DigitalFile != nil,
		DiscountedPrice: book.PhysicalPrice.StringFixed(2),
	}
	if book.Category != nil {
		resp.CategoryName = book.Category.Name
	}
	if resolver != nil {
		now := time.Now()
		percent, err := resolver.ResolveDiscountPercent(ctx, book.ID, now)
		if err != nil {
			return bookResponse{}, err
		}
		discounted, err := resolver.ResolveDiscountedPrice(ctx, book.ID, now)
		if err != nil {
			return bookResponse{}, err
		}
		resp.DiscountPercent = percent
		resp.DiscountedPrice = discounted.StringFixed(2)
	}
	return resp, nil
}

// BookDetail returns one catalog listing with its currently applicable discount.
func BookDetail(svc catalogsvc.Service, resolver promotions.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		bookID, err := parseID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.GetBook(r.Context(), bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := newBookResponse(r.Context(), resolver, book)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// BooksByCategory lists a category's books with resolved discounts.
func BooksByCategory(repo bookLister, resolver promotions.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository unavailable"))
			return
		}

		categoryID, err := parseID(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		books, err := repo.ListByCategory(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books"))
			return
		}

		out := make([]bookResponse, 0, len(books))
		for i := range books {
			resp, err := newBookResponse(r.Context(), resolver, &books[i])
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out = append(out, resp)
		}
		responses.WriteSuccess(w, out)
	}
}
