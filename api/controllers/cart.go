package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/api/responses"
	"github.com/saifulmridha/boighor-backend/api/validators"
	cartsvc "github.com/saifulmridha/boighor-backend/internal/cart"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
)

type cartItemResponse struct {
	ID         uuid.UUID `json:"id"`
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title,omitempty"`
	Quantity   int       `json:"quantity"`
	Price      string    `json:"price"`
	Discount   int64     `json:"discount_percent"`
	FinalPrice string    `json:"final_price"`
}

type cartResponse struct {
	ID            uuid.UUID          `json:"id"`
	TotalPrice    string             `json:"total_price"`
	TotalDiscount string             `json:"total_discount"`
	NetAmount     string             `json:"net_amount"`
	Items         []cartItemResponse `json:"items"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	resp := cartResponse{
		ID:            cart.ID,
		TotalPrice:    cart.TotalPrice.StringFixed(2),
		TotalDiscount: cart.TotalDiscount.StringFixed(2),
		NetAmount:     cart.NetAmount.StringFixed(2),
		Items:         make([]cartItemResponse, 0, len(cart.Products)),
	}
	for _, item := range cart.Products {
		line := cartItemResponse{
			ID:         item.ID,
			BookID:     item.BookID,
			Quantity:   item.Quantity,
			Price:      item.Price.StringFixed(2),
			Discount:   item.Discount,
			FinalPrice: item.FinalPrice.StringFixed(2),
		}
		if item.Book != nil {
			line.BookTitle = item.Book.Title
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type addCartItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartFetch exposes the user's active cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetActiveCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartAddItem puts a book into the cart or merges quantities.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), userID, payload.BookID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cart))
	}
}

// CartUpdateItem changes a line's quantity and re-resolves its discount.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseID(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateItemQuantity(r.Context(), userID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartRemoveItem deletes a line and recomputes totals.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseID(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}
