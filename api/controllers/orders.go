package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/api/responses"
	"github.com/saifulmridha/boighor-backend/api/validators"
	ordersvc "github.com/saifulmridha/boighor-backend/internal/orders"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/saifulmridha/boighor-backend/pkg/pagination"
)

type shippingRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

type checkoutRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required"`
	Shipping      shippingRequest `json:"shipping" validate:"required"`
}

type setOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderLineResponse struct {
	BookID     uuid.UUID `json:"book_id"`
	Quantity   int       `json:"quantity"`
	Price      string    `json:"price"`
	Discount   int64     `json:"discount_percent"`
	FinalPrice string    `json:"final_price"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	InvoiceID      *string             `json:"invoice_id"`
	Status         string              `json:"status"`
	PaymentStatus  string              `json:"payment_status"`
	PaymentMethod  string              `json:"payment_method"`
	TotalPrice     string              `json:"total_price"`
	TotalDiscount  string              `json:"total_discount"`
	ShippingCharge string              `json:"shipping_charge"`
	NetAmount      string              `json:"net_amount"`
	Items          []orderLineResponse `json:"items,omitempty"`
}

type checkoutResponse struct {
	Order       orderResponse `json:"order"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:             order.ID,
		InvoiceID:      order.InvoiceID,
		Status:         order.Status.String(),
		PaymentStatus:  order.PaymentStatus.String(),
		PaymentMethod:  order.PaymentMethod.String(),
		TotalPrice:     order.TotalPrice.StringFixed(2),
		TotalDiscount:  order.TotalDiscount.StringFixed(2),
		ShippingCharge: order.ShippingCharge.StringFixed(2),
		NetAmount:      order.NetAmount.StringFixed(2),
	}
	for _, line := range order.Products {
		resp.Items = append(resp.Items, orderLineResponse{
			BookID:     line.BookID,
			Quantity:   line.Quantity,
			Price:      line.Price.StringFixed(2),
			Discount:   line.Discount,
			FinalPrice: line.FinalPrice.StringFixed(2),
		})
	}
	return resp
}

// Checkout turns the active cart into an order.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.PlaceOrder(r.Context(), userID, ordersvc.PlaceOrderInput{
			PaymentMethod: method,
			Shipping: ordersvc.ShippingInput{
				Name:        payload.Shipping.Name,
				Phone:       payload.Shipping.Phone,
				Email:       payload.Shipping.Email,
				AddressLine: payload.Shipping.AddressLine,
				City:        payload.Shipping.City,
				PostalCode:  payload.Shipping.PostalCode,
				Country:     payload.Shipping.Country,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:       newOrderResponse(result.Order),
			RedirectURL: result.RedirectURL,
		})
	}
}

// OrderList pages through the caller's orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		orders, next, err := svc.ListMyOrders(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      out,
			"next_cursor": next,
		})
	}
}

// OrderDetail returns one of the caller's orders.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseID(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// StaffSetOrderStatus advances an order through its lifecycle.
func StaffSetOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseID(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetStatus(r.Context(), orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// StaffOrderQueue lists pending orders first for fulfilment staff.
func StaffOrderQueue(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			limit = parsed
		}

		orders, err := svc.ListOrderQueue(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
