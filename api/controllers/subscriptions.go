package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/api/responses"
	"github.com/saifulmridha/boighor-backend/api/validators"
	subssvc "github.com/saifulmridha/boighor-backend/internal/subscriptions"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
)

type buySubscriptionRequest struct {
	PlanID uuid.UUID `json:"plan_id" validate:"required"`
}

type addSubscriptionBookRequest struct {
	BookID uuid.UUID `json:"book_id" validate:"required"`
}

type subscriptionResponse struct {
	ID            uuid.UUID  `json:"id"`
	PlanID        uuid.UUID  `json:"plan_id"`
	PlanName      string     `json:"plan_name,omitempty"`
	ActiveStatus  string     `json:"active_status"`
	PaymentStatus string     `json:"payment_status"`
	StartAt       *time.Time `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
	ReadCount     int        `json:"read_count"`
	DownloadCount int        `json:"download_count"`
}

func newSubscriptionResponse(sub *models.UserSubscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:            sub.ID,
		PlanID:        sub.PlanID,
		ActiveStatus:  sub.ActiveStatus.String(),
		PaymentStatus: sub.PaymentStatus.String(),
		StartAt:       sub.StartAt,
		EndAt:         sub.EndAt,
		ReadCount:     sub.ReadCount,
		DownloadCount: sub.DownloadCount,
	}
	if sub.Plan != nil {
		resp.PlanName = sub.Plan.Name
	}
	return resp
}

// SubscriptionBuy starts a plan purchase. Free plans activate immediately.
func SubscriptionBuy(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload buySubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BuySubscription(r.Context(), userID, payload.PlanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"subscription": newSubscriptionResponse(result.Subscription),
			"redirect_url": result.RedirectURL,
		})
	}
}

// SubscriptionActive returns the caller's current entitlement, if any.
func SubscriptionActive(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.GetActiveSubscription(r.Context(), userID, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription"))
			return
		}

		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

// SubscriptionAddBook places a book into the caller's library.
func SubscriptionAddBook(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addSubscriptionBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.AddBook(r.Context(), userID, payload.BookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":      pair.ID,
			"book_id": pair.BookID,
			"is_paid": pair.IsPaid,
		})
	}
}

// SubscriptionReadAccess reports whether the caller may open the book.
func SubscriptionReadAccess(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := parseID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allowed, err := svc.CanRead(r.Context(), userID, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"can_read": allowed})
	}
}

// SubscriptionDownload hands back the digital file reference for an added book.
func SubscriptionDownload(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := parseID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := svc.Download(r.Context(), userID, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"digital_file": file})
	}
}

// SubscriptionUnlockBook starts a gateway payment for a pay-per-unlock book.
func SubscriptionUnlockBook(svc subssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := parseID(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UnlockBook(r.Context(), userID, bookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"payment_id":   result.Payment.ID,
			"amount":       result.Payment.Amount.StringFixed(2),
			"redirect_url": result.RedirectURL,
		})
	}
}
