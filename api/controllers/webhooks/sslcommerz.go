package webhooks

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saifulmridha/boighor-backend/api/responses"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/saifulmridha/boighor-backend/pkg/sslcommerz"
)

type PaymentCallbackService interface {
	HandleCallback(ctx context.Context, kind enums.PaymentKind, payload sslcommerz.CallbackPayload) error
}

// SSLCommerzCallback settles gateway IPN and redirect posts. The kind path
// segment routes the callback to the matching aggregate.
func SSLCommerzCallback(svc PaymentCallbackService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		kind, err := enums.ParsePaymentKind(chi.URLParam(r, "kind"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment kind"))
			return
		}

		if err := r.ParseForm(); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse callback form"))
			return
		}

		payload := sslcommerz.ParseCallback(r.PostForm)
		if err := svc.HandleCallback(ctx, kind, payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
