package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/api/responses"
	"github.com/saifulmridha/boighor-backend/api/validators"
	"github.com/saifulmridha/boighor-backend/internal/accounts"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

func newAuthResponse(token string, user *models.User) authResponse {
	return authResponse{
		AccessToken: token,
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			FullName:    user.FullName,
			Role:        user.Role,
			LastLoginAt: user.LastLoginAt,
		},
	}
}

// Register creates a customer account and returns an access token.
func Register(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), accounts.RegisterInput{
			Email:    payload.Email,
			Password: payload.Password,
			FullName: payload.FullName,
			Phone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newAuthResponse(result.AccessToken, result.User))
	}
}

// Login verifies credentials and returns an access token.
func Login(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), accounts.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newAuthResponse(result.AccessToken, result.User))
	}
}
