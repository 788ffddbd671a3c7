package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/saifulmridha/boighor-backend/pkg/auth"
	"github.com/saifulmridha/boighor-backend/pkg/config"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegisterInput is the data needed to create a customer account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// LoginInput carries submitted credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	AccessToken string
	User        *models.User
}

// Service handles account registration and credential checks.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type service struct {
	users  usersRepository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	now    func() time.Time
}

// NewService builds an accounts service with the provided dependencies.
func NewService(users usersRepository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		users:  users,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		now:    time.Now,
	}, nil
}

// Register creates a customer account and returns a signed access token.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = &phone
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a signed access token.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	loginAt := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &loginAt

	return s.issueToken(user)
}

func (s *service) issueToken(user *models.User) (*AuthResult, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResult{AccessToken: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
