package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"gorm.io/gorm"
)

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service exposes the catalog read model consumed by pricing and entitlement.
type Service interface {
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type service struct {
	repo bookFinder
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo bookFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// GetBook returns the book or a typed not-found error.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}
