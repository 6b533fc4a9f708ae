package port

import (
	"context"

	"github.com/google/uuid"

	"templora/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// CategoryRepository defines the contract for taxonomy persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListChildren(ctx context.Context, parentID *uuid.UUID) ([]domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// AssetRepository defines the contract for marketplace asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Asset, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]domain.Asset, int, error)
	ListPublished(ctx context.Context, categoryID *uuid.UUID, offset, limit int) ([]domain.Asset, int, error)
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}
