package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"templora/internal/domain"
	"templora/internal/port"
)

// CategoryService defines the taxonomy read contract.
type CategoryService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListTopLevel(ctx context.Context) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error)
}

type categoryService struct {
	categoryRepo port.CategoryRepository
}

// NewCategoryService creates a new CategoryService implementation.
func NewCategoryService(categoryRepo port.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("categoryService.GetByID: %w", err)
	}
	return cat, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	cat, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("categoryService.GetBySlug: %w", err)
	}
	return cat, nil
}

func (s *categoryService) ListTopLevel(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.ListChildren(ctx, nil)
}

func (s *categoryService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]domain.Category, error) {
	return s.categoryRepo.ListChildren(ctx, &parentID)
}
