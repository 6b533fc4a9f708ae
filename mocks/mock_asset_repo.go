package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"templora/internal/domain"
)

// MockAssetRepo is a mock implementation of port.AssetRepository.
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepo) GetBySlug(ctx context.Context, slug string) (*domain.Asset, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *MockAssetRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	args := m.Called(ctx, sellerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Asset), args.Int(1), args.Error(2)
}

func (m *MockAssetRepo) ListPublished(ctx context.Context, categoryID *uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	args := m.Called(ctx, categoryID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Asset), args.Int(1), args.Error(2)
}

func (m *MockAssetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
