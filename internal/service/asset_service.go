package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"templora/internal/config"
	"templora/internal/domain"
	"templora/internal/port"
)

// AssetCreateInput is the DTO for creating a draft asset.
type AssetCreateInput struct {
	SellerID    uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	Description string
	PriceCents  int64
	Currency    string
}

// AssetFilesInput attaches uploaded file references to a draft asset.
type AssetFilesInput struct {
	PreviewURL   string
	ThumbnailURL string
	SourceKey    string
	SourceSize   int64
}

// AssetService defines the marketplace asset contract.
type AssetService interface {
	Create(ctx context.Context, input AssetCreateInput) (*domain.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]domain.Asset, int, error)
	ListPublished(ctx context.Context, categoryID *uuid.UUID, offset, limit int) ([]domain.Asset, int, error)
	AttachFiles(ctx context.Context, sellerID, assetID uuid.UUID, input AssetFilesInput) (*domain.Asset, error)
	Publish(ctx context.Context, sellerID, assetID uuid.UUID) (*domain.Asset, error)
	GetDownloadURL(ctx context.Context, assetID uuid.UUID) (string, error)
	Delete(ctx context.Context, sellerID, assetID uuid.UUID, role domain.UserRole) error
}

type assetService struct {
	assetRepo    port.AssetRepository
	categoryRepo port.CategoryRepository
	userRepo     port.UserRepository
	storage      port.ObjectStorage
	email        port.EmailSender
	s3Cfg        *config.S3Config
}

// NewAssetService creates a new AssetService implementation.
func NewAssetService(
	assetRepo port.AssetRepository,
	categoryRepo port.CategoryRepository,
	userRepo port.UserRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	s3Cfg *config.S3Config,
) AssetService {
	return &assetService{
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		storage:      storage,
		email:        email,
		s3Cfg:        s3Cfg,
	}
}

func (s *assetService) Create(ctx context.Context, input AssetCreateInput) (*domain.Asset, error) {
	if input.CategoryID == uuid.Nil {
		return nil, domain.ErrMissingCategory
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("assetService.Create: %w", err)
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	asset := &domain.Asset{
		ID:          uuid.New(),
		SellerID:    input.SellerID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Slug:        domain.Slugify(input.Title),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    currency,
		Status:      domain.AssetStatusDraft,
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("assetService.Create: %w", err)
	}
	return asset, nil
}

func (s *assetService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assetService.GetByID: %w", err)
	}
	return asset, nil
}

func (s *assetService) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	return s.assetRepo.ListBySeller(ctx, sellerID, offset, limit)
}

func (s *assetService) ListPublished(ctx context.Context, categoryID *uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	return s.assetRepo.ListPublished(ctx, categoryID, offset, limit)
}

func (s *assetService) AttachFiles(ctx context.Context, sellerID, assetID uuid.UUID, input AssetFilesInput) (*domain.Asset, error) {
	asset, err := s.ownedAsset(ctx, sellerID, assetID)
	if err != nil {
		return nil, err
	}

	if input.PreviewURL != "" {
		asset.PreviewURL = input.PreviewURL
	}
	if input.ThumbnailURL != "" {
		asset.ThumbnailURL = input.ThumbnailURL
	}
	if input.SourceKey != "" {
		asset.SourceKey = input.SourceKey
		asset.SourceSize = input.SourceSize
	}

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("assetService.AttachFiles: %w", err)
	}
	return asset, nil
}

func (s *assetService) Publish(ctx context.Context, sellerID, assetID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.ownedAsset(ctx, sellerID, assetID)
	if err != nil {
		return nil, err
	}
	if asset.PreviewURL == "" || asset.SourceKey == "" {
		return nil, domain.ErrAssetNotReady
	}

	now := time.Now().UTC()
	asset.Status = domain.AssetStatusPublished
	asset.PublishedAt = &now

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("assetService.Publish: %w", err)
	}

	// Notify the seller; delivery failure does not fail the publish.
	if seller, err := s.userRepo.GetByID(ctx, sellerID); err == nil {
		if err := s.email.SendAssetPublishedEmail(ctx, seller.Email, seller.DisplayName, asset.Title, asset.Slug); err != nil {
			log.Printf("assetService.Publish: notify %s for asset %s: %v", seller.Email, asset.ID, err)
		}
	}

	return asset, nil
}

// GetDownloadURL returns a time-limited presigned GET URL for the private
// source archive.
func (s *assetService) GetDownloadURL(ctx context.Context, assetID uuid.UUID) (string, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("assetService.GetDownloadURL: %w", err)
	}
	if asset.SourceKey == "" {
		return "", domain.ErrAssetNotReady
	}
	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.SourceBucket, asset.SourceKey, s.s3Cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("assetService.GetDownloadURL: %w", err)
	}
	return url, nil
}

func (s *assetService) Delete(ctx context.Context, sellerID, assetID uuid.UUID, role domain.UserRole) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("assetService.Delete: %w", err)
	}
	if asset.SellerID != sellerID && role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.assetRepo.Delete(ctx, assetID); err != nil {
		return fmt.Errorf("assetService.Delete: %w", err)
	}
	return nil
}

func (s *assetService) ownedAsset(ctx context.Context, sellerID, assetID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("loading asset: %w", err)
	}
	if asset.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}
	return asset, nil
}
