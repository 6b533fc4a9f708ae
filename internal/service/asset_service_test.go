package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"templora/internal/domain"
	"templora/internal/service"
	"templora/mocks"
)

type assetServiceHarness struct {
	assetRepo    *mocks.MockAssetRepo
	categoryRepo *mocks.MockCategoryRepo
	userRepo     *mocks.MockUserRepo
	storage      *mocks.MockObjectStorage
	email        *mocks.MockEmailSender
	svc          service.AssetService
}

func newAssetServiceHarness() *assetServiceHarness {
	h := &assetServiceHarness{
		assetRepo:    new(mocks.MockAssetRepo),
		categoryRepo: new(mocks.MockCategoryRepo),
		userRepo:     new(mocks.MockUserRepo),
		storage:      new(mocks.MockObjectStorage),
		email:        new(mocks.MockEmailSender),
	}
	h.svc = service.NewAssetService(h.assetRepo, h.categoryRepo, h.userRepo, h.storage, h.email, testS3Config())
	return h
}

func draftAsset(sellerID uuid.UUID) *domain.Asset {
	return &domain.Asset{
		ID:         uuid.New(),
		SellerID:   sellerID,
		CategoryID: uuid.New(),
		Title:      "Neon Poster Pack",
		Slug:       "neon-poster-pack",
		Status:     domain.AssetStatusDraft,
	}
}

func TestAssetService_Create_SlugsTitle(t *testing.T) {
	h := newAssetServiceHarness()

	categoryID := uuid.New()
	h.categoryRepo.On("GetByID", mock.Anything, categoryID).
		Return(&domain.Category{ID: categoryID, Slug: "graphics"}, nil)
	h.assetRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Asset")).Return(nil)

	asset, err := h.svc.Create(context.Background(), service.AssetCreateInput{
		SellerID:   uuid.New(),
		CategoryID: categoryID,
		Title:      "My Cool Template!",
		PriceCents: 1999,
	})

	require.NoError(t, err)
	assert.Equal(t, "my-cool-template", asset.Slug)
	assert.Equal(t, domain.AssetStatusDraft, asset.Status)
	assert.Equal(t, "USD", asset.Currency)
}

func TestAssetService_Create_MissingCategory(t *testing.T) {
	h := newAssetServiceHarness()

	_, err := h.svc.Create(context.Background(), service.AssetCreateInput{
		SellerID: uuid.New(),
		Title:    "No Category",
	})

	assert.ErrorIs(t, err, domain.ErrMissingCategory)
	h.assetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAssetService_AttachFiles_OwnerOnly(t *testing.T) {
	h := newAssetServiceHarness()

	sellerID := uuid.New()
	asset := draftAsset(sellerID)
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)

	_, err := h.svc.AttachFiles(context.Background(), uuid.New(), asset.ID, service.AssetFilesInput{
		PreviewURL: "https://cdn.test/p.png",
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	h.assetRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssetService_AttachFiles_UpdatesReferences(t *testing.T) {
	h := newAssetServiceHarness()

	sellerID := uuid.New()
	asset := draftAsset(sellerID)
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)
	h.assetRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Asset")).Return(nil)

	updated, err := h.svc.AttachFiles(context.Background(), sellerID, asset.ID, service.AssetFilesInput{
		PreviewURL: "https://cdn.test/preview.mp4",
		SourceKey:  "graphics/neon-poster-pack/source.zip",
		SourceSize: 42 * 1024 * 1024,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/preview.mp4", updated.PreviewURL)
	assert.Equal(t, "graphics/neon-poster-pack/source.zip", updated.SourceKey)
	assert.Equal(t, int64(42*1024*1024), updated.SourceSize)
}

func TestAssetService_Publish_RequiresFiles(t *testing.T) {
	h := newAssetServiceHarness()

	sellerID := uuid.New()
	asset := draftAsset(sellerID)
	// Preview attached, source archive missing.
	asset.PreviewURL = "https://cdn.test/preview.mp4"
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)

	_, err := h.svc.Publish(context.Background(), sellerID, asset.ID)

	assert.ErrorIs(t, err, domain.ErrAssetNotReady)
	h.assetRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssetService_Publish_Success(t *testing.T) {
	h := newAssetServiceHarness()

	sellerID := uuid.New()
	asset := draftAsset(sellerID)
	asset.PreviewURL = "https://cdn.test/preview.mp4"
	asset.SourceKey = "graphics/neon-poster-pack/source.zip"

	seller := &domain.User{ID: sellerID, Email: "seller@test.com", DisplayName: "Test Seller"}

	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)
	h.assetRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Asset")).Return(nil)
	h.userRepo.On("GetByID", mock.Anything, sellerID).Return(seller, nil)
	h.email.On("SendAssetPublishedEmail", mock.Anything, "seller@test.com", "Test Seller",
		asset.Title, asset.Slug).Return(nil)

	published, err := h.svc.Publish(context.Background(), sellerID, asset.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	h.email.AssertExpectations(t)
}

func TestAssetService_Publish_EmailFailureDoesNotFailPublish(t *testing.T) {
	h := newAssetServiceHarness()

	sellerID := uuid.New()
	asset := draftAsset(sellerID)
	asset.PreviewURL = "https://cdn.test/preview.mp4"
	asset.SourceKey = "graphics/neon-poster-pack/source.zip"

	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)
	h.assetRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Asset")).Return(nil)
	h.userRepo.On("GetByID", mock.Anything, sellerID).
		Return(&domain.User{ID: sellerID, Email: "seller@test.com"}, nil)
	h.email.On("SendAssetPublishedEmail", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	published, err := h.svc.Publish(context.Background(), sellerID, asset.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusPublished, published.Status)
}

func TestAssetService_GetDownloadURL_PresignsSourceBucket(t *testing.T) {
	h := newAssetServiceHarness()

	asset := draftAsset(uuid.New())
	asset.SourceKey = "graphics/neon-poster-pack/source.zip"
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)
	h.storage.On("GetPresignedURL", mock.Anything, "templora-source-files", asset.SourceKey, int64(3600)).
		Return("https://store.test/signed", nil)

	url, err := h.svc.GetDownloadURL(context.Background(), asset.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://store.test/signed", url)
	h.storage.AssertExpectations(t)
}

func TestAssetService_GetDownloadURL_NoSource(t *testing.T) {
	h := newAssetServiceHarness()

	asset := draftAsset(uuid.New())
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)

	_, err := h.svc.GetDownloadURL(context.Background(), asset.ID)

	assert.ErrorIs(t, err, domain.ErrAssetNotReady)
}

func TestAssetService_Delete_AdminOverridesOwnership(t *testing.T) {
	h := newAssetServiceHarness()

	asset := draftAsset(uuid.New())
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)
	h.assetRepo.On("Delete", mock.Anything, asset.ID).Return(nil)

	err := h.svc.Delete(context.Background(), uuid.New(), asset.ID, domain.RoleAdmin)

	assert.NoError(t, err)
	h.assetRepo.AssertCalled(t, "Delete", mock.Anything, asset.ID)
}

func TestAssetService_Delete_NonOwnerForbidden(t *testing.T) {
	h := newAssetServiceHarness()

	asset := draftAsset(uuid.New())
	h.assetRepo.On("GetByID", mock.Anything, asset.ID).Return(asset, nil)

	err := h.svc.Delete(context.Background(), uuid.New(), asset.ID, domain.RoleSeller)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	h.assetRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
