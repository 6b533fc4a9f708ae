package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"templora/internal/domain"
	"templora/internal/port"
)

type assetRepo struct {
	db *sqlx.DB
}

// NewAssetRepo creates a new PostgreSQL-backed AssetRepository.
func NewAssetRepo(db *sqlx.DB) port.AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	query := `INSERT INTO assets
		(id, seller_id, category_id, title, slug, description, price_cents, currency,
		 preview_url, thumbnail_url, source_key, source_size, status, published_at,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.SellerID, asset.CategoryID, asset.Title, asset.Slug,
		asset.Description, asset.PriceCents, asset.Currency, asset.PreviewURL,
		asset.ThumbnailURL, asset.SourceKey, asset.SourceSize, asset.Status,
		asset.PublishedAt, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateAssetSlug
		}
		return fmt.Errorf("assetRepo.Create: %w", err)
	}
	return nil
}

func (r *assetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.GetContext(ctx, &asset,
		"SELECT * FROM assets WHERE id = $1 AND status != $2", id, domain.AssetStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("assetRepo.GetByID: %w", err)
	}
	return &asset, nil
}

func (r *assetRepo) GetBySlug(ctx context.Context, slug string) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.GetContext(ctx, &asset,
		"SELECT * FROM assets WHERE slug = $1 AND status != $2", slug, domain.AssetStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("assetRepo.GetBySlug: %w", err)
	}
	return &asset, nil
}

func (r *assetRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM assets WHERE seller_id = $1 AND status != $2",
		sellerID, domain.AssetStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.ListBySeller count: %w", err)
	}

	var assets []domain.Asset
	err = r.db.SelectContext(ctx, &assets,
		`SELECT * FROM assets
		 WHERE seller_id = $1 AND status != $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		sellerID, domain.AssetStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.ListBySeller: %w", err)
	}
	return assets, total, nil
}

func (r *assetRepo) ListPublished(ctx context.Context, categoryID *uuid.UUID, offset, limit int) ([]domain.Asset, int, error) {
	var total int
	var assets []domain.Asset
	var err error

	if categoryID != nil {
		err = r.db.GetContext(ctx, &total,
			"SELECT COUNT(*) FROM assets WHERE status = $1 AND category_id = $2",
			domain.AssetStatusPublished, *categoryID)
		if err != nil {
			return nil, 0, fmt.Errorf("assetRepo.ListPublished count: %w", err)
		}
		err = r.db.SelectContext(ctx, &assets,
			`SELECT * FROM assets
			 WHERE status = $1 AND category_id = $2
			 ORDER BY published_at DESC LIMIT $3 OFFSET $4`,
			domain.AssetStatusPublished, *categoryID, limit, offset)
	} else {
		err = r.db.GetContext(ctx, &total,
			"SELECT COUNT(*) FROM assets WHERE status = $1", domain.AssetStatusPublished)
		if err != nil {
			return nil, 0, fmt.Errorf("assetRepo.ListPublished count: %w", err)
		}
		err = r.db.SelectContext(ctx, &assets,
			`SELECT * FROM assets
			 WHERE status = $1
			 ORDER BY published_at DESC LIMIT $2 OFFSET $3`,
			domain.AssetStatusPublished, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.ListPublished: %w", err)
	}
	return assets, total, nil
}

func (r *assetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	asset.UpdatedAt = time.Now().UTC()

	query := `UPDATE assets
		SET category_id = $2, title = $3, slug = $4, description = $5,
		    price_cents = $6, currency = $7, preview_url = $8, thumbnail_url = $9,
		    source_key = $10, source_size = $11, status = $12, published_at = $13,
		    updated_at = $14
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.CategoryID, asset.Title, asset.Slug, asset.Description,
		asset.PriceCents, asset.Currency, asset.PreviewURL, asset.ThumbnailURL,
		asset.SourceKey, asset.SourceSize, asset.Status, asset.PublishedAt,
		asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assetRepo.Update: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *assetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1",
		id, domain.AssetStatusDeleted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assetRepo.Delete: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
