package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"templora/internal/domain"
	"templora/internal/port"
)

type categoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo creates a new PostgreSQL-backed CategoryRepository.
func NewCategoryRepo(db *sqlx.DB) port.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `INSERT INTO categories
		(id, parent_id, name, slug, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.ParentID, category.Name, category.Slug,
		category.SortOrder, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("categoryRepo.Create: %w", err)
	}
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := r.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("categoryRepo.GetByID: %w", err)
	}
	return &category, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	err := r.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("categoryRepo.GetBySlug: %w", err)
	}
	return &category, nil
}

func (r *categoryRepo) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]domain.Category, error) {
	var categories []domain.Category
	var err error
	if parentID == nil {
		err = r.db.SelectContext(ctx, &categories,
			"SELECT * FROM categories WHERE parent_id IS NULL ORDER BY sort_order, name")
	} else {
		err = r.db.SelectContext(ctx, &categories,
			"SELECT * FROM categories WHERE parent_id = $1 ORDER BY sort_order, name", *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.ListChildren: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.ListAll: %w", err)
	}
	return categories, nil
}
