package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a marketplace seller or admin account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Category is one node of the marketplace taxonomy. ParentID is nil for
// top-level categories; subcategories and sub-subcategories chain through it.
type Category struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ParentID  *uuid.UUID `db:"parent_id" json:"parent_id"`
	Name      string     `db:"name" json:"name"`
	Slug      string     `db:"slug" json:"slug"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Asset represents a purchasable marketplace item. Preview URLs point into the
// public previews bucket; SourceKey is the private-bucket key of the
// purchasable archive and is never exposed as a URL.
type Asset struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	SellerID      uuid.UUID   `db:"seller_id" json:"seller_id"`
	CategoryID    uuid.UUID   `db:"category_id" json:"category_id"`
	Title         string      `db:"title" json:"title"`
	Slug          string      `db:"slug" json:"slug"`
	Description   string      `db:"description" json:"description"`
	PriceCents    int64       `db:"price_cents" json:"price_cents"`
	Currency      string      `db:"currency" json:"currency"`
	PreviewURL    string      `db:"preview_url" json:"preview_url"`
	ThumbnailURL  string      `db:"thumbnail_url" json:"thumbnail_url"`
	SourceKey     string      `db:"source_key" json:"-"`
	SourceSize    int64       `db:"source_size" json:"source_size"`
	Status        AssetStatus `db:"status" json:"status"`
	PublishedAt   *time.Time  `db:"published_at" json:"published_at"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
