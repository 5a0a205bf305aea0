package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not_found")

// Repository is the destination persistence capability. Lookups return
// (nil, nil) when no row matches; ErrNotFound is reserved for updates
// against rows that vanished mid-pass.
type Repository interface {
	FindProductByRemoteKey(ctx context.Context, remoteKey string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	// UpdateProduct writes the mutable projection fields only; slug,
	// seo and category assignments are set once at creation and left
	// to the storefront afterwards.
	UpdateProduct(ctx context.Context, product *Product) error
	UpdateProductQuantity(ctx context.Context, productID int64, qty int) error
	UpdateProductThumb(ctx context.Context, productID int64, url string) error
	// SyncedProducts pages over rows with a non-empty remote key.
	SyncedProducts(ctx context.Context, offset, limit int) ([]Product, error)

	FindVariantByRemoteKey(ctx context.Context, remoteKey string) (*ProductVariant, error)
	CreateVariant(ctx context.Context, variant *ProductVariant) error
	UpdateVariant(ctx context.Context, variant *ProductVariant) error
	UpdateVariantQuantity(ctx context.Context, productID int64, remoteKey string, qty int) error
	// DisableVariantsNotIn flips status to 0 for the product's variants
	// whose SKU is absent from keep. Returns the number disabled.
	DisableVariantsNotIn(ctx context.Context, productID int64, keep []string) (int64, error)

	// DeleteSyncedGallery removes gallery rows matching the sync-owned
	// URL patterns; manually added rows are untouched.
	DeleteSyncedGallery(ctx context.Context, productID int64, patterns []string) error
	InsertGalleryImage(ctx context.Context, image *ProductGallery) error
}
