package repository

import (
	"context"
	"time"

	"github.com/eboutiques/catalogsync/internal/projection/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindProductByRemoteKey(ctx context.Context, remoteKey string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Where("remote_key_id = ?", remoteKey).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) CreateProduct(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repo) UpdateProduct(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":              product.Name,
			"short_name":        product.ShortName,
			"qty":               product.Qty,
			"price":             product.Price,
			"price_without_tax": product.PriceWithoutTax,
			"tax_rate":          product.TaxRate,
			"tax_amount":        product.TaxAmount,
			"thumb_image":       product.ThumbImage,
			"weight":            product.Weight,
			"status":            product.Status,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateProductQuantity(ctx context.Context, productID int64, qty int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"qty": qty, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) UpdateProductThumb(ctx context.Context, productID int64, url string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"thumb_image": url, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) SyncedProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := r.db.WithContext(ctx).
		Where("remote_key_id IS NOT NULL AND remote_key_id != ''").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindVariantByRemoteKey(ctx context.Context, remoteKey string) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.db.WithContext(ctx).
		Where("remote_key_id = ?", remoteKey).
		Limit(1).
		Find(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *repo) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// UpdateVariant never touches remote_key_id or product_id: ownership
// and identity are fixed at creation.
func (r *repo) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ProductVariant{}).
		Where("id = ?", variant.ID).
		Updates(map[string]any{
			"name":              variant.Name,
			"stock":             variant.Stock,
			"price":             variant.Price,
			"price_without_tax": variant.PriceWithoutTax,
			"cost_price":        variant.CostPrice,
			"tax_rate":          variant.TaxRate,
			"tax_amount":        variant.TaxAmount,
			"details":           variant.Details,
			"status":            variant.Status,
			"weight":            variant.Weight,
			"image":             variant.Image,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateVariantQuantity(ctx context.Context, productID int64, remoteKey string, qty int) error {
	return r.db.WithContext(ctx).
		Model(&domain.ProductVariant{}).
		Where("product_id = ? AND remote_key_id = ?", productID, remoteKey).
		Updates(map[string]any{"stock": qty, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) DisableVariantsNotIn(ctx context.Context, productID int64, keep []string) (int64, error) {
	stmt := r.db.WithContext(ctx).
		Model(&domain.ProductVariant{}).
		Where("product_id = ?", productID)
	if len(keep) > 0 {
		stmt = stmt.Where("sku NOT IN ?", keep)
	}
	result := stmt.Updates(map[string]any{"status": 0, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteSyncedGallery(ctx context.Context, productID int64, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	stmt := r.db.WithContext(ctx).Where("product_id = ?", productID)
	matcher := r.db.Where("image LIKE ?", patterns[0])
	for _, pattern := range patterns[1:] {
		matcher = matcher.Or("image LIKE ?", pattern)
	}
	return stmt.Where(matcher).Delete(&domain.ProductGallery{}).Error
}

func (r *repo) InsertGalleryImage(ctx context.Context, image *domain.ProductGallery) error {
	return r.db.WithContext(ctx).Create(image).Error
}
