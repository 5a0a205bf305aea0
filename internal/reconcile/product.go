package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/eboutiques/catalogsync/internal/assets"
	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/mapper"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconcileProduct upserts one source template and cascades to its
// variants and gallery. Cascade failures are counted and logged but do
// not revert the product-level upsert: the projection is best effort,
// not transactional.
func (s *Service) ReconcileProduct(ctx context.Context, t catalog.Template, variants []catalog.Variant, attrs []catalog.AttributeValue) (Result, error) {
	log := s.log.With(zap.Int64("source_id", t.ID), zap.String("name", t.Name))

	info := s.taxes.Compute(ctx, t.TaxIDs, decimal.NewFromFloat(t.ListPrice))
	thumb := s.resolveThumb(ctx, t)
	row := mapper.ProductRow(t, info, thumb, time.Now().UTC())

	resolved, err := s.upsertProduct(ctx, &row)
	if err != nil {
		return Result{}, fmt.Errorf("upsert product %d: %w", t.ID, err)
	}

	result := Result{Product: resolved}
	result.Variants = s.reconcileVariants(ctx, resolved.ID, t, variants, attrs, info)

	images, err := s.RebuildGallery(ctx, t.ID, resolved.ID)
	if err != nil {
		log.Warn("gallery rebuild failed", zap.Error(err))
	}
	result.GalleryImages = images

	log.Info("product reconciled",
		zap.Int64("product_id", resolved.ID),
		zap.Int("variants_synced", result.Variants.Synced),
		zap.Int("variant_errors", result.Variants.Errors),
		zap.Int("gallery_images", images),
	)
	return result, nil
}

// upsertProduct inserts or updates keyed on remote_key_id. An insert
// that loses a race on the unique constraint is re-resolved by
// re-reading the row, never surfaced as an error.
func (s *Service) upsertProduct(ctx context.Context, row *projection.Product) (*projection.Product, error) {
	key := *row.RemoteKeyID

	existing, err := s.repo.FindProductByRemoteKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		err := s.repo.CreateProduct(ctx, row)
		if err == nil {
			return row, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		existing, err = s.repo.FindProductByRemoteKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("product %s vanished after duplicate-key insert", key)
		}
	}

	if s.skipUnchanged && !productChanged(existing, row) {
		return existing, nil
	}

	row.ID = existing.ID
	if err := s.repo.UpdateProduct(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) resolveThumb(ctx context.Context, t catalog.Template) string {
	if !t.HasImage {
		return assets.NoImage
	}
	url := s.urls.MainImage(t.ID)
	if s.prober.Exists(ctx, url) {
		return url
	}
	return assets.NoImage
}

func (s *Service) resolveVariantImage(ctx context.Context, templateID int64, v catalog.Variant) string {
	if !v.HasImage {
		return assets.NoImage
	}
	// Variant assets are published under the owning template's id; the
	// variant's own id only works for standalone records.
	imageID := templateID
	if imageID == 0 {
		imageID = v.ID
	}
	url := s.urls.MainImage(imageID)
	if s.prober.Exists(ctx, url) {
		return url
	}
	return assets.NoImage
}

func productChanged(existing, updated *projection.Product) bool {
	return existing.Name != updated.Name ||
		existing.ShortName != updated.ShortName ||
		existing.Qty != updated.Qty ||
		existing.Price != updated.Price ||
		existing.PriceWithoutTax != updated.PriceWithoutTax ||
		existing.TaxRate != updated.TaxRate ||
		existing.TaxAmount != updated.TaxAmount ||
		existing.ThumbImage != updated.ThumbImage ||
		existing.Weight != updated.Weight ||
		existing.Status != updated.Status
}

func variantChanged(existing, updated *projection.ProductVariant) bool {
	return existing.Name != updated.Name ||
		existing.Stock != updated.Stock ||
		existing.Price != updated.Price ||
		existing.PriceWithoutTax != updated.PriceWithoutTax ||
		existing.CostPrice != updated.CostPrice ||
		existing.TaxRate != updated.TaxRate ||
		existing.TaxAmount != updated.TaxAmount ||
		existing.Status != updated.Status ||
		existing.Weight != updated.Weight ||
		existing.Image != updated.Image ||
		!bytes.Equal(existing.Details, updated.Details)
}

func remoteKeyOf(id int64) string { return strconv.FormatInt(id, 10) }
