package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/eboutiques/catalogsync/internal/assets"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
)

// RebuildGallery replaces the sync-owned gallery rows for a product.
// Slots 1..GalleryDepth are always written; the storefront hides slots
// whose remote asset 404s, so no probing happens here. Manually added
// gallery rows do not match the synced URL patterns and survive.
func (s *Service) RebuildGallery(ctx context.Context, templateID, productID int64) (int, error) {
	if err := s.repo.DeleteSyncedGallery(ctx, productID, s.urls.SyncedPatterns()); err != nil {
		return 0, fmt.Errorf("clear gallery for product %d: %w", productID, err)
	}

	if err := s.repo.UpdateProductThumb(ctx, productID, s.urls.MainImage(templateID)); err != nil {
		return 0, fmt.Errorf("rewrite thumbnail for product %d: %w", productID, err)
	}

	now := time.Now().UTC()
	inserted := 0
	for i := 1; i <= assets.GalleryDepth; i++ {
		row := projection.ProductGallery{
			ProductID: productID,
			Image:     s.urls.GalleryImage(templateID, i),
			Status:    1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertGalleryImage(ctx, &row); err != nil {
			return inserted, fmt.Errorf("insert gallery slot %d for product %d: %w", i, productID, err)
		}
		inserted++
	}
	return inserted, nil
}
