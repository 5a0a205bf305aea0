package assets

import (
	"fmt"
	"strings"
)

// NoImage is the sentinel stored when no verified asset exists.
const NoImage = "no_product_image.jpg"

// GalleryDepth caps the number of gallery slots per product.
const GalleryDepth = 10

// URLBuilder constructs remote asset URLs for the public image
// endpoint of the source system.
type URLBuilder struct {
	base string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{base: strings.TrimRight(baseURL, "/")}
}

// MainImage returns the canonical primary image URL for a record.
func (b *URLBuilder) MainImage(recordID int64) string {
	return fmt.Sprintf("%s/public/product_image/%d/image_1920", b.base, recordID)
}

// GalleryImage returns the URL for gallery slot index (1-based).
func (b *URLBuilder) GalleryImage(recordID int64, index int) string {
	return fmt.Sprintf("%s/public/product_image/%d/image_%d", b.base, recordID, index)
}

// SyncedPatterns returns the SQL LIKE patterns identifying gallery rows
// owned by the sync. Rows added manually through the storefront admin
// use other URL shapes and must survive a rebuild.
func (b *URLBuilder) SyncedPatterns() []string {
	return []string{b.base + "/%", "storage/products/%"}
}
