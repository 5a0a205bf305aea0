package drift

import (
	"context"
	"fmt"
	"testing"

	"github.com/eboutiques/catalogsync/internal/assets"
	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/config"
	"github.com/eboutiques/catalogsync/internal/metrics"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/internal/projection/repository"
	"github.com/eboutiques/catalogsync/internal/reconcile"
	"github.com/eboutiques/catalogsync/internal/tax"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRemote struct {
	readRecords       map[string][]catalog.Record
	searchReadRecords map[string][]catalog.Record
}

func (f *fakeRemote) Search(context.Context, string, []any, int, int) ([]int64, error) {
	return nil, nil
}

func (f *fakeRemote) Read(_ context.Context, model string, _ []int64, _ []string) ([]catalog.Record, error) {
	return f.readRecords[model], nil
}

func (f *fakeRemote) SearchRead(_ context.Context, model string, _ []any, _ []string, _, _ int) ([]catalog.Record, error) {
	return f.searchReadRecords[model], nil
}

func (f *fakeRemote) Write(context.Context, string, []int64, map[string]any) error { return nil }

func (f *fakeRemote) Create(context.Context, string, map[string]any) (int64, error) { return 0, nil }

type stubProber struct{}

func (stubProber) Exists(context.Context, string) bool { return true }

func newTestDetector(t *testing.T, remote *fakeRemote) (*Detector, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&projection.Product{},
		&projection.ProductVariant{},
		&projection.ProductGallery{},
	))

	repo := repository.NewRepository(conn)
	cfg := config.Config{
		RemoteQuantityField: "qty_available",
		DriftBatchSize:      50,
		ImageDriftLimit:     50,
	}
	svc := reconcile.New(reconcile.Params{
		Repo:   repo,
		Taxes:  tax.NewCalculator(remote, zap.NewNop()),
		URLs:   assets.NewURLBuilder("https://erp.example.com"),
		Prober: stubProber{},
		Log:    zap.NewNop(),
		Config: cfg,
	})

	detector := New(Params{
		Client:    remote,
		Repo:      repo,
		Reconcile: svc,
		Metrics:   metrics.New(),
		Log:       zap.NewNop(),
		Config:    cfg,
	})
	return detector, conn
}

func strPtr(s string) *string { return &s }

func TestDetectQuantityCorrectsDivergedProducts(t *testing.T) {
	remote := &fakeRemote{
		readRecords: map[string][]catalog.Record{
			catalog.ModelTemplate: {
				{"id": float64(7), "qty_available": float64(9)},
				{"id": float64(8), "qty_available": float64(2)},
			},
		},
		searchReadRecords: map[string][]catalog.Record{
			catalog.ModelVariant: {
				{"id": float64(31), "qty_available": float64(9)},
			},
		},
	}
	detector, conn := newTestDetector(t, remote)
	ctx := context.Background()

	// Product 7 drifted, product 8 matches the source.
	require.NoError(t, conn.Create(&projection.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7", Qty: 5}).Error)
	require.NoError(t, conn.Create(&projection.Product{RemoteKeyID: strPtr("8"), Name: "Cup", Slug: "cup-8", Qty: 2}).Error)

	var product projection.Product
	require.NoError(t, conn.Where("remote_key_id = ?", "7").First(&product).Error)
	require.NoError(t, conn.Create(&projection.ProductVariant{
		ProductID: product.ID, RemoteKeyID: strPtr("31"), SKU: "MUG-B", Stock: 5,
	}).Error)

	corrected, err := detector.DetectQuantity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	require.NoError(t, conn.Where("remote_key_id = ?", "7").First(&product).Error)
	assert.Equal(t, 9, product.Qty)

	var variant projection.ProductVariant
	require.NoError(t, conn.Where("remote_key_id = ?", "31").First(&variant).Error)
	assert.Equal(t, 9, variant.Stock, "variant stock must cascade with the product")
}

func TestDetectQuantityNoDriftTouchesNothing(t *testing.T) {
	remote := &fakeRemote{
		readRecords: map[string][]catalog.Record{
			catalog.ModelTemplate: {{"id": float64(7), "qty_available": float64(5)}},
		},
	}
	detector, conn := newTestDetector(t, remote)

	require.NoError(t, conn.Create(&projection.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7", Qty: 5}).Error)

	corrected, err := detector.DetectQuantity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
}

func TestDetectImagesRebuildsGalleryForKnownProducts(t *testing.T) {
	remote := &fakeRemote{
		searchReadRecords: map[string][]catalog.Record{
			catalog.ModelTemplate: {
				{"id": float64(7)},
				{"id": float64(99)}, // not projected yet, must be skipped
			},
		},
	}
	detector, conn := newTestDetector(t, remote)

	require.NoError(t, conn.Create(&projection.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7"}).Error)

	rebuilt, err := detector.DetectImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rebuilt)

	var product projection.Product
	require.NoError(t, conn.Where("remote_key_id = ?", "7").First(&product).Error)
	assert.Equal(t, "https://erp.example.com/public/product_image/7/image_1920", product.ThumbImage)

	var galleryCount int64
	conn.Model(&projection.ProductGallery{}).Where("product_id = ?", product.ID).Count(&galleryCount)
	assert.Equal(t, int64(assets.GalleryDepth), galleryCount)
}
