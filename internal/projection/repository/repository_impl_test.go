package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/pkg/db"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Product{},
		&domain.ProductVariant{},
		&domain.ProductGallery{},
	))
	return conn
}

func strPtr(s string) *string { return &s }

func TestFindProductByRemoteKeyMissReturnsNil(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	p, err := repo.FindProductByRemoteKey(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreateProductDuplicateRemoteKeyIsDetectable(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	first := &domain.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7-1"}
	require.NoError(t, repo.CreateProduct(ctx, first))

	second := &domain.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7-2"}
	err := repo.CreateProduct(ctx, second)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err), "expected duplicate-key error, got %v", err)
}

func TestUpdateProductWritesMutableColumnsOnly(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	p := &domain.Product{RemoteKeyID: strPtr("7"), Name: "Mug", Slug: "mug-7-1", Qty: 1, Price: 10}
	require.NoError(t, repo.CreateProduct(ctx, p))

	updated := *p
	updated.Name = "Mug v2"
	updated.Qty = 5
	updated.Slug = "should-not-change"
	require.NoError(t, repo.UpdateProduct(ctx, &updated))

	got, err := repo.FindProductByRemoteKey(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mug v2", got.Name)
	assert.Equal(t, 5, got.Qty)
	assert.Equal(t, "mug-7-1", got.Slug)
}

func TestUpdateProductVanishedRowReturnsNotFound(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	err := repo.UpdateProduct(context.Background(), &domain.Product{ID: 42, Name: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncedProductsSkipsManualRowsAndPages(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.CreateProduct(ctx, &domain.Product{
			RemoteKeyID: strPtr(fmt.Sprintf("%d", i)),
			Name:        fmt.Sprintf("p%d", i),
			Slug:        fmt.Sprintf("p-%d", i),
		}))
	}
	// Manually created storefront row without a remote key.
	require.NoError(t, repo.CreateProduct(ctx, &domain.Product{Name: "manual", Slug: "manual"}))

	page1, err := repo.SyncedProducts(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := repo.SyncedProducts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "3", *page2[0].RemoteKeyID)
}

func TestDisableVariantsNotInKeepsCurrentSKUs(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	for i, sku := range []string{"A", "B", "C"} {
		require.NoError(t, repo.CreateVariant(ctx, &domain.ProductVariant{
			ProductID:   1,
			RemoteKeyID: strPtr(fmt.Sprintf("%d", i+1)),
			SKU:         sku,
			Status:      1,
		}))
	}

	disabled, err := repo.DisableVariantsNotIn(ctx, 1, []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), disabled)

	c, err := repo.FindVariantByRemoteKey(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Status)

	a, err := repo.FindVariantByRemoteKey(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 1, a.Status)
}

func TestDisableVariantsNotInScopedToProduct(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateVariant(ctx, &domain.ProductVariant{
		ProductID: 1, RemoteKeyID: strPtr("1"), SKU: "A", Status: 1,
	}))
	require.NoError(t, repo.CreateVariant(ctx, &domain.ProductVariant{
		ProductID: 2, RemoteKeyID: strPtr("2"), SKU: "Z", Status: 1,
	}))

	_, err := repo.DisableVariantsNotIn(ctx, 1, []string{"A"})
	require.NoError(t, err)

	other, err := repo.FindVariantByRemoteKey(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, 1, other.Status)
}

func TestDeleteSyncedGalleryPreservesManualRows(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	rows := []domain.ProductGallery{
		{ProductID: 1, Image: "https://erp.example.com/public/product_image/7/image_1", Status: 1},
		{ProductID: 1, Image: "storage/products/old-import.jpg", Status: 1},
		{ProductID: 1, Image: "https://cdn.other.example/manual.jpg", Status: 1},
		{ProductID: 2, Image: "https://erp.example.com/public/product_image/8/image_1", Status: 1},
	}
	for i := range rows {
		require.NoError(t, repo.InsertGalleryImage(ctx, &rows[i]))
	}

	patterns := []string{"https://erp.example.com/%", "storage/products/%"}
	require.NoError(t, repo.DeleteSyncedGallery(ctx, 1, patterns))

	var remaining []domain.ProductGallery
	require.NoError(t, conn.Order("id").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, "https://cdn.other.example/manual.jpg", remaining[0].Image)
	assert.Equal(t, int64(2), remaining[1].ProductID)
}

func TestUpdateVariantQuantityMatchesRemoteKeyWithinProduct(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateVariant(ctx, &domain.ProductVariant{
		ProductID: 1, RemoteKeyID: strPtr("31"), SKU: "A", Stock: 2,
	}))

	require.NoError(t, repo.UpdateVariantQuantity(ctx, 1, "31", 9))

	v, err := repo.FindVariantByRemoteKey(ctx, "31")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 9, v.Stock)
}
