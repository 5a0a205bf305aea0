package drift

import (
	"context"
	"fmt"
	"strconv"
	"time"

	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/config"
	"github.com/eboutiques/catalogsync/internal/metrics"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/internal/reconcile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Client    catalog.Client
	Repo      projection.Repository
	Reconcile *reconcile.Service
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	Config    config.Config
}

// Detector repairs divergence between the destination store and the
// source of truth outside the regular reconciliation path: quantities
// change without touching write_date, and assets are republished under
// stable URLs.
type Detector struct {
	client    catalog.Client
	repo      projection.Repository
	reconcile *reconcile.Service
	metrics   *metrics.Metrics
	log       *zap.Logger

	qtyField    string
	batchSize   int
	imageWindow time.Duration
	imageLimit  int
}

func New(p Params) *Detector {
	return &Detector{
		client:      p.Client,
		repo:        p.Repo,
		reconcile:   p.Reconcile,
		metrics:     p.Metrics,
		log:         p.Log.Named("drift"),
		qtyField:    p.Config.RemoteQuantityField,
		batchSize:   p.Config.DriftBatchSize,
		imageWindow: p.Config.ImageDriftWindow,
		imageLimit:  p.Config.ImageDriftLimit,
	}
}

// DetectQuantity walks every synced product in batches, compares the
// stored quantity against the source field and overwrites local rows
// that diverged. Variants cascade with their product. Returns the
// number of corrected products.
func (d *Detector) DetectQuantity(ctx context.Context) (int, error) {
	corrected := 0

	for offset := 0; ; offset += d.batchSize {
		products, err := d.repo.SyncedProducts(ctx, offset, d.batchSize)
		if err != nil {
			return corrected, fmt.Errorf("page synced products at %d: %w", offset, err)
		}
		if len(products) == 0 {
			break
		}

		byRemoteID := make(map[int64]*projection.Product, len(products))
		ids := make([]int64, 0, len(products))
		for i := range products {
			p := &products[i]
			if p.RemoteKeyID == nil {
				continue
			}
			id, err := strconv.ParseInt(*p.RemoteKeyID, 10, 64)
			if err != nil {
				d.log.Warn("unparseable remote key", zap.String("remote_key", *p.RemoteKeyID))
				continue
			}
			byRemoteID[id] = p
			ids = append(ids, id)
		}

		records, err := d.client.Read(ctx, catalog.ModelTemplate, ids, []string{"id", d.qtyField})
		if err != nil {
			return corrected, fmt.Errorf("read source quantities: %w", err)
		}

		for _, rec := range records {
			id := rec.Int64("id")
			p, ok := byRemoteID[id]
			if !ok {
				continue
			}
			remoteQty := int(rec.Float(d.qtyField))
			if p.Qty == remoteQty {
				continue
			}

			if err := d.repo.UpdateProductQuantity(ctx, p.ID, remoteQty); err != nil {
				d.log.Warn("quantity correction failed",
					zap.Int64("product_id", p.ID), zap.Error(err))
				d.metrics.AddItemErrors("product", 1)
				continue
			}
			d.log.Info("corrected quantity drift",
				zap.Int64("product_id", p.ID),
				zap.Int("stored", p.Qty),
				zap.Int("source", remoteQty),
			)
			d.metrics.IncDriftCorrection("quantity")
			corrected++

			d.cascadeVariantQuantities(ctx, p.ID, id)
		}

		if len(products) < d.batchSize {
			break
		}
	}

	return corrected, nil
}

// cascadeVariantQuantities refreshes the variant stocks of a product
// whose template-level quantity drifted. Failures are logged per
// variant; the product-level correction already landed.
func (d *Detector) cascadeVariantQuantities(ctx context.Context, productID, templateID int64) {
	records, err := d.client.SearchRead(ctx, catalog.ModelVariant,
		[]any{"product_tmpl_id", "=", templateID},
		[]string{"id", d.qtyField}, 0, 0)
	if err != nil {
		d.log.Warn("variant quantity read failed",
			zap.Int64("template_id", templateID), zap.Error(err))
		return
	}

	for _, rec := range records {
		variantID := rec.Int64("id")
		qty := int(rec.Float(d.qtyField))
		err := d.repo.UpdateVariantQuantity(ctx, productID, strconv.FormatInt(variantID, 10), qty)
		if err != nil {
			d.log.Warn("variant quantity correction failed",
				zap.Int64("variant_id", variantID), zap.Error(err))
			d.metrics.AddItemErrors("variant", 1)
		}
	}
}

// DetectImages rebuilds galleries for templates written recently at the
// source. Asset republications do not change any field the regular pass
// diffs on, so recency of write_date is the only usable signal. Returns
// the number of products rebuilt.
func (d *Detector) DetectImages(ctx context.Context) (int, error) {
	since := time.Now().UTC().Add(-d.imageWindow)
	records, err := d.client.SearchRead(ctx, catalog.ModelTemplate,
		[]any{"write_date", ">=", since.Format("2006-01-02 15:04:05")},
		[]string{"id"}, 0, d.imageLimit)
	if err != nil {
		return 0, fmt.Errorf("search recently written templates: %w", err)
	}

	rebuilt := 0
	for _, rec := range records {
		templateID := rec.Int64("id")
		if templateID == 0 {
			continue
		}

		product, err := d.repo.FindProductByRemoteKey(ctx, strconv.FormatInt(templateID, 10))
		if err != nil {
			return rebuilt, err
		}
		if product == nil {
			// Not projected yet; the reconciliation pass owns first contact.
			continue
		}

		if _, err := d.reconcile.RebuildGallery(ctx, templateID, product.ID); err != nil {
			d.log.Warn("gallery drift rebuild failed",
				zap.Int64("product_id", product.ID), zap.Error(err))
			d.metrics.AddItemErrors("gallery", 1)
			continue
		}
		d.metrics.IncDriftCorrection("image")
		rebuilt++
	}

	return rebuilt, nil
}
