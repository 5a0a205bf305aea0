package reconcile

import (
	"context"
	"fmt"
	"time"

	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/mapper"
	"github.com/eboutiques/catalogsync/internal/tax"
	"github.com/eboutiques/catalogsync/pkg/db"
	"go.uber.org/zap"
)

// reconcileVariants upserts the template's variant set and finishes
// with the obsolescence sweep. Variants without a SKU are skipped, not
// counted as errors; a failed variant never stops its siblings.
func (s *Service) reconcileVariants(ctx context.Context, productID int64, t catalog.Template, variants []catalog.Variant, attrs []catalog.AttributeValue, info tax.Info) VariantOutcome {
	var outcome VariantOutcome
	keep := make([]string, 0, len(variants))

	for _, v := range variants {
		if v.SKU == "" {
			s.log.Debug("skipping variant without SKU",
				zap.Int64("variant_id", v.ID),
				zap.String("display_name", v.DisplayName),
			)
			outcome.Skipped++
			continue
		}
		keep = append(keep, v.SKU)

		if err := s.upsertVariant(ctx, productID, t.ID, v, attrs, info); err != nil {
			s.log.Warn("variant sync failed",
				zap.Int64("variant_id", v.ID),
				zap.String("sku", v.SKU),
				zap.Error(err),
			)
			outcome.Errors++
			continue
		}
		outcome.Synced++
	}

	// Only sweep when something landed this pass: a total read failure
	// must not disable the whole variant set.
	if outcome.Synced > 0 {
		disabled, err := s.repo.DisableVariantsNotIn(ctx, productID, keep)
		if err != nil {
			s.log.Warn("obsolete variant sweep failed",
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
		} else if disabled > 0 {
			s.log.Info("disabled obsolete variants",
				zap.Int64("product_id", productID),
				zap.Int64("count", disabled),
			)
		}
	}

	return outcome
}

func (s *Service) upsertVariant(ctx context.Context, productID, templateID int64, v catalog.Variant, attrs []catalog.AttributeValue, info tax.Info) error {
	details := mapper.VariantDetails(v, attrs)
	image := s.resolveVariantImage(ctx, templateID, v)

	row, err := mapper.VariantRow(v, details, productID, info, image, time.Now().UTC())
	if err != nil {
		return err
	}

	existing, err := s.repo.FindVariantByRemoteKey(ctx, remoteKeyOf(v.ID))
	if err != nil {
		return err
	}

	if existing == nil {
		err := s.repo.CreateVariant(ctx, &row)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		existing, err = s.repo.FindVariantByRemoteKey(ctx, remoteKeyOf(v.ID))
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("variant %d vanished after duplicate-key insert", v.ID)
		}
	}

	if s.skipUnchanged && !variantChanged(existing, &row) {
		return nil
	}

	row.ID = existing.ID
	return s.repo.UpdateVariant(ctx, &row)
}
