package scheduler

import (
	"context"
	"fmt"
	"time"

	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"go.uber.org/zap"
)

const remoteTimeLayout = "2006-01-02 15:04:05"

// ReconcileJob runs one watermark-gated reconciliation pass: page
// through templates written since the stored watermark, project each
// one, and advance the watermark to the pass start. Per-item failures
// are isolated and counted; only a pass-level failure (a fetch or
// watermark error) stops the pass and pins the watermark so the next
// pass retries the same window.
func (s *Scheduler) ReconcileJob(ctx context.Context) error {
	since, err := s.watermark.Load()
	if err != nil {
		return err
	}
	passStart := time.Now().UTC()

	synced, failed := 0, 0
	for offset := 0; ; offset += s.cfg.BatchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		records, err := s.client.SearchRead(ctx, catalog.ModelTemplate,
			[]any{"write_date", ">=", since.UTC().Format(remoteTimeLayout)},
			catalog.TemplateFields(s.qtyField), offset, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("search changed templates: %w", err)
		}
		if len(records) == 0 {
			break
		}

		templates := make([]catalog.Template, 0, len(records))
		for _, rec := range records {
			t, err := catalog.TemplateFromRecord(rec, s.qtyField)
			if err != nil {
				s.log.Warn("skipping malformed template record",
					zap.Int64("source_id", rec.Int64("id")), zap.Error(err))
				s.metrics.AddItemErrors("product", 1)
				failed++
				continue
			}
			templates = append(templates, t)
		}

		variantsByTemplate, err := s.fetchVariants(ctx, templates)
		if err != nil {
			return fmt.Errorf("read variants: %w", err)
		}
		attrs, err := s.fetchAttributeValues(ctx, variantsByTemplate)
		if err != nil {
			return fmt.Errorf("read attribute values: %w", err)
		}

		for _, t := range templates {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			result, err := s.reconcile.ReconcileProduct(ctx, t, variantsByTemplate[t.ID], attrs)
			if err != nil {
				s.log.Warn("product reconciliation failed",
					zap.Int64("source_id", t.ID), zap.Error(err))
				s.metrics.AddItemErrors("product", 1)
				failed++
				continue
			}
			synced++
			s.metrics.AddItemsSynced("product", 1)
			s.metrics.AddItemsSynced("variant", result.Variants.Synced)
			s.metrics.AddItemErrors("variant", result.Variants.Errors)
		}

		if len(records) < s.cfg.BatchSize {
			break
		}
	}

	// Failed items stay behind the new watermark and will only come
	// back when edited again; the drift detectors cover the gap in the
	// meantime. Pinning the watermark on item failures would wedge the
	// pass behind a permanently broken record.
	if err := s.watermark.Save(passStart); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}

	if synced > 0 || failed > 0 {
		s.log.Info("reconciliation pass finished",
			zap.Time("since", since),
			zap.Int("synced", synced),
			zap.Int("failed", failed),
		)
	}
	return nil
}

// fetchVariants reads the full variant sets for a batch of templates
// in one remote call and groups them by owning template.
func (s *Scheduler) fetchVariants(ctx context.Context, templates []catalog.Template) (map[int64][]catalog.Variant, error) {
	if len(templates) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}

	records, err := s.client.SearchRead(ctx, catalog.ModelVariant,
		[]any{"product_tmpl_id", "in", ids},
		catalog.VariantFields(s.qtyField), 0, 0)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]catalog.Variant, len(templates))
	for _, rec := range records {
		v, err := catalog.VariantFromRecord(rec, s.qtyField)
		if err != nil {
			s.log.Warn("skipping malformed variant record",
				zap.Int64("source_id", rec.Int64("id")), zap.Error(err))
			s.metrics.AddItemErrors("variant", 1)
			continue
		}
		grouped[v.TemplateID] = append(grouped[v.TemplateID], v)
	}
	return grouped, nil
}

// fetchAttributeValues resolves every attribute value referenced by the
// batch's variants in one remote read.
func (s *Scheduler) fetchAttributeValues(ctx context.Context, variantsByTemplate map[int64][]catalog.Variant) ([]catalog.AttributeValue, error) {
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, variants := range variantsByTemplate {
		for _, v := range variants {
			for _, id := range v.AttributeValueIDs {
				if seen[id] {
					continue
				}
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := s.client.Read(ctx, catalog.ModelAttributeValue, ids, catalog.AttributeValueFields)
	if err != nil {
		return nil, err
	}

	attrs := make([]catalog.AttributeValue, 0, len(records))
	for _, rec := range records {
		attr, err := catalog.AttributeValueFromRecord(rec)
		if err != nil {
			s.log.Warn("skipping malformed attribute value",
				zap.Int64("source_id", rec.Int64("id")), zap.Error(err))
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
