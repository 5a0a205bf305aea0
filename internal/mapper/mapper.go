package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/internal/tax"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// WeightMultiplier converts the source weight unit (kg) into the
// destination's stored unit (g).
const WeightMultiplier = 1000

// Storefront buckets that imported products land in; merchandisers
// recategorize from the admin afterwards.
const (
	importCategoryID    = 12
	importSubCategoryID = 10
)

const shortNameMax = 100

// Slug derives a unique product slug. The timestamp suffix keeps
// re-slugged names from colliding with rows created in earlier passes,
// which also means slugs are not stable across re-syncs.
func Slug(name string, sourceID int64, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", slug.Make(name), sourceID, now.Unix())
}

func round2(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}

// shortName truncates to the column limit in characters, never bytes:
// cutting inside a multibyte rune would produce an invalid sequence
// that strict-mode MySQL rejects on every pass.
func shortName(name string) string {
	runes := []rune(name)
	if len(runes) > shortNameMax {
		return string(runes[:shortNameMax])
	}
	return name
}

func statusOf(active bool) int {
	if active {
		return 1
	}
	return 0
}

// ProductRow builds the full insert payload for a source template.
// The same row doubles as the update payload; the repository restricts
// updates to mutable columns.
func ProductRow(t catalog.Template, info tax.Info, thumbURL string, now time.Time) projection.Product {
	gross := decimal.NewFromFloat(t.ListPrice)
	net, amount := info.Split(gross)
	remoteKey := strconv.FormatInt(t.ID, 10)

	return projection.Product{
		UUID:             fmt.Sprintf("o_imported_%d", t.ID),
		RemoteKeyID:      &remoteKey,
		Name:             t.Name,
		ShortName:        shortName(t.Name),
		Slug:             Slug(t.Name, t.ID, now),
		SKU:              t.DefaultCode,
		Qty:              int(t.Quantity),
		ThumbImage:       thumbURL,
		CategoryID:       importCategoryID,
		SubCategoryID:    importSubCategoryID,
		Weight:           t.Weight * WeightMultiplier,
		SeoTitle:         t.Name,
		SeoDescription:   t.Name,
		Price:            round2(gross),
		PriceWithoutTax:  round2(net),
		TaxRate:          round2(info.RatePercent),
		TaxAmount:        round2(amount),
		TaxInclusive:     true,
		ShortDescription: t.Name,
		LongDescription:  t.Name,
		Status:           statusOf(t.Active),
		ApproveByAdmin:   1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// VariantRow builds the insert/update payload for a source variant.
// Tax decomposition reuses the owning product's Info: variants do not
// carry independent tax assignments.
func VariantRow(v catalog.Variant, details []projection.VariantDetail, productID int64, info tax.Info, imageURL string, now time.Time) (projection.ProductVariant, error) {
	gross := decimal.NewFromFloat(v.ListPrice)
	cost := decimal.NewFromFloat(v.CostPrice)
	net, amount := info.Split(gross)

	percentage := decimal.Zero
	if !gross.IsZero() {
		percentage = cost.Div(gross).Mul(decimal.NewFromInt(100))
	}

	encoded, err := projection.EncodeDetails(details)
	if err != nil {
		return projection.ProductVariant{}, err
	}

	remoteKey := strconv.FormatInt(v.ID, 10)
	return projection.ProductVariant{
		ProductID:       productID,
		RemoteKeyID:     &remoteKey,
		Name:            v.DisplayName,
		SKU:             v.SKU,
		Stock:           int(v.Quantity),
		Price:           round2(gross),
		PriceWithoutTax: round2(net),
		CostPrice:       round2(cost),
		TaxRate:         round2(info.RatePercent),
		TaxAmount:       round2(amount),
		TaxInclusive:    true,
		Percentage:      round2(percentage),
		Weight:          v.Weight * WeightMultiplier,
		Details:         encoded,
		Status:          statusOf(v.Active),
		Image:           imageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// VariantDetails resolves a variant's attribute descriptors: intersect
// the supplied attribute set with the variant's value ids, de-duplicate
// by id and sort color swatches ahead of text values. A variant with no
// resolvable attributes gets a single inactive placeholder named after
// the variant itself.
func VariantDetails(v catalog.Variant, attrs []catalog.AttributeValue) []projection.VariantDetail {
	wanted := make(map[int64]bool, len(v.AttributeValueIDs))
	for _, id := range v.AttributeValueIDs {
		wanted[id] = true
	}

	seen := make(map[int64]bool, len(attrs))
	details := make([]projection.VariantDetail, 0, len(attrs))
	for _, attr := range attrs {
		if !wanted[attr.ID] || seen[attr.ID] {
			continue
		}
		seen[attr.ID] = true

		detail := projection.VariantDetail{
			ID:        attr.ID,
			Name:      attr.Name,
			Kind:      projection.DetailKindText,
			GroupName: attr.GroupName,
			IsActive:  1,
		}
		if attr.HTMLColor != "" {
			detail.Name = attr.HTMLColor
			detail.Kind = projection.DetailKindColor
		}
		details = append(details, detail)
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Kind < details[j].Kind
	})

	if len(details) == 0 {
		name := v.DisplayName
		if name == "" {
			name = "default"
		}
		details = []projection.VariantDetail{{
			ID:        v.ID,
			Name:      name,
			Kind:      projection.DetailKindText,
			GroupName: name,
			IsActive:  0,
		}}
	}

	return details
}
