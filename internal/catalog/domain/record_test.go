package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStrTreatsFalseAsNull(t *testing.T) {
	rec := Record{"default_code": false}
	assert.Equal(t, "", rec.Str("default_code"))
}

func TestRecordRelationDecodesTuple(t *testing.T) {
	rec := Record{"product_tmpl_id": []any{float64(12), "Ceramic Mug"}}
	id, label := rec.Relation("product_tmpl_id")
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "Ceramic Mug", label)
}

func TestRecordRelationFalseYieldsZero(t *testing.T) {
	rec := Record{"product_tmpl_id": false}
	id, label := rec.Relation("product_tmpl_id")
	assert.Equal(t, int64(0), id)
	assert.Equal(t, "", label)
}

func TestRecordIDsDecodesArray(t *testing.T) {
	rec := Record{"taxes_id": []any{float64(1), float64(3)}}
	assert.Equal(t, []int64{1, 3}, rec.IDs("taxes_id"))
}

func TestRecordTimeParsesRemoteLayout(t *testing.T) {
	rec := Record{"write_date": "2026-03-01 08:30:00"}
	got := rec.Time("write_date")
	assert.Equal(t, time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), got)
}

func TestTemplateFromRecordDecodesFullRow(t *testing.T) {
	rec := Record{
		"id":             float64(7),
		"name":           "Ceramic Mug",
		"default_code":   "MUG-001",
		"list_price":     float64(12.5),
		"standard_price": float64(4),
		"qty_available":  float64(3),
		"weight":         float64(0.3),
		"taxes_id":       []any{float64(1)},
		"active":         true,
		"image_1920":     "iVBOR...",
		"write_date":     "2026-03-01 08:30:00",
	}

	tpl, err := TemplateFromRecord(rec, "qty_available")
	require.NoError(t, err)
	assert.Equal(t, int64(7), tpl.ID)
	assert.Equal(t, "MUG-001", tpl.DefaultCode)
	assert.Equal(t, 3.0, tpl.Quantity)
	assert.True(t, tpl.HasImage)
	assert.Equal(t, []int64{1}, tpl.TaxIDs)
}

func TestTemplateFromRecordRejectsMissingIdentity(t *testing.T) {
	_, err := TemplateFromRecord(Record{"name": "x"}, "qty_available")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = TemplateFromRecord(Record{"id": float64(1)}, "qty_available")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestVariantFromRecordCleansLiteralFalseSKU(t *testing.T) {
	rec := Record{
		"id":              float64(31),
		"default_code":    "False",
		"product_tmpl_id": []any{float64(7), "Ceramic Mug"},
	}

	v, err := VariantFromRecord(rec, "qty_available")
	require.NoError(t, err)
	assert.Equal(t, "", v.SKU)
	assert.Equal(t, int64(7), v.TemplateID)
}

func TestAttributeValueFromRecordUsesLineLabelAsGroup(t *testing.T) {
	rec := Record{
		"id":                float64(2),
		"name":              "Blue",
		"html_color":        "#0000ff",
		"attribute_line_id": []any{float64(9), "Color"},
	}

	attr, err := AttributeValueFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", attr.HTMLColor)
	assert.Equal(t, "Color", attr.GroupName)
}
