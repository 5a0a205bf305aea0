package domain

import (
	"errors"
	"time"
)

var ErrInvalidRecord = errors.New("invalid_record")

// Template is a template-level catalog entity.
type Template struct {
	ID          int64
	Name        string
	DefaultCode string
	ListPrice   float64
	CostPrice   float64
	Quantity    float64
	Weight      float64
	TaxIDs      []int64
	Active      bool
	HasImage    bool
	WriteDate   time.Time
}

// Variant belongs to exactly one Template.
type Variant struct {
	ID                int64
	TemplateID        int64
	DisplayName       string
	SKU               string
	ListPrice         float64
	CostPrice         float64
	Quantity          float64
	Weight            float64
	AttributeValueIDs []int64
	Active            bool
	HasImage          bool
}

// AttributeValue describes one variant axis value. A non-empty
// HTMLColor marks a color swatch, otherwise the value is textual.
type AttributeValue struct {
	ID        int64
	Name      string
	HTMLColor string
	GroupName string
}

// Tax is a remote tax definition referenced from templates.
type Tax struct {
	ID         int64
	Name       string
	Amount     float64
	AmountType string
}

const TaxAmountTypePercent = "percent"

// TemplateFields returns the read field set for templates; the
// quantity field is configurable (see config.RemoteQuantityField).
func TemplateFields(quantityField string) []string {
	return []string{
		"id", "name", "default_code", "list_price", "standard_price",
		quantityField, "weight", "taxes_id", "active", "image_1920", "write_date",
	}
}

func VariantFields(quantityField string) []string {
	return []string{
		"id", "display_name", "default_code", "lst_price", "standard_price",
		quantityField, "weight", "product_template_variant_value_ids",
		"product_tmpl_id", "active", "image_1920",
	}
}

var AttributeValueFields = []string{"id", "name", "html_color", "attribute_line_id"}

var TaxFields = []string{"id", "name", "amount", "amount_type"}

// TemplateFromRecord validates and decodes a raw template row.
func TemplateFromRecord(r Record, quantityField string) (Template, error) {
	t := Template{
		ID:          r.Int64("id"),
		Name:        r.Str("name"),
		DefaultCode: cleanCode(r.Str("default_code")),
		ListPrice:   r.Float("list_price"),
		CostPrice:   r.Float("standard_price"),
		Quantity:    r.Float(quantityField),
		Weight:      r.Float("weight"),
		TaxIDs:      r.IDs("taxes_id"),
		Active:      r.Bool("active", true),
		HasImage:    r.Bool("image_1920", false) || r.Str("image_1920") != "",
		WriteDate:   r.Time("write_date"),
	}
	if t.ID == 0 || t.Name == "" {
		return Template{}, ErrInvalidRecord
	}
	return t, nil
}

// VariantFromRecord validates and decodes a raw variant row.
func VariantFromRecord(r Record, quantityField string) (Variant, error) {
	templateID, _ := r.Relation("product_tmpl_id")
	v := Variant{
		ID:                r.Int64("id"),
		TemplateID:        templateID,
		DisplayName:       r.Str("display_name"),
		SKU:               cleanCode(r.Str("default_code")),
		ListPrice:         r.Float("lst_price"),
		CostPrice:         r.Float("standard_price"),
		Quantity:          r.Float(quantityField),
		Weight:            r.Float("weight"),
		AttributeValueIDs: r.IDs("product_template_variant_value_ids"),
		Active:            r.Bool("active", true),
		HasImage:          r.Bool("image_1920", false) || r.Str("image_1920") != "",
	}
	if v.ID == 0 {
		return Variant{}, ErrInvalidRecord
	}
	return v, nil
}

func AttributeValueFromRecord(r Record) (AttributeValue, error) {
	_, groupName := r.Relation("attribute_line_id")
	a := AttributeValue{
		ID:        r.Int64("id"),
		Name:      r.Str("name"),
		HTMLColor: r.Str("html_color"),
		GroupName: groupName,
	}
	if a.ID == 0 {
		return AttributeValue{}, ErrInvalidRecord
	}
	return a, nil
}

func TaxFromRecord(r Record) (Tax, error) {
	t := Tax{
		ID:         r.Int64("id"),
		Name:       r.Str("name"),
		Amount:     r.Float("amount"),
		AmountType: r.Str("amount_type"),
	}
	if t.ID == 0 {
		return Tax{}, ErrInvalidRecord
	}
	return t, nil
}

// cleanCode normalizes the remote SKU field: null arrives as false and
// some records carry the literal string "False".
func cleanCode(raw string) string {
	if raw == "False" {
		return ""
	}
	return raw
}
