package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Product is the projected storefront row. RemoteKeyID carries the
// stringified source template id and is nil only for rows created
// manually through the storefront admin.
type Product struct {
	ID               int64   `gorm:"primaryKey"`
	UUID             string  `gorm:"type:varchar(255)"`
	RemoteKeyID      *string `gorm:"column:remote_key_id;type:varchar(101);uniqueIndex"`
	Name             string  `gorm:"type:text;not null"`
	ShortName        string  `gorm:"column:short_name;type:varchar(100)"`
	Slug             string  `gorm:"type:varchar(255);uniqueIndex"`
	SKU              string  `gorm:"column:sku;type:varchar(255)"`
	Qty              int     `gorm:"not null;default:0"`
	ThumbImage       string  `gorm:"column:thumb_image;type:text"`
	CategoryID       int64   `gorm:"column:category_id"`
	SubCategoryID    int64   `gorm:"column:sub_category_id"`
	ChildCategoryID  int64   `gorm:"column:child_category_id"`
	Weight           float64 `gorm:"not null;default:0"`
	SeoTitle         string  `gorm:"column:seo_title;type:text"`
	SeoDescription   string  `gorm:"column:seo_description;type:text"`
	Price            float64 `gorm:"not null;default:0"`
	PriceWithoutTax  float64 `gorm:"column:price_without_tax;not null;default:0"`
	TaxRate          float64 `gorm:"column:tax_rate;not null;default:0"`
	TaxAmount        float64 `gorm:"column:tax_amount;not null;default:0"`
	TaxInclusive     bool    `gorm:"column:tax_inclusive;not null;default:true"`
	ShortDescription string  `gorm:"column:short_description;type:text"`
	LongDescription  string  `gorm:"column:long_description;type:text"`
	Status           int     `gorm:"not null;default:1"`
	ApproveByAdmin   int     `gorm:"column:approve_by_admin;not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Product) TableName() string { return "products" }

// ProductVariant is a projected variant row. Obsolete variants are
// disabled, never deleted: order lines keep referencing them.
type ProductVariant struct {
	ID              int64          `gorm:"primaryKey"`
	ProductID       int64          `gorm:"column:product_id;not null;index"`
	RemoteKeyID     *string        `gorm:"column:remote_key_id;type:varchar(101);uniqueIndex"`
	Name            string         `gorm:"type:text"`
	SKU             string         `gorm:"column:sku;type:varchar(255);index"`
	Stock           int            `gorm:"not null;default:0"`
	Price           float64        `gorm:"not null;default:0"`
	PriceWithoutTax float64        `gorm:"column:price_without_tax;not null;default:0"`
	CostPrice       float64        `gorm:"column:cost_price;not null;default:0"`
	TaxRate         float64        `gorm:"column:tax_rate;not null;default:0"`
	TaxAmount       float64        `gorm:"column:tax_amount;not null;default:0"`
	TaxInclusive    bool           `gorm:"column:tax_inclusive;not null;default:true"`
	Percentage      float64        `gorm:"not null;default:0"`
	Weight          float64        `gorm:"not null;default:0"`
	Details         datatypes.JSON `gorm:"type:json"`
	Status          int            `gorm:"not null;default:1"`
	Image           string         `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ProductVariant) TableName() string { return "product_variants" }

// ProductGallery is one gallery slot. Rows whose image URL matches the
// sync-owned asset patterns are rebuilt wholesale on every pass.
type ProductGallery struct {
	ID        int64  `gorm:"primaryKey"`
	ProductID int64  `gorm:"column:product_id;not null;index"`
	Image     string `gorm:"type:text;not null"`
	Status    int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductGallery) TableName() string { return "product_galleries" }

// Detail kinds, ordered: color swatches render before text options.
const (
	DetailKindColor = "Color"
	DetailKindText  = "Text"
)

// VariantDetail is one attribute descriptor in a variant's details
// JSON blob. Field names are part of the storefront contract.
type VariantDetail struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"type"`
	GroupName string `json:"typeName"`
	IsActive  int    `json:"isActive"`
}

// EncodeDetails serializes attribute descriptors for the details column.
func EncodeDetails(details []VariantDetail) (datatypes.JSON, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeDetails parses a stored details column.
func DecodeDetails(raw datatypes.JSON) ([]VariantDetail, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var details []VariantDetail
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, err
	}
	return details, nil
}
