package domain

import "context"

// Source model names consumed by the projection.
const (
	ModelTemplate       = "product.template"
	ModelVariant        = "product.product"
	ModelAttributeValue = "product.template.attribute.value"
	ModelTax            = "account.tax"
)

// Client is the remote catalog capability. Predicates use the source
// system's triplet convention, e.g. []any{"write_date", ">=", ts}.
type Client interface {
	Search(ctx context.Context, model string, predicates []any, offset, limit int) ([]int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error)
	SearchRead(ctx context.Context, model string, predicates []any, fields []string, offset, limit int) ([]Record, error)
	Write(ctx context.Context, model string, ids []int64, values map[string]any) error
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
}
