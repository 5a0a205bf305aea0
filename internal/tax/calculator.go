package tax

import (
	"context"

	"github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Info is the tax decomposition for a tax-inclusive price.
type Info struct {
	HasTax      bool
	RatePercent decimal.Decimal
	Amount      decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ZeroInfo is the no-tax decomposition.
func ZeroInfo() Info {
	return Info{RatePercent: decimal.Zero, Amount: decimal.Zero}
}

// Split decomposes a tax-inclusive price into its net part and tax
// amount: net = gross / (1 + rate/100), amount = gross - net.
func (i Info) Split(priceWithTax decimal.Decimal) (net, amount decimal.Decimal) {
	if !i.HasTax {
		return priceWithTax, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(i.RatePercent.Div(hundred))
	net = priceWithTax.DivRound(divisor, 8)
	return net, priceWithTax.Sub(net)
}

// Calculator derives tax decompositions from remote tax definitions.
type Calculator struct {
	client domain.Client
	log    *zap.Logger
}

func NewCalculator(client domain.Client, log *zap.Logger) *Calculator {
	return &Calculator{client: client, log: log.Named("tax")}
}

// Compute reads the referenced taxes and sums the percent-type rates.
// Fixed-amount taxes do not participate in the decomposition. A failed
// remote read degrades to the zero-tax result instead of failing the
// product it belongs to.
func (c *Calculator) Compute(ctx context.Context, taxIDs []int64, priceWithTax decimal.Decimal) Info {
	if len(taxIDs) == 0 {
		return ZeroInfo()
	}

	records, err := c.client.Read(ctx, domain.ModelTax, taxIDs, domain.TaxFields)
	if err != nil {
		c.log.Warn("tax lookup failed, treating product as untaxed",
			zap.Int64s("tax_ids", taxIDs),
			zap.Error(err),
		)
		return ZeroInfo()
	}

	rate := decimal.Zero
	for _, record := range records {
		t, err := domain.TaxFromRecord(record)
		if err != nil {
			c.log.Warn("skipping malformed tax record", zap.Error(err))
			continue
		}
		if t.AmountType == domain.TaxAmountTypePercent {
			rate = rate.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	if !rate.IsPositive() {
		return ZeroInfo()
	}

	info := Info{HasTax: true, RatePercent: rate}
	_, info.Amount = info.Split(priceWithTax)
	return info
}
