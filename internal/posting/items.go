package posting

import (
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ItemInput is the user-entered part of a voucher line.
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	TaxRate     decimal.Decimal // percent
}

// Totals are the voucher-level sums of its item lines.
type Totals struct {
	Base  decimal.Decimal // sum of line amounts, net of tax
	Tax   decimal.Decimal
	Total decimal.Decimal // Base + Tax
}

// DeriveItems computes amount, tax and total for each line and the voucher
// totals. Nothing is rounded here; rounding happens only when values are
// displayed.
func DeriveItems(inputs []ItemInput) ([]model.VoucherItem, Totals) {
	totals := Totals{Base: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	if len(inputs) == 0 {
		return nil, totals
	}

	items := make([]model.VoucherItem, len(inputs))
	for i, in := range inputs {
		amount := in.Quantity.Mul(in.Rate)
		tax := amount.Mul(in.TaxRate).Div(hundred)
		total := amount.Add(tax)

		items[i] = model.VoucherItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      amount,
			TaxRate:     in.TaxRate,
			TaxAmount:   tax,
			Total:       total,
		}

		totals.Base = totals.Base.Add(amount)
		totals.Tax = totals.Tax.Add(tax)
		totals.Total = totals.Total.Add(total)
	}
	return items, totals
}
