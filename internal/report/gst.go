package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// GST liability statuses.
const (
	GSTPayable    = "Payable"
	GSTRefundable = "Refundable"
)

// GSTRow is one taxable voucher in the GST report.
type GSTRow struct {
	VoucherNumber string
	Date          time.Time
	PartyName     string
	TaxNumber     string
	Amount        decimal.Decimal // net of tax
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// GSTReport is the tax position for one calendar month.
type GSTReport struct {
	Month     int
	Year      int
	OutputTax decimal.Decimal // collected on sales
	InputTax  decimal.Decimal // paid on purchases
	NetTax    decimal.Decimal
	Status    string
	Sales     []GSTRow
	Purchases []GSTRow
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// ComputeGST selects SALES and PURCHASE vouchers dated within the month
// and sums the tax on their item lines.
func ComputeGST(vouchers []model.Voucher, accounts []model.Account, month, year int) GSTReport {
	byID := indexAccounts(accounts)
	start, end := MonthBounds(month, year)

	rep := GSTReport{
		Month:     month,
		Year:      year,
		OutputTax: decimal.Zero,
		InputTax:  decimal.Zero,
	}
	for _, v := range vouchers {
		if v.Deleted || !within(v.Date, &start, &end) {
			continue
		}
		if v.Type != model.VoucherTypeSales && v.Type != model.VoucherTypePurchase {
			continue
		}

		tax := v.TaxTotal()
		party := byID[v.PartyID]
		row := GSTRow{
			VoucherNumber: v.Number,
			Date:          model.Day(v.Date),
			PartyName:     party.Name,
			TaxNumber:     party.TaxNumber,
			Amount:        v.TotalAmount.Sub(tax),
			Tax:           tax,
			Total:         v.TotalAmount,
		}
		if v.Type == model.VoucherTypeSales {
			rep.OutputTax = rep.OutputTax.Add(tax)
			rep.Sales = append(rep.Sales, row)
		} else {
			rep.InputTax = rep.InputTax.Add(tax)
			rep.Purchases = append(rep.Purchases, row)
		}
	}

	sortGSTRows(rep.Sales)
	sortGSTRows(rep.Purchases)
	rep.NetTax = rep.OutputTax.Sub(rep.InputTax)
	rep.Status = GSTRefundable
	if rep.NetTax.IsPositive() {
		rep.Status = GSTPayable
	}
	return rep
}

func sortGSTRows(rows []GSTRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].VoucherNumber < rows[j].VoucherNumber
	})
}
