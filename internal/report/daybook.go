package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// TypeSummary is the count and value of one voucher type.
type TypeSummary struct {
	Count int
	Total decimal.Decimal
}

// DayBook lists vouchers in a window with per-type subtotals.
type DayBook struct {
	Start      time.Time
	End        time.Time
	Vouchers   []model.Voucher
	ByType     map[model.VoucherType]TypeSummary
	GrandTotal decimal.Decimal
}

// ComputeDayBook keeps non-deleted vouchers dated in [start, end], newest
// first, and totals them per type.
func ComputeDayBook(vouchers []model.Voucher, start, end time.Time) DayBook {
	db := DayBook{
		Start:      model.Day(start),
		End:        model.Day(end),
		ByType:     make(map[model.VoucherType]TypeSummary, len(model.VoucherTypes)),
		GrandTotal: decimal.Zero,
	}
	for _, t := range model.VoucherTypes {
		db.ByType[t] = TypeSummary{Total: decimal.Zero}
	}

	for _, v := range vouchers {
		if v.Deleted || !within(v.Date, &start, &end) {
			continue
		}
		db.Vouchers = append(db.Vouchers, v)
		s := db.ByType[v.Type]
		s.Count++
		s.Total = s.Total.Add(v.TotalAmount)
		db.ByType[v.Type] = s
		db.GrandTotal = db.GrandTotal.Add(v.TotalAmount)
	}

	sort.SliceStable(db.Vouchers, func(i, j int) bool {
		di, dj := model.Day(db.Vouchers[i].Date), model.Day(db.Vouchers[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return db.Vouchers[i].Number > db.Vouchers[j].Number
	})
	return db
}
