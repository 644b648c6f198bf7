// Package report computes read-side views over accounts and ledger
// entries: trial balance, profit and loss, GST liability, party
// outstanding, per-account ledgers and the day book.
//
// Every function is pure. Callers pass entries that already exclude
// soft-deleted vouchers; date filters are inclusive on both ends and
// compare calendar days only.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// Epsilon is the tolerance used for the trial balance check.
var Epsilon = decimal.New(1, -2)

func onOrBefore(d, limit time.Time) bool {
	return !model.Day(d).After(model.Day(limit))
}

func within(d time.Time, start, end *time.Time) bool {
	return model.InRange(d, start, end)
}

func indexAccounts(accounts []model.Account) map[int]model.Account {
	byID := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return byID
}

// sortEntries orders entries by date, then creation order.
func sortEntries(entries []model.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := model.Day(entries[i].Date), model.Day(entries[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return entries[i].Seq < entries[j].Seq
	})
}
