package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// TrialBalanceRow is one account's debit and credit totals.
type TrialBalanceRow struct {
	AccountID   int
	AccountName string
	AccountType model.AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// TrialBalance is a snapshot of every participating account as of a date.
type TrialBalance struct {
	AsOf        time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balanced    bool
}

// ComputeTrialBalance sums entries dated on or before asOf per account and
// folds each non-zero opening balance into the debit side for assets and
// expenses, the credit side otherwise. Accounts with no entries and a zero
// opening balance are left out. Entries against unknown accounts still
// count toward the totals.
func ComputeTrialBalance(accounts []model.Account, entries []model.LedgerEntry, asOf time.Time) TrialBalance {
	byID := indexAccounts(accounts)
	rows := make(map[int]*TrialBalanceRow)

	row := func(accountID int) *TrialBalanceRow {
		if r, ok := rows[accountID]; ok {
			return r
		}
		a := byID[accountID]
		r := &TrialBalanceRow{
			AccountID:   accountID,
			AccountName: a.Name,
			AccountType: a.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		rows[accountID] = r
		return r
	}

	for _, e := range entries {
		if !onOrBefore(e.Date, asOf) {
			continue
		}
		r := row(e.AccountID)
		r.Debit = r.Debit.Add(e.Debit)
		r.Credit = r.Credit.Add(e.Credit)
	}

	for _, a := range accounts {
		if a.OpeningBalance.IsZero() {
			continue
		}
		r := row(a.ID)
		if a.Type.DebitNormal() {
			r.Debit = r.Debit.Add(a.OpeningBalance)
		} else {
			r.Credit = r.Credit.Add(a.OpeningBalance)
		}
	}

	tb := TrialBalance{
		AsOf:        model.Day(asOf),
		Rows:        make([]TrialBalanceRow, 0, len(rows)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, r := range rows {
		tb.Rows = append(tb.Rows, *r)
		tb.TotalDebit = tb.TotalDebit.Add(r.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(r.Credit)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].AccountID < tb.Rows[j].AccountID })
	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThan(Epsilon)
	return tb
}
