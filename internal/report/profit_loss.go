package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// AmountRow is an account with a single accumulated amount.
type AmountRow struct {
	AccountID   int
	AccountName string
	Amount      decimal.Decimal
}

// ProfitAndLoss summarises income and expenses over a window.
type ProfitAndLoss struct {
	Start         time.Time
	End           time.Time
	Income        []AmountRow
	Expenses      []AmountRow
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal // negative means a loss
}

// ComputeProfitAndLoss accumulates credit minus debit for income accounts
// and debit minus credit for expense accounts over [start, end]. Only
// accounts with a strictly positive result are listed.
func ComputeProfitAndLoss(accounts []model.Account, entries []model.LedgerEntry, start, end time.Time) ProfitAndLoss {
	byID := indexAccounts(accounts)
	amounts := make(map[int]decimal.Decimal)

	for _, e := range entries {
		if !within(e.Date, &start, &end) {
			continue
		}
		a, ok := byID[e.AccountID]
		if !ok {
			continue
		}
		switch a.Type {
		case model.AccountTypeIncome:
			amounts[a.ID] = amounts[a.ID].Add(e.Credit.Sub(e.Debit))
		case model.AccountTypeExpense:
			amounts[a.ID] = amounts[a.ID].Add(e.Debit.Sub(e.Credit))
		}
	}

	pl := ProfitAndLoss{
		Start:         model.Day(start),
		End:           model.Day(end),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for accountID, amount := range amounts {
		if !amount.IsPositive() {
			continue
		}
		a := byID[accountID]
		r := AmountRow{AccountID: a.ID, AccountName: a.Name, Amount: amount}
		if a.Type == model.AccountTypeIncome {
			pl.Income = append(pl.Income, r)
			pl.TotalIncome = pl.TotalIncome.Add(amount)
		} else {
			pl.Expenses = append(pl.Expenses, r)
			pl.TotalExpenses = pl.TotalExpenses.Add(amount)
		}
	}
	sortRows(pl.Income)
	sortRows(pl.Expenses)
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpenses)
	return pl
}

func sortRows(rows []AmountRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountID < rows[j].AccountID })
}
