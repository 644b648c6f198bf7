package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// PartyBalance is a party with a non-zero balance. Balance is always the
// magnitude; the list it sits in gives the direction.
type PartyBalance struct {
	AccountID int
	Name      string
	TaxNumber string
	Balance   decimal.Decimal
}

// OutstandingReport lists who owes us and whom we owe.
type OutstandingReport struct {
	Receivables     []PartyBalance
	Payables        []PartyBalance
	TotalReceivable decimal.Decimal
	TotalPayable    decimal.Decimal
	NetPosition     decimal.Decimal
}

// ComputeOutstanding folds every party account's entries into its opening
// balance. A positive balance is a receivable, a negative one a payable,
// and parties that net to zero are omitted.
func ComputeOutstanding(accounts []model.Account, entries []model.LedgerEntry) OutstandingReport {
	balances := make(map[int]decimal.Decimal)
	for _, a := range accounts {
		if a.IsParty {
			balances[a.ID] = a.OpeningBalance
		}
	}
	for _, e := range entries {
		if b, ok := balances[e.AccountID]; ok {
			balances[e.AccountID] = b.Add(e.Net())
		}
	}

	rep := OutstandingReport{
		TotalReceivable: decimal.Zero,
		TotalPayable:    decimal.Zero,
	}
	for _, a := range accounts {
		if !a.IsParty {
			continue
		}
		b := balances[a.ID]
		pb := PartyBalance{AccountID: a.ID, Name: a.Name, TaxNumber: a.TaxNumber, Balance: b.Abs()}
		switch {
		case b.IsPositive():
			rep.Receivables = append(rep.Receivables, pb)
			rep.TotalReceivable = rep.TotalReceivable.Add(pb.Balance)
		case b.IsNegative():
			rep.Payables = append(rep.Payables, pb)
			rep.TotalPayable = rep.TotalPayable.Add(pb.Balance)
		}
	}

	sortParties(rep.Receivables)
	sortParties(rep.Payables)
	rep.NetPosition = rep.TotalReceivable.Sub(rep.TotalPayable)
	return rep
}

func sortParties(rows []PartyBalance) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountID < rows[j].AccountID })
}
