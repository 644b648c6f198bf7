package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// LedgerLine is an entry annotated with the balance right after it.
type LedgerLine struct {
	model.LedgerEntry
	RunningBalance decimal.Decimal
}

// Ledger is one account's statement.
type Ledger struct {
	Account        model.Account
	Start          *time.Time
	End            *time.Time
	OpeningBalance decimal.Decimal
	Lines          []LedgerLine
	ClosingBalance decimal.Decimal
}

// ComputeLedger filters entries to the account and optional window, orders
// them by date then creation order, and accumulates debit minus credit
// starting from the account's opening balance. Entries before start are
// not carried forward into the opening figure.
func ComputeLedger(account model.Account, entries []model.LedgerEntry, start, end *time.Time) Ledger {
	var selected []model.LedgerEntry
	for _, e := range entries {
		if e.AccountID == account.ID && within(e.Date, start, end) {
			selected = append(selected, e)
		}
	}
	sortEntries(selected)

	led := Ledger{
		Account:        account,
		Start:          start,
		End:            end,
		OpeningBalance: account.OpeningBalance,
		Lines:          make([]LedgerLine, len(selected)),
	}
	balance := account.OpeningBalance
	for i, e := range selected {
		balance = balance.Add(e.Net())
		led.Lines[i] = LedgerLine{LedgerEntry: e, RunningBalance: balance}
	}
	led.ClosingBalance = balance
	return led
}

// Balance returns the account balance as of a date: opening balance plus
// debit minus credit of every entry dated on or before asOf.
func Balance(account model.Account, entries []model.LedgerEntry, asOf time.Time) decimal.Decimal {
	balance := account.OpeningBalance
	for _, e := range entries {
		if e.AccountID == account.ID && onOrBefore(e.Date, asOf) {
			balance = balance.Add(e.Net())
		}
	}
	return balance
}

// VoucherIDs returns the distinct vouchers referenced by the ledger lines,
// in line order.
func (l Ledger) VoucherIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, line := range l.Lines {
		if !seen[line.VoucherID] {
			seen[line.VoucherID] = true
			ids = append(ids, line.VoucherID)
		}
	}
	return ids
}
