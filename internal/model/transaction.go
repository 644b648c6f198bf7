package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank statement row.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
	Type        string // bank-side marker such as CR or DR; may be empty
}

// Inflow reports whether the row is money received.
func (t BankTransaction) Inflow() bool {
	return t.Amount.IsPositive()
}
