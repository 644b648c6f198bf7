package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used on disk and on the CLI.
const DateFormat = "2006-01-02"

// LedgerEntry is one debit or credit posting against one account.
type LedgerEntry struct {
	Seq       int64 // store-assigned creation order, breaks same-date ties
	VoucherID uuid.UUID
	AccountID int
	Date      time.Time
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Net returns Debit - Credit.
func (e LedgerEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// EntryDraft is a ledger entry before it is attached to a voucher.
type EntryDraft struct {
	AccountID int
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}
