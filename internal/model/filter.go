package model

import "time"

// VoucherFilter narrows a voucher listing. Zero values mean "any".
type VoucherFilter struct {
	Type           VoucherType
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
}

// Match reports whether v passes the filter. Dates compare by calendar day
// and both ends are inclusive.
func (f VoucherFilter) Match(v Voucher) bool {
	if v.Deleted && !f.IncludeDeleted {
		return false
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	return InRange(v.Date, f.From, f.To)
}

// EntryFilter narrows a ledger entry read. Entries of deleted vouchers are
// never returned.
type EntryFilter struct {
	AccountID int // 0 = every account
	From      *time.Time
	To        *time.Time
}

// Match reports whether e passes the filter.
func (f EntryFilter) Match(e LedgerEntry) bool {
	if f.AccountID != 0 && e.AccountID != f.AccountID {
		return false
	}
	return InRange(e.Date, f.From, f.To)
}

// AccountFilter narrows an account listing.
type AccountFilter struct {
	Type      AccountType
	PartyOnly bool
}

// Match reports whether a passes the filter.
func (f AccountFilter) Match(a Account) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	return !f.PartyOnly || a.IsParty
}

// InRange reports whether t falls on or between the optional bounds.
func InRange(t time.Time, from, to *time.Time) bool {
	d := Day(t)
	if from != nil && d.Before(Day(*from)) {
		return false
	}
	if to != nil && d.After(Day(*to)) {
		return false
	}
	return true
}
