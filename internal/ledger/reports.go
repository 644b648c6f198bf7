package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/report"
)

// TrialBalance computes the trial balance as of a date (nil = today).
func (s *Service) TrialBalance(ctx context.Context, asOf *time.Time) (report.TrialBalance, error) {
	date := s.dateOr(asOf, s.today())
	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return report.TrialBalance{}, fmt.Errorf("reading accounts: %w", err)
	}
	entries, err := s.store.Entries(ctx, model.EntryFilter{To: &date})
	if err != nil {
		return report.TrialBalance{}, fmt.Errorf("reading entries: %w", err)
	}
	return report.ComputeTrialBalance(accts, entries, date), nil
}

// ProfitAndLoss computes income and expenses over [start, end]. A nil start
// is January 1 of the current year; a nil end is today.
func (s *Service) ProfitAndLoss(ctx context.Context, start, end *time.Time) (report.ProfitAndLoss, error) {
	today := s.today()
	from := s.dateOr(start, time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	to := s.dateOr(end, today)
	if from.After(to) {
		return report.ProfitAndLoss{}, periodError(from, to)
	}

	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return report.ProfitAndLoss{}, fmt.Errorf("reading accounts: %w", err)
	}
	entries, err := s.store.Entries(ctx, model.EntryFilter{From: &from, To: &to})
	if err != nil {
		return report.ProfitAndLoss{}, fmt.Errorf("reading entries: %w", err)
	}
	return report.ComputeProfitAndLoss(accts, entries, from, to), nil
}

// GST computes the tax position for a month. Zero month or year means the
// current one.
func (s *Service) GST(ctx context.Context, month, year int) (report.GSTReport, error) {
	today := s.today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if month < 1 || month > 12 {
		return report.GSTReport{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 1 {
		return report.GSTReport{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}

	first, last := report.MonthBounds(month, year)
	vouchers, err := s.store.Vouchers(ctx, model.VoucherFilter{From: &first, To: &last})
	if err != nil {
		return report.GSTReport{}, fmt.Errorf("reading vouchers: %w", err)
	}
	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return report.GSTReport{}, fmt.Errorf("reading accounts: %w", err)
	}
	return report.ComputeGST(vouchers, accts, month, year), nil
}

// Outstanding lists party receivables and payables over all time.
func (s *Service) Outstanding(ctx context.Context) (report.OutstandingReport, error) {
	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return report.OutstandingReport{}, fmt.Errorf("reading accounts: %w", err)
	}
	entries, err := s.store.Entries(ctx, model.EntryFilter{})
	if err != nil {
		return report.OutstandingReport{}, fmt.Errorf("reading entries: %w", err)
	}
	return report.ComputeOutstanding(accts, entries), nil
}

// Ledger returns one account's statement with running balances. Both
// bounds are optional.
func (s *Service) Ledger(ctx context.Context, accountID int, start, end *time.Time) (report.Ledger, error) {
	if start != nil && end != nil && start.After(*end) {
		return report.Ledger{}, periodError(*start, *end)
	}
	acct, err := s.Account(ctx, accountID)
	if err != nil {
		return report.Ledger{}, err
	}
	entries, err := s.store.Entries(ctx, model.EntryFilter{AccountID: accountID, From: start, To: end})
	if err != nil {
		return report.Ledger{}, fmt.Errorf("reading entries: %w", err)
	}
	return report.ComputeLedger(acct, entries, start, end), nil
}

// DayBook lists the vouchers of a window with per-type totals. A nil end is
// today; a nil start is the end date.
func (s *Service) DayBook(ctx context.Context, start, end *time.Time) (report.DayBook, error) {
	to := s.dateOr(end, s.today())
	from := s.dateOr(start, to)
	if from.After(to) {
		return report.DayBook{}, periodError(from, to)
	}
	vouchers, err := s.store.Vouchers(ctx, model.VoucherFilter{From: &from, To: &to})
	if err != nil {
		return report.DayBook{}, fmt.Errorf("reading vouchers: %w", err)
	}
	return report.ComputeDayBook(vouchers, from, to), nil
}

func (s *Service) dateOr(d *time.Time, fallback time.Time) time.Time {
	if d == nil {
		return fallback
	}
	return model.Day(*d)
}

func periodError(from, to time.Time) error {
	return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, from.Format(model.DateFormat), to.Format(model.DateFormat))
}
