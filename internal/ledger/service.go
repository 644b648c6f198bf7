// Package ledger is the entry point callers use to post vouchers and read
// reports. It checks references against the chart, runs the posting engine
// and hands the result to a Store inside one transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/id"
	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/posting"
)

// Service provides business logic for vouchers, accounts and reports.
type Service struct {
	store Store
	sys   posting.SystemAccounts
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the source of "today" for defaulted dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a ledger Service.
func NewService(store Store, sys posting.SystemAccounts, opts ...Option) *Service {
	s := &Service{
		store: store,
		sys:   sys,
		log:   logger.WithComponent("ledger"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostRequest is one voucher to record.
type PostRequest struct {
	Input     posting.Input
	Date      time.Time // zero = today
	Narration string
	Reference string // unique among active vouchers when set
}

// PostResult is the persisted voucher and its entries.
type PostResult struct {
	Voucher     model.Voucher
	Number      string
	TotalAmount decimal.Decimal
	Entries     []model.LedgerEntry
}

// PostVoucher derives, checks and persists a voucher. Either the voucher
// and all of its entries are stored, or nothing is.
func (s *Service) PostVoucher(ctx context.Context, req PostRequest) (*PostResult, error) {
	if req.Input == nil {
		return nil, fmt.Errorf("%w: no voucher input", posting.ErrInvalidVoucherType)
	}
	vtype := req.Input.VoucherType()

	p, err := posting.Post(req.Input, s.sys)
	if err != nil {
		s.log.Warn().Err(err).Str("type", string(vtype)).Msg("voucher rejected")
		return nil, fmt.Errorf("posting %s voucher: %w", vtype, err)
	}

	chart, err := s.chart(ctx)
	if err != nil {
		return nil, err
	}
	if verrs := posting.ValidateEntries(p.Entries, chart); len(verrs) > 0 {
		s.log.Warn().Err(verrs).Str("type", string(vtype)).Msg("voucher rejected")
		return nil, fmt.Errorf("posting %s voucher: %w", vtype, verrs)
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	date = model.Day(date)

	v := model.Voucher{
		ID:          uuid.New(),
		Type:        vtype,
		Date:        date,
		PartyID:     p.PartyID,
		Narration:   req.Narration,
		Reference:   strings.TrimSpace(req.Reference),
		TotalAmount: p.Totals.Total,
		Items:       p.Items,
	}
	entries := make([]model.LedgerEntry, len(p.Entries))
	for i, d := range p.Entries {
		entries[i] = model.LedgerEntry{
			VoucherID: v.ID,
			AccountID: d.AccountID,
			Date:      date,
			Debit:     d.Debit,
			Credit:    d.Credit,
		}
	}

	var stored []model.LedgerEntry
	err = s.store.InTx(ctx, func(tx Tx) error {
		seq, err := tx.NextVoucherSeq(ctx, vtype)
		if err != nil {
			return fmt.Errorf("allocating voucher number: %w", err)
		}
		v.Number = id.FormatVoucherNumber(id.Prefix(string(vtype)), seq)
		stored, err = tx.InsertVoucher(ctx, v, entries)
		if err != nil {
			return fmt.Errorf("storing voucher %s: %w", v.Number, err)
		}
		return nil
	})
	if errors.Is(err, model.ErrDuplicateReference) {
		s.log.Warn().Err(err).Str("type", string(vtype)).Str("reference", v.Reference).Msg("voucher rejected")
		return nil, err
	}
	if err != nil {
		s.log.Error().Err(err).Str("type", string(vtype)).Msg("voucher not stored")
		return nil, err
	}

	s.log.Info().
		Str("number", v.Number).
		Str("type", string(vtype)).
		Str("total", v.TotalAmount.StringFixed(2)).
		Msg("voucher posted")

	return &PostResult{
		Voucher:     v,
		Number:      v.Number,
		TotalAmount: v.TotalAmount,
		Entries:     stored,
	}, nil
}

// DeleteVoucher soft-deletes a voucher. Its entries drop out of every
// report. Deleting an already deleted voucher changes nothing.
func (s *Service) DeleteVoucher(ctx context.Context, voucherID uuid.UUID) error {
	var number string
	var already bool
	err := s.store.InTx(ctx, func(tx Tx) error {
		v, err := tx.Voucher(ctx, voucherID)
		if err != nil {
			return err
		}
		number = v.Number
		if v.Deleted {
			already = true
			return nil
		}
		return tx.MarkDeleted(ctx, voucherID, s.now().UTC())
	})
	if err != nil {
		return fmt.Errorf("deleting voucher %s: %w", voucherID, err)
	}

	if already {
		s.log.Debug().Str("number", number).Msg("voucher already deleted")
	} else {
		s.log.Info().Str("number", number).Msg("voucher deleted")
	}
	return nil
}

// VoucherDetail is a voucher together with its ledger entries.
type VoucherDetail struct {
	Voucher model.Voucher
	Entries []model.LedgerEntry
}

// GetVoucher returns a voucher, deleted or not, with its entries. A deleted
// voucher comes back with no entries.
func (s *Service) GetVoucher(ctx context.Context, voucherID uuid.UUID) (*VoucherDetail, error) {
	v, err := s.store.Voucher(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("reading voucher %s: %w", voucherID, err)
	}
	entries, err := s.store.VoucherEntries(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("reading entries of %s: %w", v.Number, err)
	}
	return &VoucherDetail{Voucher: v, Entries: entries}, nil
}

// FindVoucher resolves a voucher by id or by number ("SV-0001").
func (s *Service) FindVoucher(ctx context.Context, ref string) (*VoucherDetail, error) {
	if vid, err := uuid.Parse(ref); err == nil {
		return s.GetVoucher(ctx, vid)
	}
	if _, _, err := id.ParseVoucherNumber(ref); err != nil {
		return nil, fmt.Errorf("%w: %q is neither an id nor a voucher number", ErrVoucherNotFound, ref)
	}
	all, err := s.store.Vouchers(ctx, model.VoucherFilter{IncludeDeleted: true})
	if err != nil {
		return nil, fmt.Errorf("listing vouchers: %w", err)
	}
	for _, v := range all {
		if v.Number == ref {
			return s.GetVoucher(ctx, v.ID)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrVoucherNotFound, ref)
}

// ListVouchers returns vouchers matching f, newest first.
func (s *Service) ListVouchers(ctx context.Context, f model.VoucherFilter) ([]model.Voucher, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidPeriod, f.From.Format(model.DateFormat), f.To.Format(model.DateFormat))
	}
	vs, err := s.store.Vouchers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing vouchers: %w", err)
	}
	sort.SliceStable(vs, func(i, j int) bool {
		di, dj := model.Day(vs[i].Date), model.Day(vs[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return vs[i].Number > vs[j].Number
	})
	return vs, nil
}

func (s *Service) chart(ctx context.Context) (*accounts.Service, error) {
	accts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return accounts.NewService(accts), nil
}

func (s *Service) today() time.Time {
	return model.Day(s.now())
}
