package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khata-dev/khata/internal/model"
)

// memStore is an in-memory Store. InTx holds the lock for the whole
// transaction and applies writes only when fn succeeds.
type memStore struct {
	mu       sync.Mutex
	accounts []model.Account
	vouchers map[uuid.UUID]model.Voucher
	entries  []model.LedgerEntry
	seqs     map[model.VoucherType]int
	nextSeq  int64
	failNext error
}

func newMemStore(accounts ...model.Account) *memStore {
	return &memStore{
		accounts: accounts,
		vouchers: make(map[uuid.UUID]model.Voucher),
		seqs:     make(map[model.VoucherType]int),
	}
}

type memTx struct {
	accounts []model.Account
	vouchers map[uuid.UUID]model.Voucher
	entries  []model.LedgerEntry
	seqs     map[model.VoucherType]int
	nextSeq  int64
}

func (s *memStore) InTx(_ context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		accounts: append([]model.Account(nil), s.accounts...),
		vouchers: make(map[uuid.UUID]model.Voucher, len(s.vouchers)),
		entries:  append([]model.LedgerEntry(nil), s.entries...),
		seqs:     make(map[model.VoucherType]int, len(s.seqs)),
		nextSeq:  s.nextSeq,
	}
	for k, v := range s.vouchers {
		tx.vouchers[k] = v
	}
	for k, v := range s.seqs {
		tx.seqs[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.accounts, s.vouchers, s.entries, s.seqs, s.nextSeq = tx.accounts, tx.vouchers, tx.entries, tx.seqs, tx.nextSeq
	return nil
}

func (t *memTx) NextVoucherSeq(_ context.Context, vt model.VoucherType) (int, error) {
	t.seqs[vt]++
	return t.seqs[vt], nil
}

func (t *memTx) InsertVoucher(_ context.Context, v model.Voucher, entries []model.LedgerEntry) ([]model.LedgerEntry, error) {
	t.vouchers[v.ID] = v
	out := make([]model.LedgerEntry, len(entries))
	for i, e := range entries {
		t.nextSeq++
		e.Seq = t.nextSeq
		out[i] = e
	}
	t.entries = append(t.entries, out...)
	return out, nil
}

func (t *memTx) Voucher(_ context.Context, id uuid.UUID) (model.Voucher, error) {
	v, ok := t.vouchers[id]
	if !ok {
		return model.Voucher{}, model.ErrVoucherNotFound
	}
	return v, nil
}

func (t *memTx) MarkDeleted(_ context.Context, id uuid.UUID, at time.Time) error {
	v, ok := t.vouchers[id]
	if !ok {
		return model.ErrVoucherNotFound
	}
	v.Deleted = true
	v.DeletedAt = &at
	t.vouchers[id] = v
	return nil
}

func (t *memTx) InsertAccount(_ context.Context, a model.Account) error {
	for _, existing := range t.accounts {
		if existing.ID == a.ID {
			return model.ErrDuplicateAccount
		}
	}
	t.accounts = append(t.accounts, a)
	return nil
}

func (s *memStore) Accounts(context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Account(nil), s.accounts...), nil
}

func (s *memStore) Voucher(_ context.Context, id uuid.UUID) (model.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok {
		return model.Voucher{}, model.ErrVoucherNotFound
	}
	return v, nil
}

func (s *memStore) Vouchers(_ context.Context, f model.VoucherFilter) ([]model.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Voucher
	for _, v := range s.vouchers {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) Entries(_ context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range s.entries {
		if !s.vouchers[e.VoucherID].Deleted && f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) VoucherEntries(_ context.Context, id uuid.UUID) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok {
		return nil, model.ErrVoucherNotFound
	}
	if v.Deleted {
		return nil, nil
	}
	var out []model.LedgerEntry
	for _, e := range s.entries {
		if e.VoucherID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

var errInjected = errors.New("disk full")
