// Package journal is the file-backed ledger store. A project directory
// holds the chart under accounts/ and the journal as plain CSV files under
// journal/, so the books stay readable and diffable in git.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/ledger"
	"github.com/khata-dev/khata/internal/logger"
	"github.com/khata-dev/khata/internal/model"
)

// Dir is the journal directory relative to a project root.
const Dir = "journal"

const (
	vouchersFile  = "vouchers.csv"
	itemsFile     = "items.csv"
	entriesFile   = "entries.csv"
	sequencesFile = "sequences.csv"
	lockFile      = ".lock"
)

var (
	lockTimeout = 10 * time.Second
	lockPoll    = 20 * time.Millisecond
	lockStale   = time.Minute
)

var _ ledger.Store = (*Store)(nil)

// Store keeps vouchers, items, entries and counters in CSV files. Writes
// are serialised by an in-process mutex and a lock file, staged in memory
// and committed file by file with write-temp-then-rename. The voucher row
// is written last, and readers ignore entries whose voucher row is missing
// or deleted, so a half-committed voucher is never visible.
type Store struct {
	root string
	mu   sync.Mutex
	log  zerolog.Logger
}

// Open returns a Store rooted at a project directory, creating the
// journal directory when needed.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, Dir), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}
	return &Store{root: root, log: logger.WithComponent("journal")}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, Dir, name)
}

// state is a full in-memory copy of the books.
type state struct {
	accounts []model.Account
	vouchers []model.Voucher
	items    []ItemRow
	entries  []model.LedgerEntry
	seqs     map[model.VoucherType]int
}

// load reads every file. The voucher file is read before the entry file so
// a concurrent commit can only add entries this read then ignores.
func (s *Store) load() (*state, error) {
	st := &state{seqs: make(map[model.VoucherType]int)}

	chart, err := accounts.Load(s.root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		st.accounts = chart.All()
	}

	if err := readFile(s.path(vouchersFile), func(r io.Reader) (err error) {
		st.vouchers, err = ReadVouchers(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(s.path(itemsFile), func(r io.Reader) (err error) {
		st.items, err = ReadItems(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(s.path(entriesFile), func(r io.Reader) (err error) {
		st.entries, err = ReadEntries(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(s.path(sequencesFile), func(r io.Reader) (err error) {
		st.seqs, err = ReadSequences(r)
		return err
	}); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) read() (*state, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (st *state) voucher(id uuid.UUID) (int, bool) {
	for i, v := range st.vouchers {
		if v.ID == id {
			return i, true
		}
	}
	return 0, false
}

// withItems attaches item lines to a voucher in line order.
func (st *state) withItems(v model.Voucher) model.Voucher {
	v.Items = nil
	for _, it := range st.items {
		if it.VoucherID == v.ID {
			v.Items = append(v.Items, it.Item)
		}
	}
	return v
}

// active returns the ids of vouchers that are present and not deleted.
func (st *state) active() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(st.vouchers))
	for _, v := range st.vouchers {
		if !v.Deleted {
			ids[v.ID] = true
		}
	}
	return ids
}

// Accounts returns the chart of accounts.
func (s *Store) Accounts(context.Context) ([]model.Account, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	return st.accounts, nil
}

// Voucher returns a voucher with its items, deleted or not.
func (s *Store) Voucher(_ context.Context, id uuid.UUID) (model.Voucher, error) {
	st, err := s.read()
	if err != nil {
		return model.Voucher{}, err
	}
	i, ok := st.voucher(id)
	if !ok {
		return model.Voucher{}, fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	return st.withItems(st.vouchers[i]), nil
}

// Vouchers returns the vouchers matching f with their items.
func (s *Store) Vouchers(_ context.Context, f model.VoucherFilter) ([]model.Voucher, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	var out []model.Voucher
	for _, v := range st.vouchers {
		if f.Match(v) {
			out = append(out, st.withItems(v))
		}
	}
	return out, nil
}

// Entries returns entries of live vouchers matching f.
func (s *Store) Entries(_ context.Context, f model.EntryFilter) ([]model.LedgerEntry, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	live := st.active()
	var out []model.LedgerEntry
	for _, e := range st.entries {
		if live[e.VoucherID] && f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// VoucherEntries returns one voucher's entries, or none if it is deleted.
func (s *Store) VoucherEntries(_ context.Context, id uuid.UUID) ([]model.LedgerEntry, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	i, ok := st.voucher(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	if st.vouchers[i].Deleted {
		return nil, nil
	}
	var out []model.LedgerEntry
	for _, e := range st.entries {
		if e.VoucherID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// InTx loads the books, runs fn against the staged copy and commits the
// files fn touched. Nothing is written when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	st, err := s.load()
	if err != nil {
		return err
	}
	tx := &fileTx{st: st}
	for _, e := range st.entries {
		if e.Seq > tx.lastSeq {
			tx.lastSeq = e.Seq
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// commit writes dirty files. Counters, items and entries go first; the
// chart and the voucher file last.
func (s *Store) commit(tx *fileTx) error {
	st := tx.st
	if tx.seqsDirty {
		if err := writeFile(s.path(sequencesFile), func(w io.Writer) error { return WriteSequences(w, st.seqs) }); err != nil {
			return err
		}
	}
	if tx.itemsDirty {
		if err := writeFile(s.path(itemsFile), func(w io.Writer) error { return WriteItems(w, st.items) }); err != nil {
			return err
		}
	}
	if tx.entriesDirty {
		if err := writeFile(s.path(entriesFile), func(w io.Writer) error { return WriteEntries(w, st.entries) }); err != nil {
			return err
		}
	}
	if tx.chartDirty {
		if err := accounts.NewService(st.accounts).Save(s.root); err != nil {
			return err
		}
	}
	if tx.vouchersDirty {
		if err := writeFile(s.path(vouchersFile), func(w io.Writer) error { return WriteVouchers(w, st.vouchers) }); err != nil {
			return err
		}
	}
	s.log.Debug().Int("vouchers", len(st.vouchers)).Int("entries", len(st.entries)).Msg("journal committed")
	return nil
}

// acquire takes the cross-process lock file. Locks older than lockStale
// are assumed abandoned and removed.
func (s *Store) acquire(ctx context.Context) (func(), error) {
	path := s.path(lockFile)
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("creating journal lock: %w", err)
		}
		if fi, err := os.Stat(path); err == nil && time.Since(fi.ModTime()) > lockStale {
			s.log.Warn().Str("path", path).Msg("removing stale journal lock")
			os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for journal lock: %w", ctx.Err())
		case <-time.After(lockPoll):
		}
	}
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// writeFile replaces path atomically.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
