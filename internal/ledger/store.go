package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khata-dev/khata/internal/model"
)

// Store persists accounts, vouchers and ledger entries. Reads never return
// entries that belong to a soft-deleted voucher.
type Store interface {
	// InTx runs fn in a single atomic unit. If fn returns an error nothing
	// it wrote is kept.
	InTx(ctx context.Context, fn func(Tx) error) error

	Accounts(ctx context.Context) ([]model.Account, error)
	Voucher(ctx context.Context, id uuid.UUID) (model.Voucher, error)
	Vouchers(ctx context.Context, f model.VoucherFilter) ([]model.Voucher, error)
	Entries(ctx context.Context, f model.EntryFilter) ([]model.LedgerEntry, error)
	VoucherEntries(ctx context.Context, id uuid.UUID) ([]model.LedgerEntry, error)
}

// Tx is the write side of a Store, valid only inside InTx.
type Tx interface {
	// NextVoucherSeq atomically increments and returns the per-type counter.
	// Two concurrent transactions never observe the same value.
	NextVoucherSeq(ctx context.Context, t model.VoucherType) (int, error)

	// InsertVoucher stores a voucher with its items and entries and returns
	// the entries with their creation order assigned. A non-empty reference
	// already held by an active voucher gives model.ErrDuplicateReference.
	InsertVoucher(ctx context.Context, v model.Voucher, entries []model.LedgerEntry) ([]model.LedgerEntry, error)

	// Voucher reads a voucher, deleted or not. Missing ids give
	// model.ErrVoucherNotFound.
	Voucher(ctx context.Context, id uuid.UUID) (model.Voucher, error)

	// MarkDeleted sets the soft-delete flag and timestamp.
	MarkDeleted(ctx context.Context, id uuid.UUID, at time.Time) error

	// InsertAccount adds an account to the chart. Taken ids give
	// model.ErrDuplicateAccount.
	InsertAccount(ctx context.Context, a model.Account) error
}
