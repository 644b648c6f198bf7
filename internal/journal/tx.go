package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/model"
)

// fileTx stages writes against a loaded state and records which files
// need rewriting.
type fileTx struct {
	st      *state
	lastSeq int64

	seqsDirty     bool
	itemsDirty    bool
	entriesDirty  bool
	vouchersDirty bool
	chartDirty    bool
}

func (tx *fileTx) NextVoucherSeq(_ context.Context, t model.VoucherType) (int, error) {
	tx.st.seqs[t]++
	tx.seqsDirty = true
	return tx.st.seqs[t], nil
}

func (tx *fileTx) InsertVoucher(_ context.Context, v model.Voucher, entries []model.LedgerEntry) ([]model.LedgerEntry, error) {
	if _, ok := tx.st.voucher(v.ID); ok {
		return nil, fmt.Errorf("voucher %s already exists", v.ID)
	}
	if v.Reference != "" {
		for _, other := range tx.st.vouchers {
			if !other.Deleted && other.Reference == v.Reference {
				return nil, fmt.Errorf("%w: %s is on %s", model.ErrDuplicateReference, v.Reference, other.Number)
			}
		}
	}

	for i, it := range v.Items {
		tx.st.items = append(tx.st.items, ItemRow{VoucherID: v.ID, Line: i + 1, Item: it})
	}
	out := make([]model.LedgerEntry, len(entries))
	for i, e := range entries {
		tx.lastSeq++
		e.Seq = tx.lastSeq
		e.VoucherID = v.ID
		out[i] = e
	}
	tx.st.entries = append(tx.st.entries, out...)

	row := v
	row.Items = nil
	tx.st.vouchers = append(tx.st.vouchers, row)

	tx.itemsDirty = tx.itemsDirty || len(v.Items) > 0
	tx.entriesDirty = true
	tx.vouchersDirty = true
	return out, nil
}

func (tx *fileTx) Voucher(_ context.Context, id uuid.UUID) (model.Voucher, error) {
	i, ok := tx.st.voucher(id)
	if !ok {
		return model.Voucher{}, fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	return tx.st.withItems(tx.st.vouchers[i]), nil
}

func (tx *fileTx) MarkDeleted(_ context.Context, id uuid.UUID, at time.Time) error {
	i, ok := tx.st.voucher(id)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrVoucherNotFound, id)
	}
	at = at.UTC().Truncate(time.Second)
	tx.st.vouchers[i].Deleted = true
	tx.st.vouchers[i].DeletedAt = &at
	tx.vouchersDirty = true
	return nil
}

func (tx *fileTx) InsertAccount(_ context.Context, a model.Account) error {
	chart := accounts.NewService(tx.st.accounts)
	if err := chart.Add(a); err != nil {
		return err
	}
	tx.st.accounts = chart.All()
	tx.chartDirty = true
	return nil
}
