package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-dev/khata/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestVoucherRoundTrip(t *testing.T) {
	deletedAt := time.Date(2025, 4, 3, 9, 30, 0, 0, time.UTC)
	vouchers := []model.Voucher{
		{
			ID:          uuid.New(),
			Type:        model.VoucherTypeSales,
			Number:      "SV-0001",
			Date:        date(2025, 4, 2),
			PartyID:     1201,
			Narration:   `Invoice 17, "urgent", paid later`,
			TotalAmount: dec("1180"),
		},
		{
			ID:          uuid.New(),
			Type:        model.VoucherTypePayment,
			Number:      "PY-0001",
			Date:        date(2025, 4, 3),
			Reference:   "UTR,0042",
			TotalAmount: dec("15000.5"),
			Deleted:     true,
			DeletedAt:   &deletedAt,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVouchers(&buf, vouchers))
	assert.True(t, strings.HasPrefix(buf.String(), "voucher_id,type,number,"))

	got, err := ReadVouchers(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, vouchers[0].ID, got[0].ID)
	assert.Equal(t, vouchers[0].Type, got[0].Type)
	assert.Equal(t, vouchers[0].Number, got[0].Number)
	assert.True(t, vouchers[0].Date.Equal(got[0].Date))
	assert.Equal(t, 1201, got[0].PartyID)
	assert.Equal(t, vouchers[0].Narration, got[0].Narration)
	assert.True(t, vouchers[0].TotalAmount.Equal(got[0].TotalAmount))
	assert.False(t, got[0].Deleted)
	assert.Nil(t, got[0].DeletedAt)

	assert.Empty(t, got[0].Reference)

	assert.Zero(t, got[1].PartyID)
	assert.Equal(t, "UTR,0042", got[1].Reference)
	assert.True(t, got[1].Deleted)
	require.NotNil(t, got[1].DeletedAt)
	assert.True(t, deletedAt.Equal(*got[1].DeletedAt))
}

func TestEntryRoundTrip(t *testing.T) {
	vid := uuid.New()
	entries := []model.LedgerEntry{
		{Seq: 1, VoucherID: vid, AccountID: 1201, Date: date(2025, 4, 2), Debit: dec("1180"), Credit: decimal.Zero},
		{Seq: 2, VoucherID: vid, AccountID: 4010, Date: date(2025, 4, 2), Debit: decimal.Zero, Credit: dec("1000")},
		{Seq: 3, VoucherID: vid, AccountID: 2300, Date: date(2025, 4, 2), Debit: decimal.Zero, Credit: dec("180")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range entries {
		assert.Equal(t, entries[i].Seq, got[i].Seq)
		assert.Equal(t, entries[i].VoucherID, got[i].VoucherID)
		assert.Equal(t, entries[i].AccountID, got[i].AccountID)
		assert.True(t, entries[i].Debit.Equal(got[i].Debit), "debit mismatch row %d", i)
		assert.True(t, entries[i].Credit.Equal(got[i].Credit), "credit mismatch row %d", i)
	}
}

func TestZeroSidesBlank(t *testing.T) {
	row := MarshalEntry(model.LedgerEntry{Seq: 7, VoucherID: uuid.New(), AccountID: 1010, Date: date(2025, 4, 2), Debit: dec("50"), Credit: decimal.Zero})
	assert.Equal(t, "50", row[colEDebit])
	assert.Empty(t, row[colECredit])
}

func TestFullPrecisionKept(t *testing.T) {
	// 1 @ 33.333 with 18% tax: nothing is rounded on disk.
	item := ItemRow{
		VoucherID: uuid.New(),
		Line:      1,
		Item: model.VoucherItem{
			Description: "Consulting, per hour",
			Quantity:    dec("1"),
			Rate:        dec("33.333"),
			Amount:      dec("33.333"),
			TaxRate:     dec("18"),
			TaxAmount:   dec("5.99994"),
			Total:       dec("39.33294"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteItems(&buf, []ItemRow{item}))

	got, err := ReadItems(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Consulting, per hour", got[0].Item.Description)
	assert.Equal(t, "5.99994", got[0].Item.TaxAmount.String())
	assert.Equal(t, "39.33294", got[0].Item.Total.String())
	assert.Equal(t, 1, got[0].Line)
}

func TestSequencesRoundTrip(t *testing.T) {
	seqs := map[model.VoucherType]int{
		model.VoucherTypeReceipt: 3,
		model.VoucherTypeSales:   12,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSequences(&buf, seqs))
	assert.Equal(t, "voucher_type,last_seq\nSALES,12\nRECEIPT,3\n", buf.String(), "written in voucher type order")

	got, err := ReadSequences(&buf)
	require.NoError(t, err)
	assert.Equal(t, seqs, got)
}

func TestRead_EmptyAndHeaderOnly(t *testing.T) {
	got, err := ReadEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadEntries(strings.NewReader(strings.Join(EntryHeader, ",") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_BadRows(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("seq,voucher_id,account_id,date,debit,credit\n1,not-a-uuid,1010,2025-04-02,5,\n"))
	assert.ErrorContains(t, err, "row 2")

	_, err = ReadVouchers(strings.NewReader(strings.Join(VoucherHeader, ",") + "\n" + uuid.NewString() + ",JOURNAL,JV-0001,2025-04-02,,,5,false,,\n"))
	assert.ErrorIs(t, err, model.ErrUnknownVoucherType)

	_, err = ReadItems(strings.NewReader("a,b\n"))
	assert.Error(t, err, "wrong field count")
}
