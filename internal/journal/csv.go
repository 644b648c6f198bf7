package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// Column headers of the journal files.
var (
	VoucherHeader  = []string{"voucher_id", "type", "number", "date", "party_id", "narration", "total_amount", "deleted", "deleted_at", "reference"}
	ItemHeader     = []string{"voucher_id", "line", "description", "quantity", "rate", "amount", "tax_rate", "tax_amount", "total"}
	EntryHeader    = []string{"seq", "voucher_id", "account_id", "date", "debit", "credit"}
	SequenceHeader = []string{"voucher_type", "last_seq"}
)

const (
	colVID       = 0
	colVType     = 1
	colVNumber   = 2
	colVDate     = 3
	colVParty    = 4
	colVNarr     = 5
	colVTotal    = 6
	colVDeleted  = 7
	colVDeletedA = 8
	colVRef      = 9

	colIVoucher = 0
	colILine    = 1
	colIDesc    = 2
	colIQty     = 3
	colIRate    = 4
	colIAmount  = 5
	colITaxRate = 6
	colITax     = 7
	colITotal   = 8

	colESeq     = 0
	colEVoucher = 1
	colEAcct    = 2
	colEDate    = 3
	colEDebit   = 4
	colECredit  = 5

	colSType = 0
	colSLast = 1
)

// ItemRow is a voucher item together with its owning voucher.
type ItemRow struct {
	VoucherID uuid.UUID
	Line      int
	Item      model.VoucherItem
}

// readRecords reads a CSV file body and drops the header row.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func writeRecords(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadVouchers reads vouchers.csv. Items are not attached.
func ReadVouchers(r io.Reader) ([]model.Voucher, error) {
	records, err := readRecords(r, len(VoucherHeader))
	if err != nil {
		return nil, fmt.Errorf("reading vouchers CSV: %w", err)
	}
	var out []model.Voucher
	for i, rec := range records {
		v, err := UnmarshalVoucher(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteVouchers writes vouchers.csv including the header.
func WriteVouchers(w io.Writer, vouchers []model.Voucher) error {
	rows := make([][]string, len(vouchers))
	for i, v := range vouchers {
		rows[i] = MarshalVoucher(v)
	}
	return writeRecords(w, VoucherHeader, rows)
}

// MarshalVoucher converts a Voucher to a CSV row.
func MarshalVoucher(v model.Voucher) []string {
	row := make([]string, len(VoucherHeader))
	row[colVID] = v.ID.String()
	row[colVType] = string(v.Type)
	row[colVNumber] = v.Number
	row[colVDate] = v.Date.Format(model.DateFormat)
	if v.PartyID != 0 {
		row[colVParty] = strconv.Itoa(v.PartyID)
	}
	row[colVNarr] = v.Narration
	row[colVTotal] = v.TotalAmount.String()
	row[colVDeleted] = strconv.FormatBool(v.Deleted)
	if v.DeletedAt != nil {
		row[colVDeletedA] = v.DeletedAt.UTC().Format(time.RFC3339)
	}
	row[colVRef] = v.Reference
	return row
}

// UnmarshalVoucher converts a CSV row to a Voucher.
func UnmarshalVoucher(record []string) (model.Voucher, error) {
	if len(record) != len(VoucherHeader) {
		return model.Voucher{}, fmt.Errorf("expected %d fields, got %d", len(VoucherHeader), len(record))
	}

	vid, err := uuid.Parse(record[colVID])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing voucher_id %q: %w", record[colVID], err)
	}
	vtype, err := model.ParseVoucherType(record[colVType])
	if err != nil {
		return model.Voucher{}, err
	}
	date, err := model.ParseDate(record[colVDate])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing date %q: %w", record[colVDate], err)
	}

	var partyID int
	if record[colVParty] != "" {
		partyID, err = strconv.Atoi(record[colVParty])
		if err != nil {
			return model.Voucher{}, fmt.Errorf("parsing party_id %q: %w", record[colVParty], err)
		}
	}

	total, err := decimal.NewFromString(record[colVTotal])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing total_amount %q: %w", record[colVTotal], err)
	}

	deleted, err := strconv.ParseBool(record[colVDeleted])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing deleted %q: %w", record[colVDeleted], err)
	}

	var deletedAt *time.Time
	if record[colVDeletedA] != "" {
		at, err := time.Parse(time.RFC3339, record[colVDeletedA])
		if err != nil {
			return model.Voucher{}, fmt.Errorf("parsing deleted_at %q: %w", record[colVDeletedA], err)
		}
		deletedAt = &at
	}

	return model.Voucher{
		ID:          vid,
		Type:        vtype,
		Number:      record[colVNumber],
		Date:        date,
		PartyID:     partyID,
		Narration:   record[colVNarr],
		Reference:   record[colVRef],
		TotalAmount: total,
		Deleted:     deleted,
		DeletedAt:   deletedAt,
	}, nil
}

// ReadItems reads items.csv.
func ReadItems(r io.Reader) ([]ItemRow, error) {
	records, err := readRecords(r, len(ItemHeader))
	if err != nil {
		return nil, fmt.Errorf("reading items CSV: %w", err)
	}
	var out []ItemRow
	for i, rec := range records {
		item, err := UnmarshalItem(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// WriteItems writes items.csv including the header.
func WriteItems(w io.Writer, items []ItemRow) error {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = MarshalItem(it)
	}
	return writeRecords(w, ItemHeader, rows)
}

// MarshalItem converts an ItemRow to a CSV row. Amounts keep full
// precision; rounding happens only when printing.
func MarshalItem(r ItemRow) []string {
	row := make([]string, len(ItemHeader))
	row[colIVoucher] = r.VoucherID.String()
	row[colILine] = strconv.Itoa(r.Line)
	row[colIDesc] = r.Item.Description
	row[colIQty] = r.Item.Quantity.String()
	row[colIRate] = r.Item.Rate.String()
	row[colIAmount] = r.Item.Amount.String()
	row[colITaxRate] = r.Item.TaxRate.String()
	row[colITax] = r.Item.TaxAmount.String()
	row[colITotal] = r.Item.Total.String()
	return row
}

// UnmarshalItem converts a CSV row to an ItemRow.
func UnmarshalItem(record []string) (ItemRow, error) {
	if len(record) != len(ItemHeader) {
		return ItemRow{}, fmt.Errorf("expected %d fields, got %d", len(ItemHeader), len(record))
	}

	vid, err := uuid.Parse(record[colIVoucher])
	if err != nil {
		return ItemRow{}, fmt.Errorf("parsing voucher_id %q: %w", record[colIVoucher], err)
	}
	line, err := strconv.Atoi(record[colILine])
	if err != nil {
		return ItemRow{}, fmt.Errorf("parsing line %q: %w", record[colILine], err)
	}

	nums := make([]decimal.Decimal, 0, 6)
	for _, col := range []int{colIQty, colIRate, colIAmount, colITaxRate, colITax, colITotal} {
		d, err := decimal.NewFromString(record[col])
		if err != nil {
			return ItemRow{}, fmt.Errorf("parsing %s %q: %w", ItemHeader[col], record[col], err)
		}
		nums = append(nums, d)
	}

	return ItemRow{
		VoucherID: vid,
		Line:      line,
		Item: model.VoucherItem{
			Description: record[colIDesc],
			Quantity:    nums[0],
			Rate:        nums[1],
			Amount:      nums[2],
			TaxRate:     nums[3],
			TaxAmount:   nums[4],
			Total:       nums[5],
		},
	}, nil
}

// ReadEntries reads entries.csv.
func ReadEntries(r io.Reader) ([]model.LedgerEntry, error) {
	records, err := readRecords(r, len(EntryHeader))
	if err != nil {
		return nil, fmt.Errorf("reading entries CSV: %w", err)
	}
	var out []model.LedgerEntry
	for i, rec := range records {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// WriteEntries writes entries.csv including the header.
func WriteEntries(w io.Writer, entries []model.LedgerEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = MarshalEntry(e)
	}
	return writeRecords(w, EntryHeader, rows)
}

// MarshalEntry converts a LedgerEntry to a CSV row. Zero sides are left
// blank.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, len(EntryHeader))
	row[colESeq] = strconv.FormatInt(e.Seq, 10)
	row[colEVoucher] = e.VoucherID.String()
	row[colEAcct] = strconv.Itoa(e.AccountID)
	row[colEDate] = e.Date.Format(model.DateFormat)
	if !e.Debit.IsZero() {
		row[colEDebit] = e.Debit.String()
	}
	if !e.Credit.IsZero() {
		row[colECredit] = e.Credit.String()
	}
	return row
}

// UnmarshalEntry converts a CSV row to a LedgerEntry.
func UnmarshalEntry(record []string) (model.LedgerEntry, error) {
	if len(record) != len(EntryHeader) {
		return model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", len(EntryHeader), len(record))
	}

	seq, err := strconv.ParseInt(record[colESeq], 10, 64)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing seq %q: %w", record[colESeq], err)
	}
	vid, err := uuid.Parse(record[colEVoucher])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing voucher_id %q: %w", record[colEVoucher], err)
	}
	accountID, err := strconv.Atoi(record[colEAcct])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing account_id %q: %w", record[colEAcct], err)
	}
	date, err := model.ParseDate(record[colEDate])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing date %q: %w", record[colEDate], err)
	}

	debit, credit := decimal.Zero, decimal.Zero
	if record[colEDebit] != "" {
		debit, err = decimal.NewFromString(record[colEDebit])
		if err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing debit %q: %w", record[colEDebit], err)
		}
	}
	if record[colECredit] != "" {
		credit, err = decimal.NewFromString(record[colECredit])
		if err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing credit %q: %w", record[colECredit], err)
		}
	}

	return model.LedgerEntry{
		Seq:       seq,
		VoucherID: vid,
		AccountID: accountID,
		Date:      date,
		Debit:     debit,
		Credit:    credit,
	}, nil
}

// ReadSequences reads sequences.csv into a per-type counter map.
func ReadSequences(r io.Reader) (map[model.VoucherType]int, error) {
	records, err := readRecords(r, len(SequenceHeader))
	if err != nil {
		return nil, fmt.Errorf("reading sequences CSV: %w", err)
	}
	out := make(map[model.VoucherType]int, len(records))
	for i, rec := range records {
		t, err := model.ParseVoucherType(rec[colSType])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		n, err := strconv.Atoi(rec[colSLast])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing last_seq %q: %w", i+2, rec[colSLast], err)
		}
		out[t] = n
	}
	return out, nil
}

// WriteSequences writes sequences.csv in voucher type order.
func WriteSequences(w io.Writer, seqs map[model.VoucherType]int) error {
	var rows [][]string
	for _, t := range model.VoucherTypes {
		if n, ok := seqs[t]; ok {
			rows = append(rows, []string{string(t), strconv.Itoa(n)})
		}
	}
	return writeRecords(w, SequenceHeader, rows)
}
