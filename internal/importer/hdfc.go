package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// HDFCParser reads HDFC Bank account statements downloaded from net banking
// as delimited text. Fields are space padded, dates are DD/MM/YY and money
// in and out sit in separate columns. Both the "Debit Amount/Credit Amount"
// and the older "Withdrawal Amt./Deposit Amt." headers are accepted.
type HDFCParser struct{}

var hdfcDateFormats = []string{"02/01/06", "02/01/2006"}

// hdfcColumns maps each field to the header spellings seen in exports,
// compared after normalizeHeader.
var hdfcColumns = map[string][]string{
	"date":      {"date"},
	"narration": {"narration"},
	"reference": {"chqrefnumber", "chqrefno"},
	"debit":     {"debitamount", "withdrawalamt"},
	"credit":    {"creditamount", "depositamt"},
}

// Format returns the parser name.
func (p *HDFCParser) Format() string { return "hdfc" }

// Parse reads the statement and returns BankTransactions. Withdrawals come
// back negative.
func (p *HDFCParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := hdfcHeader(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var txns []model.BankTransaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txn, err := parseHDFCRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func hdfcHeader(header []string) (map[string]int, error) {
	seen := make(map[string]int, len(header))
	for i, h := range header {
		seen[normalizeHeader(h)] = i
	}
	cols := make(map[string]int, len(hdfcColumns))
	for field, names := range hdfcColumns {
		for _, name := range names {
			if i, ok := seen[name]; ok {
				cols[field] = i
				break
			}
		}
		if _, ok := cols[field]; !ok && field != "reference" {
			return nil, fmt.Errorf("missing %s column", field)
		}
	}
	return cols, nil
}

// normalizeHeader lowercases h and drops everything but letters and digits,
// so "Chq./Ref.No." and "Chq/Ref Number" compare as chqrefno and chqrefnumber.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, h)
}

func parseHDFCRow(rec []string, cols map[string]int) (model.BankTransaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseHDFCDate(field("date"))
	if err != nil {
		return model.BankTransaction{}, err
	}
	debit, err := parseMoney(field("debit"))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing debit amount: %w", err)
	}
	credit, err := parseMoney(field("credit"))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing credit amount: %w", err)
	}
	if debit.IsPositive() && credit.IsPositive() {
		return model.BankTransaction{}, fmt.Errorf("both debit %s and credit %s are set", debit, credit)
	}

	narration := field("narration")
	txn := model.BankTransaction{
		Date:        date,
		Description: narration,
		Amount:      credit.Sub(debit),
		Reference:   field("reference"),
		Type:        "CR",
	}
	if debit.IsPositive() {
		txn.Type = "DR"
	}
	// Rows without a cheque or UTR number carry a run of zeros.
	if strings.Trim(txn.Reference, "0") == "" {
		txn.Reference = makeRef("hdfc", date, narration)
	}
	return txn, nil
}

func parseHDFCDate(s string) (time.Time, error) {
	for _, layout := range hdfcDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: want DD/MM/YY", s)
}

// parseMoney reads an amount that may carry thousands separators. Blank is
// zero.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q is negative", s)
	}
	return d, nil
}
