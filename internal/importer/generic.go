package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// GenericParser reads a normalized statement with a header row naming at
// least date, description and amount columns, in any order. An optional
// reference column is kept as the row reference. Dates are YYYY-MM-DD or
// DD/MM/YYYY.
type GenericParser struct{}

var genericDateFormats = []string{"2006-01-02", "02/01/2006"}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads the statement and returns BankTransactions.
func (p *GenericParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"date", "description", "amount"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("missing %q column", want)
		}
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
		txn, err := parseGenericRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseGenericRow(rec []string, cols map[string]int) (model.BankTransaction, error) {
	raw := strings.TrimSpace(rec[cols["date"]])
	date, err := parseDate(raw)
	if err != nil {
		return model.BankTransaction{}, err
	}

	amountStr := strings.ReplaceAll(strings.TrimSpace(rec[cols["amount"]]), ",", "")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[cols["amount"]], err)
	}

	desc := strings.TrimSpace(rec[cols["description"]])
	ref := ""
	if i, ok := cols["reference"]; ok {
		ref = strings.TrimSpace(rec[i])
	}
	if ref == "" {
		ref = makeRef("stmt", date, desc)
	}

	return model.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   ref,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range genericDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: want YYYY-MM-DD or DD/MM/YYYY", s)
}
