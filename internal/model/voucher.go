package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherType identifies the business transaction a voucher records.
type VoucherType string

const (
	VoucherTypeSales    VoucherType = "SALES"
	VoucherTypePurchase VoucherType = "PURCHASE"
	VoucherTypePayment  VoucherType = "PAYMENT"
	VoucherTypeReceipt  VoucherType = "RECEIPT"
)

// VoucherTypes lists the supported voucher types.
var VoucherTypes = []VoucherType{
	VoucherTypeSales,
	VoucherTypePurchase,
	VoucherTypePayment,
	VoucherTypeReceipt,
}

// ErrUnknownVoucherType is returned by ParseVoucherType.
var ErrUnknownVoucherType = errors.New("unknown voucher type")

// ParseVoucherType accepts any casing ("sales", "SALES").
func ParseVoucherType(s string) (VoucherType, error) {
	t := VoucherType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range VoucherTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownVoucherType, s)
}

// Voucher is a recorded business transaction. It is immutable after
// creation except for the soft-delete flag.
type Voucher struct {
	ID          uuid.UUID
	Type        VoucherType
	Number      string // "SV-0001"
	Date        time.Time
	PartyID     int // 0 = no party
	Narration   string
	Reference   string // external id such as a bank UTR; "" = none
	TotalAmount decimal.Decimal
	Deleted     bool
	DeletedAt   *time.Time
	Items       []VoucherItem
}

// HasParty reports whether the voucher references a party account.
func (v Voucher) HasParty() bool {
	return v.PartyID != 0
}

// TaxTotal sums the tax of all item lines.
func (v Voucher) TaxTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range v.Items {
		total = total.Add(it.TaxAmount)
	}
	return total
}

// VoucherItem is one line of a SALES or PURCHASE voucher. Quantity, Rate
// and TaxRate are user input; the rest is derived.
type VoucherItem struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal // Quantity x Rate
	TaxRate     decimal.Decimal // percent, e.g. 18
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal // Amount + TaxAmount
}
