package posting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// Input is the business intent of one voucher. Exactly one of SalesInput,
// PurchaseInput, PaymentInput or ReceiptInput.
type Input interface {
	VoucherType() model.VoucherType
}

// SalesInput bills a customer. Amount is only used when Items is empty.
type SalesInput struct {
	Party  int
	Items  []ItemInput
	Amount decimal.Decimal
}

// PurchaseInput records a supplier bill. Amount is only used when Items is empty.
type PurchaseInput struct {
	Party  int
	Items  []ItemInput
	Amount decimal.Decimal
}

// PaymentInput pays money out of a bank or cash account.
type PaymentInput struct {
	Bank   int
	Amount decimal.Decimal
	To     Counterparty
}

// ReceiptInput takes money into a bank or cash account.
type ReceiptInput struct {
	Bank   int
	Amount decimal.Decimal
	From   Counterparty
}

func (SalesInput) VoucherType() model.VoucherType    { return model.VoucherTypeSales }
func (PurchaseInput) VoucherType() model.VoucherType { return model.VoucherTypePurchase }
func (PaymentInput) VoucherType() model.VoucherType  { return model.VoucherTypePayment }
func (ReceiptInput) VoucherType() model.VoucherType  { return model.VoucherTypeReceipt }

// Fields is the loose, untyped shape callers such as the CLI collect before
// a voucher type has been checked. FromFields turns it into an Input.
type Fields struct {
	Type             string
	PartyID          int
	Items            []ItemInput
	Amount           decimal.Decimal
	BankAccountID    int
	ExpenseAccountID int
	IncomeAccountID  int
}

// FromFields validates the per-type required references. Items are only
// meaningful for SALES and PURCHASE and are ignored otherwise.
func FromFields(f Fields) (Input, error) {
	t, err := model.ParseVoucherType(f.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVoucherType, f.Type)
	}

	switch t {
	case model.VoucherTypeSales:
		return SalesInput{Party: f.PartyID, Items: f.Items, Amount: f.Amount}, nil
	case model.VoucherTypePurchase:
		return PurchaseInput{Party: f.PartyID, Items: f.Items, Amount: f.Amount}, nil
	case model.VoucherTypePayment:
		to, err := counterparty(f.PartyID, f.ExpenseAccountID, "expense")
		if err != nil {
			return nil, err
		}
		return PaymentInput{Bank: f.BankAccountID, Amount: f.Amount, To: to}, nil
	case model.VoucherTypeReceipt:
		from, err := counterparty(f.PartyID, f.IncomeAccountID, "income")
		if err != nil {
			return nil, err
		}
		return ReceiptInput{Bank: f.BankAccountID, Amount: f.Amount, From: from}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidVoucherType, f.Type)
}

func counterparty(partyID, directID int, kind string) (Counterparty, error) {
	switch {
	case partyID != 0 && directID != 0:
		return nil, fmt.Errorf("%w: give either a party or an %s account, not both", ErrMissingRequiredReference, kind)
	case partyID != 0:
		return Party(partyID), nil
	case directID != 0:
		return Direct(directID), nil
	default:
		return nil, fmt.Errorf("%w: a party or an %s account is required", ErrMissingRequiredReference, kind)
	}
}

// SystemAccounts are the well-known accounts the posting rules credit or
// debit on the business's side. Zero means not configured.
type SystemAccounts struct {
	Sales     int
	Purchase  int
	OutputTax int
	InputTax  int
}

// Posting is the derived, balanced result for one voucher.
type Posting struct {
	Type    model.VoucherType
	PartyID int
	Items   []model.VoucherItem
	Totals  Totals
	Entries []model.EntryDraft
}

// Post derives the ledger entries for in and checks that they balance.
// It performs no I/O.
func Post(in Input, sys SystemAccounts) (*Posting, error) {
	var p *Posting
	var err error

	switch v := in.(type) {
	case SalesInput:
		p, err = postSales(v, sys)
	case PurchaseInput:
		p, err = postPurchase(v, sys)
	case PaymentInput:
		p, err = postPayment(v)
	case ReceiptInput:
		p, err = postReceipt(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidVoucherType, in)
	}
	if err != nil {
		return nil, err
	}

	if !ValidateBalance(p.Entries) {
		debit, credit := Sums(p.Entries)
		return nil, fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedEntries, debit.StringFixed(2), credit.StringFixed(2))
	}
	return p, nil
}

// itemTotals uses the item lines when present, otherwise the supplied
// amount becomes the total with no base or tax.
func itemTotals(inputs []ItemInput, amount decimal.Decimal) ([]model.VoucherItem, Totals) {
	if len(inputs) > 0 {
		return DeriveItems(inputs)
	}
	return nil, Totals{Base: decimal.Zero, Tax: decimal.Zero, Total: amount}
}

func postSales(in SalesInput, sys SystemAccounts) (*Posting, error) {
	if sys.Sales == 0 {
		return nil, fmt.Errorf("%w: sales account", ErrMissingCounterAccount)
	}
	if sys.OutputTax == 0 {
		return nil, fmt.Errorf("%w: output tax account", ErrMissingCounterAccount)
	}
	if in.Party == 0 {
		return nil, fmt.Errorf("%w: sales voucher needs a party", ErrMissingRequiredReference)
	}

	items, totals := itemTotals(in.Items, in.Amount)
	return &Posting{
		Type:    model.VoucherTypeSales,
		PartyID: in.Party,
		Items:   items,
		Totals:  totals,
		Entries: DeriveSalesEntries(in.Party, totals.Total, totals.Base, totals.Tax, sys.Sales, sys.OutputTax),
	}, nil
}

func postPurchase(in PurchaseInput, sys SystemAccounts) (*Posting, error) {
	if sys.Purchase == 0 {
		return nil, fmt.Errorf("%w: purchase account", ErrMissingCounterAccount)
	}
	if sys.InputTax == 0 {
		return nil, fmt.Errorf("%w: input tax account", ErrMissingCounterAccount)
	}
	if in.Party == 0 {
		return nil, fmt.Errorf("%w: purchase voucher needs a party", ErrMissingRequiredReference)
	}

	items, totals := itemTotals(in.Items, in.Amount)
	return &Posting{
		Type:    model.VoucherTypePurchase,
		PartyID: in.Party,
		Items:   items,
		Totals:  totals,
		Entries: DerivePurchaseEntries(in.Party, totals.Total, totals.Base, totals.Tax, sys.Purchase, sys.InputTax),
	}, nil
}

func postPayment(in PaymentInput) (*Posting, error) {
	if in.Bank == 0 {
		return nil, fmt.Errorf("%w: payment needs a bank or cash account", ErrMissingRequiredReference)
	}
	entries, err := DerivePaymentEntries(in.Bank, in.Amount, in.To)
	if err != nil {
		return nil, err
	}
	return &Posting{
		Type:    model.VoucherTypePayment,
		PartyID: partyOf(in.To),
		Totals:  Totals{Base: in.Amount, Tax: decimal.Zero, Total: in.Amount},
		Entries: entries,
	}, nil
}

func postReceipt(in ReceiptInput) (*Posting, error) {
	if in.Bank == 0 {
		return nil, fmt.Errorf("%w: receipt needs a bank or cash account", ErrMissingRequiredReference)
	}
	entries, err := DeriveReceiptEntries(in.Bank, in.Amount, in.From)
	if err != nil {
		return nil, err
	}
	return &Posting{
		Type:    model.VoucherTypeReceipt,
		PartyID: partyOf(in.From),
		Totals:  Totals{Base: in.Amount, Tax: decimal.Zero, Total: in.Amount},
		Entries: entries,
	}, nil
}

func partyOf(c Counterparty) int {
	if c != nil && c.IsParty() {
		return c.AccountID()
	}
	return 0
}
