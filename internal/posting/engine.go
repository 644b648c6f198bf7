package posting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/id"
	"github.com/khata-dev/khata/internal/model"
)

// Epsilon is the tolerance used when comparing debit and credit totals.
var Epsilon = decimal.New(1, -2)

// Counterparty is the account on the other side of a bank leg: either a
// party (customer/supplier) or a direct income/expense account.
type Counterparty interface {
	AccountID() int
	IsParty() bool
}

// Party settles against a customer or supplier account.
type Party int

func (p Party) AccountID() int { return int(p) }
func (Party) IsParty() bool    { return true }

// Direct books straight to an income or expense account.
type Direct int

func (d Direct) AccountID() int { return int(d) }
func (Direct) IsParty() bool    { return false }

// DeriveSalesEntries debits the customer for the gross amount, credits
// sales for the net amount and credits output tax for the tax collected.
func DeriveSalesEntries(partyID int, total, base, tax decimal.Decimal, salesAccountID, outputTaxAccountID int) []model.EntryDraft {
	return []model.EntryDraft{
		{AccountID: partyID, Debit: total, Credit: decimal.Zero},
		{AccountID: salesAccountID, Debit: decimal.Zero, Credit: base},
		{AccountID: outputTaxAccountID, Debit: decimal.Zero, Credit: tax},
	}
}

// DerivePurchaseEntries debits purchases for the net amount, debits input
// tax for the recoverable tax and credits the supplier for the gross amount.
func DerivePurchaseEntries(partyID int, total, base, tax decimal.Decimal, purchaseAccountID, inputTaxAccountID int) []model.EntryDraft {
	return []model.EntryDraft{
		{AccountID: purchaseAccountID, Debit: base, Credit: decimal.Zero},
		{AccountID: inputTaxAccountID, Debit: tax, Credit: decimal.Zero},
		{AccountID: partyID, Debit: decimal.Zero, Credit: total},
	}
}

// DerivePaymentEntries credits the bank and debits either the supplier or
// a direct expense account.
func DerivePaymentEntries(bankAccountID int, amount decimal.Decimal, to Counterparty) ([]model.EntryDraft, error) {
	if to == nil || to.AccountID() == 0 {
		return nil, fmt.Errorf("%w: payment needs a party or an expense account", ErrMissingRequiredReference)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount is %s", ErrNonPositiveAmount, amount)
	}
	return []model.EntryDraft{
		{AccountID: bankAccountID, Debit: decimal.Zero, Credit: amount},
		{AccountID: to.AccountID(), Debit: amount, Credit: decimal.Zero},
	}, nil
}

// DeriveReceiptEntries debits the bank and credits either the customer or
// a direct income account.
func DeriveReceiptEntries(bankAccountID int, amount decimal.Decimal, from Counterparty) ([]model.EntryDraft, error) {
	if from == nil || from.AccountID() == 0 {
		return nil, fmt.Errorf("%w: receipt needs a party or an income account", ErrMissingRequiredReference)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: receipt amount is %s", ErrNonPositiveAmount, amount)
	}
	return []model.EntryDraft{
		{AccountID: bankAccountID, Debit: amount, Credit: decimal.Zero},
		{AccountID: from.AccountID(), Debit: decimal.Zero, Credit: amount},
	}, nil
}

// Sums returns the debit and credit totals of a set of drafts.
func Sums(entries []model.EntryDraft) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// ValidateBalance reports whether debits and credits agree within Epsilon.
func ValidateBalance(entries []model.EntryDraft) bool {
	debit, credit := Sums(entries)
	return debit.Sub(credit).Abs().LessThan(Epsilon)
}

// VoucherNumber derives the next human-readable number for a voucher type
// given how many vouchers of that type already exist.
func VoucherNumber(t model.VoucherType, existingCount int) string {
	return id.FormatVoucherNumber(id.Prefix(string(t)), existingCount+1)
}
