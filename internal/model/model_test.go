package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoucherType(t *testing.T) {
	tests := []struct {
		in   string
		want VoucherType
	}{
		{"SALES", VoucherTypeSales},
		{"purchase", VoucherTypePurchase},
		{" Payment ", VoucherTypePayment},
		{"receipt", VoucherTypeReceipt},
	}
	for _, tt := range tests {
		got, err := ParseVoucherType(tt.in)
		require.NoError(t, err, "ParseVoucherType(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseVoucherType("JOURNAL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVoucherType))
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("expense")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeExpense, got)

	_, err = ParseAccountType("equity")
	assert.Error(t, err)
}

func TestDebitNormal(t *testing.T) {
	assert.True(t, AccountTypeAsset.DebitNormal())
	assert.True(t, AccountTypeExpense.DebitNormal())
	assert.False(t, AccountTypeLiability.DebitNormal())
	assert.False(t, AccountTypeIncome.DebitNormal())
}

func TestVoucherTaxTotal(t *testing.T) {
	v := Voucher{Items: []VoucherItem{
		{TaxAmount: decimal.RequireFromString("18")},
		{TaxAmount: decimal.RequireFromString("2.5")},
	}}
	assert.True(t, v.TaxTotal().Equal(decimal.RequireFromString("20.5")))
	assert.False(t, v.HasParty())
}

func TestDay(t *testing.T) {
	in := time.Date(2025, 4, 3, 17, 45, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), Day(in))
}

func TestVoucherFilter(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	v := Voucher{Type: VoucherTypeSales, Date: time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC)}

	assert.True(t, VoucherFilter{From: &from, To: &to}.Match(v), "end date is inclusive")
	assert.False(t, VoucherFilter{Type: VoucherTypePayment}.Match(v))

	v.Deleted = true
	assert.False(t, VoucherFilter{}.Match(v))
	assert.True(t, VoucherFilter{IncludeDeleted: true}.Match(v))
}

func TestAccountFilter(t *testing.T) {
	party := Account{Type: AccountTypeAsset, IsParty: true}
	bank := Account{Type: AccountTypeAsset}

	assert.True(t, AccountFilter{}.Match(bank))
	assert.False(t, AccountFilter{PartyOnly: true}.Match(bank))
	assert.True(t, AccountFilter{Type: AccountTypeAsset, PartyOnly: true}.Match(party))
	assert.False(t, AccountFilter{Type: AccountTypeLiability}.Match(party))
}
