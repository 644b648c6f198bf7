package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/posting"
)

const (
	acctCustomer = 1201
	acctSupplier = 2201
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

var sys = posting.SystemAccounts{
	Sales:     accounts.SeedSales,
	Purchase:  accounts.SeedPurchase,
	OutputTax: accounts.SeedOutputGST,
	InputTax:  accounts.SeedInputGST,
}

// testChart has matching opening balances so a fresh trial balance agrees.
func testChart() []model.Account {
	return []model.Account{
		{ID: accounts.SeedBank, Name: "Bank Account - HDFC", Type: model.AccountTypeAsset, OpeningBalance: dec("1000")},
		{ID: acctCustomer, Name: "Reliance Industries Ltd", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "27AAACR5055K1Z5"},
		{ID: accounts.SeedInputGST, Name: "Input GST", Type: model.AccountTypeAsset},
		{ID: accounts.SeedCapital, Name: "Capital Account", Type: model.AccountTypeLiability, OpeningBalance: dec("1000")},
		{ID: acctSupplier, Name: "ABC Suppliers", Type: model.AccountTypeLiability, IsParty: true, TaxNumber: "27AABCA1234B1Z1"},
		{ID: accounts.SeedOutputGST, Name: "Output GST", Type: model.AccountTypeLiability},
		{ID: accounts.SeedSales, Name: "Sales Account", Type: model.AccountTypeIncome},
		{ID: accounts.SeedService, Name: "Service Income", Type: model.AccountTypeIncome},
		{ID: accounts.SeedPurchase, Name: "Purchase Account", Type: model.AccountTypeExpense},
		{ID: accounts.SeedRent, Name: "Rent Expense", Type: model.AccountTypeExpense},
	}
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore(testChart()...)
	svc := NewService(store, sys,
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return time.Date(2025, 4, 30, 15, 4, 5, 0, time.UTC) }),
	)
	return svc, store
}

func saleInput(qty, rate string) posting.SalesInput {
	return posting.SalesInput{
		Party: acctCustomer,
		Items: []posting.ItemInput{{Description: "Widget", Quantity: dec(qty), Rate: dec(rate), TaxRate: dec("18")}},
	}
}

func post(t *testing.T, svc *Service, in posting.Input, d time.Time) *PostResult {
	t.Helper()
	res, err := svc.PostVoucher(context.Background(), PostRequest{Input: in, Date: d})
	require.NoError(t, err)
	return res
}

func TestPostVoucher_Sales(t *testing.T) {
	svc, store := newTestService(t)

	res := post(t, svc, saleInput("10", "100"), date(2025, 4, 2))

	assert.Equal(t, "SV-0001", res.Number)
	assert.True(t, res.TotalAmount.Equal(dec("1180")))
	assert.Equal(t, acctCustomer, res.Voucher.PartyID)
	require.Len(t, res.Voucher.Items, 1)
	assert.True(t, res.Voucher.Items[0].TaxAmount.Equal(dec("180")))

	require.Len(t, res.Entries, 3)
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range res.Entries {
		assert.Equal(t, res.Voucher.ID, e.VoucherID)
		assert.Equal(t, date(2025, 4, 2), e.Date)
		assert.NotZero(t, e.Seq)
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	assert.True(t, debit.Equal(credit))

	stored, err := store.Voucher(context.Background(), res.Voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, "SV-0001", stored.Number)
}

func TestPostVoucher_NumbersPerType(t *testing.T) {
	svc, _ := newTestService(t)
	d := date(2025, 4, 2)

	assert.Equal(t, "SV-0001", post(t, svc, saleInput("1", "100"), d).Number)
	assert.Equal(t, "SV-0002", post(t, svc, saleInput("1", "100"), d).Number)
	assert.Equal(t, "PV-0001", post(t, svc, posting.PurchaseInput{
		Party: acctSupplier,
		Items: []posting.ItemInput{{Quantity: dec("5"), Rate: dec("100"), TaxRate: dec("18")}},
	}, d).Number)
	assert.Equal(t, "PY-0001", post(t, svc, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("590"), To: posting.Party(acctSupplier)}, d).Number)
	assert.Equal(t, "RC-0001", post(t, svc, posting.ReceiptInput{Bank: accounts.SeedBank, Amount: dec("300"), From: posting.Direct(accounts.SeedService)}, d).Number)
}

func TestPostVoucher_PaymentParty(t *testing.T) {
	svc, _ := newTestService(t)

	res := post(t, svc, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("590"), To: posting.Party(acctSupplier)}, date(2025, 4, 10))
	assert.Equal(t, acctSupplier, res.Voucher.PartyID)

	res = post(t, svc, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("15000"), To: posting.Direct(accounts.SeedRent)}, date(2025, 4, 10))
	assert.Zero(t, res.Voucher.PartyID, "direct expense has no party")
}

func TestPostVoucher_DefaultsDateToToday(t *testing.T) {
	svc, _ := newTestService(t)
	res := post(t, svc, saleInput("1", "100"), time.Time{})
	assert.Equal(t, date(2025, 4, 30), res.Voucher.Date)
}

func TestPostVoucher_UnknownAccount(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.PostVoucher(context.Background(), PostRequest{
		Input: posting.SalesInput{Party: 9999, Amount: dec("100"), Items: []posting.ItemInput{{Quantity: dec("1"), Rate: dec("100"), TaxRate: dec("0")}}},
		Date:  date(2025, 4, 2),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccountNotFound))
	assert.Empty(t, store.vouchers)

	// The rejected voucher did not use up a number.
	assert.Equal(t, "SV-0001", post(t, svc, saleInput("1", "100"), date(2025, 4, 2)).Number)
}

func TestPostVoucher_Rejections(t *testing.T) {
	tests := []struct {
		name string
		sys  posting.SystemAccounts
		in   posting.Input
		want error
	}{
		{"nil input", sys, nil, posting.ErrInvalidVoucherType},
		{"no sales account", posting.SystemAccounts{}, saleInput("1", "100"), posting.ErrMissingCounterAccount},
		{"sales without party", sys, posting.SalesInput{Items: saleInput("1", "1").Items}, posting.ErrMissingRequiredReference},
		{"payment without counterparty", sys, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("1")}, posting.ErrMissingRequiredReference},
		{"payment without amount", sys, posting.PaymentInput{Bank: accounts.SeedBank, To: posting.Party(acctSupplier)}, posting.ErrNonPositiveAmount},
		{"negative receipt", sys, posting.ReceiptInput{Bank: accounts.SeedBank, Amount: dec("-118"), From: posting.Party(acctCustomer)}, posting.ErrNonPositiveAmount},
		{"sales with amount only", sys, posting.SalesInput{Party: acctCustomer, Amount: dec("500")}, posting.ErrUnbalancedEntries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testChart()...)
			svc := NewService(store, tt.sys, WithLogger(zerolog.Nop()))
			_, err := svc.PostVoucher(context.Background(), PostRequest{Input: tt.in, Date: date(2025, 4, 2)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, store.vouchers)
			assert.Empty(t, store.entries)
		})
	}
}

func TestPostVoucher_StoreFailureKeepsNothing(t *testing.T) {
	svc, store := newTestService(t)
	store.failNext = errInjected

	_, err := svc.PostVoucher(context.Background(), PostRequest{Input: saleInput("1", "100"), Date: date(2025, 4, 2)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInjected))
	assert.Empty(t, store.vouchers)
	assert.Empty(t, store.entries)

	assert.Equal(t, "SV-0001", post(t, svc, saleInput("1", "100"), date(2025, 4, 2)).Number)
}

func TestPostVoucher_ConcurrentNumbersUnique(t *testing.T) {
	svc, _ := newTestService(t)
	const n = 25

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.PostVoucher(context.Background(), PostRequest{Input: saleInput("1", "100"), Date: date(2025, 4, 2)})
			if assert.NoError(t, err) {
				numbers <- res.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("SV-%04d", i)], "missing SV-%04d", i)
	}
}

func TestDeleteVoucher(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	res := post(t, svc, saleInput("10", "100"), date(2025, 4, 2))

	before, err := svc.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.True(t, before.TotalDebit.Equal(dec("2180")))

	require.NoError(t, svc.DeleteVoucher(ctx, res.Voucher.ID))

	v := store.vouchers[res.Voucher.ID]
	assert.True(t, v.Deleted)
	require.NotNil(t, v.DeletedAt)
	deletedAt := *v.DeletedAt

	after, err := svc.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.True(t, after.TotalDebit.Equal(dec("1000")), "only opening balances remain")
	assert.True(t, after.Balanced)

	// Deleting again is a no-op.
	require.NoError(t, svc.DeleteVoucher(ctx, res.Voucher.ID))
	assert.Equal(t, deletedAt, *store.vouchers[res.Voucher.ID].DeletedAt)

	detail, err := svc.GetVoucher(ctx, res.Voucher.ID)
	require.NoError(t, err)
	assert.True(t, detail.Voucher.Deleted)
	assert.Empty(t, detail.Entries)
}

func TestDeleteVoucher_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteVoucher(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVoucherNotFound))
}

func TestGetAndFindVoucher(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := post(t, svc, saleInput("2", "50"), date(2025, 4, 2))

	detail, err := svc.GetVoucher(ctx, res.Voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, "SV-0001", detail.Voucher.Number)
	assert.Len(t, detail.Entries, 3)

	byNumber, err := svc.FindVoucher(ctx, "SV-0001")
	require.NoError(t, err)
	assert.Equal(t, res.Voucher.ID, byNumber.Voucher.ID)

	byID, err := svc.FindVoucher(ctx, res.Voucher.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SV-0001", byID.Voucher.Number)

	_, err = svc.FindVoucher(ctx, "SV-0099")
	assert.True(t, errors.Is(err, ErrVoucherNotFound))
	_, err = svc.FindVoucher(ctx, "nonsense")
	assert.True(t, errors.Is(err, ErrVoucherNotFound))

	_, err = svc.GetVoucher(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrVoucherNotFound))
}

func TestListVouchers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	post(t, svc, saleInput("1", "100"), date(2025, 4, 2))
	post(t, svc, saleInput("1", "100"), date(2025, 4, 2))
	post(t, svc, posting.ReceiptInput{Bank: accounts.SeedBank, Amount: dec("118"), From: posting.Party(acctCustomer)}, date(2025, 4, 9))
	old := post(t, svc, saleInput("1", "100"), date(2025, 3, 31))
	require.NoError(t, svc.DeleteVoucher(ctx, old.Voucher.ID))

	all, err := svc.ListVouchers(ctx, model.VoucherFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "RC-0001", all[0].Number, "newest first")
	assert.Equal(t, "SV-0002", all[1].Number)
	assert.Equal(t, "SV-0001", all[2].Number)

	sales, err := svc.ListVouchers(ctx, model.VoucherFilter{Type: model.VoucherTypeSales, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, sales, 3)

	_, err = svc.ListVouchers(ctx, model.VoucherFilter{From: ptr(date(2025, 5, 1)), To: ptr(date(2025, 4, 1))})
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}
