package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/posting"
	"github.com/khata-dev/khata/internal/report"
)

// seedActivity books one month of trade:
// a sale of 1180, a purchase of 590, a supplier payment of 590, a
// customer receipt of 500 and rent of 200 paid in March.
func seedActivity(t *testing.T, svc *Service) {
	t.Helper()
	post(t, svc, saleInput("10", "100"), date(2025, 4, 2))
	post(t, svc, posting.PurchaseInput{
		Party: acctSupplier,
		Items: []posting.ItemInput{{Quantity: dec("5"), Rate: dec("100"), TaxRate: dec("18")}},
	}, date(2025, 4, 5))
	post(t, svc, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("590"), To: posting.Party(acctSupplier)}, date(2025, 4, 10))
	post(t, svc, posting.ReceiptInput{Bank: accounts.SeedBank, Amount: dec("500"), From: posting.Party(acctCustomer)}, date(2025, 4, 20))
	post(t, svc, posting.PaymentInput{Bank: accounts.SeedBank, Amount: dec("200"), To: posting.Direct(accounts.SeedRent)}, date(2025, 3, 15))
}

func TestTrialBalance_BalancedAndIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)
	ctx := context.Background()

	first, err := svc.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.True(t, first.Balanced)
	assert.Equal(t, date(2025, 4, 30), first.AsOf)

	second, err := svc.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	march, err := svc.TrialBalance(ctx, ptr(date(2025, 3, 31)))
	require.NoError(t, err)
	assert.True(t, march.Balanced)
	// Opening 1000 plus the rent debit.
	assert.True(t, march.TotalDebit.Equal(dec("1200")), "got %s", march.TotalDebit)
}

func TestProfitAndLoss_DefaultWindow(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)

	pl, err := svc.ProfitAndLoss(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 1), pl.Start)
	assert.Equal(t, date(2025, 4, 30), pl.End)
	assert.True(t, pl.TotalIncome.Equal(dec("1000")))
	assert.True(t, pl.TotalExpenses.Equal(dec("700")), "purchase 500 plus rent 200")
	assert.True(t, pl.NetProfit.Equal(dec("300")))

	april, err := svc.ProfitAndLoss(context.Background(), ptr(date(2025, 4, 1)), nil)
	require.NoError(t, err)
	assert.True(t, april.NetProfit.Equal(dec("500")))

	_, err = svc.ProfitAndLoss(context.Background(), ptr(date(2025, 5, 1)), ptr(date(2025, 4, 1)))
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestGST_DefaultsToCurrentMonth(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)

	rep, err := svc.GST(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Month)
	assert.Equal(t, 2025, rep.Year)
	assert.True(t, rep.OutputTax.Equal(dec("180")))
	assert.True(t, rep.InputTax.Equal(dec("90")))
	assert.True(t, rep.NetTax.Equal(dec("90")))
	assert.Equal(t, report.GSTPayable, rep.Status)
	require.Len(t, rep.Sales, 1)
	assert.Equal(t, "27AAACR5055K1Z5", rep.Sales[0].TaxNumber)

	march, err := svc.GST(context.Background(), 3, 2025)
	require.NoError(t, err)
	assert.Empty(t, march.Sales)
	assert.Equal(t, report.GSTRefundable, march.Status)

	_, err = svc.GST(context.Background(), 13, 2025)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestOutstanding(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)

	rep, err := svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Receivables, 1)
	assert.Equal(t, acctCustomer, rep.Receivables[0].AccountID)
	assert.True(t, rep.Receivables[0].Balance.Equal(dec("680")))
	assert.Empty(t, rep.Payables, "supplier is settled")
	assert.True(t, rep.NetPosition.Equal(dec("680")))
}

func TestLedger(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)
	ctx := context.Background()

	led, err := svc.Ledger(ctx, accounts.SeedBank, nil, nil)
	require.NoError(t, err)
	require.Len(t, led.Lines, 3)
	assert.Equal(t, date(2025, 3, 15), led.Lines[0].Date)
	assert.True(t, led.OpeningBalance.Equal(dec("1000")))
	assert.True(t, led.ClosingBalance.Equal(dec("710")), "1000 - 200 - 590 + 500")

	april, err := svc.Ledger(ctx, accounts.SeedBank, ptr(date(2025, 4, 1)), ptr(date(2025, 4, 30)))
	require.NoError(t, err)
	assert.Len(t, april.Lines, 2)

	_, err = svc.Ledger(ctx, 9999, nil, nil)
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestDayBook(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)

	today, err := svc.DayBook(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, today.Vouchers)

	april, err := svc.DayBook(context.Background(), ptr(date(2025, 4, 1)), nil)
	require.NoError(t, err)
	assert.Len(t, april.Vouchers, 4)
	assert.Equal(t, 2, april.ByType[model.VoucherTypePayment].Count+april.ByType[model.VoucherTypeReceipt].Count)
	assert.True(t, april.GrandTotal.Equal(dec("2860")))
}
