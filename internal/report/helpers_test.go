package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(t time.Time) *time.Time { return &t }

var (
	bank     = model.Account{ID: 1010, Name: "Bank Account - HDFC", Type: model.AccountTypeAsset, OpeningBalance: dec("1000")}
	inputGST = model.Account{ID: 1300, Name: "Input GST", Type: model.AccountTypeAsset}
	customer = model.Account{ID: 1201, Name: "Reliance Industries Ltd", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "27AAACR5055K1Z5"}
	supplier = model.Account{ID: 2201, Name: "ABC Suppliers", Type: model.AccountTypeLiability, IsParty: true, TaxNumber: "27AABCA1234B1Z1"}
	capital  = model.Account{ID: 2100, Name: "Capital Account", Type: model.AccountTypeLiability, OpeningBalance: dec("1000")}
	outGST   = model.Account{ID: 2300, Name: "Output GST", Type: model.AccountTypeLiability}
	sales    = model.Account{ID: 4010, Name: "Sales Account", Type: model.AccountTypeIncome}
	service  = model.Account{ID: 4020, Name: "Service Income", Type: model.AccountTypeIncome}
	purchase = model.Account{ID: 5010, Name: "Purchase Account", Type: model.AccountTypeExpense}
	rent     = model.Account{ID: 5020, Name: "Rent Expense", Type: model.AccountTypeExpense}
)

func allAccounts() []model.Account {
	return []model.Account{bank, inputGST, customer, supplier, capital, outGST, sales, service, purchase, rent}
}

type entryBuilder struct {
	seq     int64
	entries []model.LedgerEntry
}

func (b *entryBuilder) add(voucher uuid.UUID, accountID int, d time.Time, debit, credit string) {
	b.seq++
	b.entries = append(b.entries, model.LedgerEntry{
		Seq:       b.seq,
		VoucherID: voucher,
		AccountID: accountID,
		Date:      d,
		Debit:     dec(debit),
		Credit:    dec(credit),
	})
}

// sampleEntries books a sale, a purchase, a supplier payment and a direct
// income receipt in April 2025.
func sampleEntries() []model.LedgerEntry {
	var b entryBuilder
	sv := uuid.New()
	b.add(sv, customer.ID, date(2025, 4, 2), "1180", "0")
	b.add(sv, sales.ID, date(2025, 4, 2), "0", "1000")
	b.add(sv, outGST.ID, date(2025, 4, 2), "0", "180")

	pv := uuid.New()
	b.add(pv, purchase.ID, date(2025, 4, 5), "500", "0")
	b.add(pv, inputGST.ID, date(2025, 4, 5), "90", "0")
	b.add(pv, supplier.ID, date(2025, 4, 5), "0", "590")

	py := uuid.New()
	b.add(py, bank.ID, date(2025, 4, 10), "0", "590")
	b.add(py, supplier.ID, date(2025, 4, 10), "590", "0")

	rc := uuid.New()
	b.add(rc, bank.ID, date(2025, 4, 20), "3000", "0")
	b.add(rc, service.ID, date(2025, 4, 20), "0", "3000")
	return b.entries
}
