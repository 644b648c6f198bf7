package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
)

// Well-known accounts in the seed chart. init points system_accounts at
// these.
const (
	SeedBank      = 1010
	SeedCash      = 1020
	SeedInputGST  = 1300
	SeedCapital   = 2100
	SeedOutputGST = 2300
	SeedSales     = 4010
	SeedService   = 4020
	SeedPurchase  = 5010
	SeedRent      = 5020
)

// SeedChart returns the starter chart for a small Indian business: bank
// and cash, GST input and output, capital, income and expense heads, and a
// handful of customers and suppliers.
func SeedChart() []model.Account {
	return []model.Account{
		{ID: SeedBank, Name: "Bank Account - HDFC", Type: model.AccountTypeAsset, OpeningBalance: decimal.NewFromInt(500000)},
		{ID: SeedCash, Name: "Cash in Hand", Type: model.AccountTypeAsset, OpeningBalance: decimal.NewFromInt(50000)},
		{ID: 1201, Name: "Reliance Industries Ltd", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "27AAACR5055K1Z5"},
		{ID: 1202, Name: "Tata Consultancy Services", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "27AAACT2727Q1ZV"},
		{ID: 1203, Name: "Infosys Limited", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "29AAACI1681G1ZA"},
		{ID: 1204, Name: "Wipro Limited", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "29AAACW3775F000"},
		{ID: 1205, Name: "HCL Technologies", Type: model.AccountTypeAsset, IsParty: true, TaxNumber: "06AAACH2702H1Z0"},
		{ID: SeedInputGST, Name: "Input GST", Type: model.AccountTypeAsset},
		{ID: SeedCapital, Name: "Capital Account", Type: model.AccountTypeLiability, OpeningBalance: decimal.NewFromInt(1000000)},
		{ID: 2201, Name: "ABC Suppliers", Type: model.AccountTypeLiability, IsParty: true, TaxNumber: "27AABCA1234B1Z1"},
		{ID: 2202, Name: "XYZ Traders", Type: model.AccountTypeLiability, IsParty: true, TaxNumber: "27AABCX5678C1Z2"},
		{ID: 2203, Name: "PQR Enterprises", Type: model.AccountTypeLiability, IsParty: true, TaxNumber: "29AABCP9012D1Z3"},
		{ID: SeedOutputGST, Name: "Output GST", Type: model.AccountTypeLiability},
		{ID: SeedSales, Name: "Sales Account", Type: model.AccountTypeIncome},
		{ID: SeedService, Name: "Service Income", Type: model.AccountTypeIncome},
		{ID: SeedPurchase, Name: "Purchase Account", Type: model.AccountTypeExpense},
		{ID: SeedRent, Name: "Rent Expense", Type: model.AccountTypeExpense},
		{ID: 5030, Name: "Salary Expense", Type: model.AccountTypeExpense},
		{ID: 5040, Name: "Electricity Expense", Type: model.AccountTypeExpense},
	}
}
