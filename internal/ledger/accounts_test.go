package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-dev/khata/internal/accounts"
	"github.com/khata-dev/khata/internal/model"
)

func TestCreateAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, model.Account{ID: 5050, Name: "  Internet Expense ", Type: "expense"})
	require.NoError(t, err)
	assert.Equal(t, "Internet Expense", a.Name)
	assert.Equal(t, model.AccountTypeExpense, a.Type)

	got, err := svc.Account(ctx, 5050)
	require.NoError(t, err)
	assert.Equal(t, "Internet Expense", got.Name)

	_, err = svc.CreateAccount(ctx, model.Account{ID: 5050, Name: "Again", Type: model.AccountTypeExpense})
	assert.True(t, errors.Is(err, ErrDuplicateAccount))
}

func TestCreateAccount_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name string
		acct model.Account
	}{
		{"zero id", model.Account{Name: "X", Type: model.AccountTypeAsset}},
		{"blank name", model.Account{ID: 7000, Name: "  ", Type: model.AccountTypeAsset}},
		{"bad type", model.Account{ID: 7000, Name: "X", Type: "EQUITY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), tt.acct)
			assert.True(t, errors.Is(err, ErrInvalidAccount), "got %v", err)
		})
	}
}

func TestListAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListAccounts(ctx, model.AccountFilter{})
	require.NoError(t, err)
	require.Len(t, all, len(testChart()))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name, "sorted by name")
	}

	parties, err := svc.ListAccounts(ctx, model.AccountFilter{PartyOnly: true})
	require.NoError(t, err)
	require.Len(t, parties, 2)
	assert.Equal(t, "ABC Suppliers", parties[0].Name)

	income, err := svc.ListAccounts(ctx, model.AccountFilter{Type: model.AccountTypeIncome})
	require.NoError(t, err)
	assert.Len(t, income, 2)
}

func TestAccountBalance(t *testing.T) {
	svc, _ := newTestService(t)
	seedActivity(t, svc)
	ctx := context.Background()

	bal, err := svc.AccountBalance(ctx, accounts.SeedBank, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 4, 30), bal.AsOf)
	assert.True(t, bal.Balance.Equal(dec("710")))

	early, err := svc.AccountBalance(ctx, accounts.SeedBank, ptr(date(2025, 4, 9)))
	require.NoError(t, err)
	assert.True(t, early.Balance.Equal(dec("800")))

	_, err = svc.AccountBalance(ctx, 9999, nil)
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}
