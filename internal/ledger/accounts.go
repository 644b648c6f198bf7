package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/report"
)

// CreateAccount adds an account to the chart.
func (s *Service) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.TaxNumber = strings.TrimSpace(a.TaxNumber)
	switch {
	case a.ID <= 0:
		return model.Account{}, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidAccount, a.ID)
	case a.Name == "":
		return model.Account{}, fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	t, err := model.ParseAccountType(string(a.Type))
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	a.Type = t

	err = s.store.InTx(ctx, func(tx Tx) error {
		return tx.InsertAccount(ctx, a)
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account %d: %w", a.ID, err)
	}
	s.log.Info().Int("account", a.ID).Str("name", a.Name).Msg("account created")
	return a, nil
}

// ListAccounts returns accounts matching f, ordered by name.
func (s *Service) ListAccounts(ctx context.Context, f model.AccountFilter) ([]model.Account, error) {
	all, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	var out []model.Account
	for _, a := range all {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Account looks up a single account.
func (s *Service) Account(ctx context.Context, accountID int) (model.Account, error) {
	chart, err := s.chart(ctx)
	if err != nil {
		return model.Account{}, err
	}
	a, ok := chart.Get(accountID)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %d", ErrAccountNotFound, accountID)
	}
	return a, nil
}

// AccountBalance is an account with its derived balance.
type AccountBalance struct {
	Account model.Account
	AsOf    time.Time
	Balance decimal.Decimal // debit minus credit, opening balance included
}

// AccountBalance derives an account's balance as of a date (nil = today).
func (s *Service) AccountBalance(ctx context.Context, accountID int, asOf *time.Time) (AccountBalance, error) {
	acct, err := s.Account(ctx, accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	date := s.dateOr(asOf, s.today())
	entries, err := s.store.Entries(ctx, model.EntryFilter{AccountID: accountID, To: &date})
	if err != nil {
		return AccountBalance{}, fmt.Errorf("reading entries: %w", err)
	}
	return AccountBalance{
		Account: acct,
		AsOf:    date,
		Balance: report.Balance(acct, entries, date),
	}, nil
}
