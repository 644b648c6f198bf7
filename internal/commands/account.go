package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/model"
)

func newAccountCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountListCommand(global),
		newAccountAddCommand(global),
		newAccountShowCommand(global),
	)
	return cmd
}

func newAccountListCommand(global *globalOptions) *cobra.Command {
	var typ string
	var partyOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := model.AccountFilter{PartyOnly: partyOnly}
			if typ != "" {
				t, err := model.ParseAccountType(typ)
				if err != nil {
					return err
				}
				f.Type = t
			}

			return withProject(cmd.Context(), global, func(p *project) error {
				accts, err := p.svc.ListAccounts(cmd.Context(), f)
				if err != nil {
					return err
				}
				w := newTable(cmd.OutOrStdout())
				row(w, "ID", "NAME", "TYPE", "PARTY", "GSTIN", "OPENING")
				for _, a := range accts {
					row(w, strconv.Itoa(a.ID), a.Name, string(a.Type), yesNo(a.IsParty), a.TaxNumber, money(a.OpeningBalance))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only this account type (asset, liability, income, expense)")
	cmd.Flags().BoolVar(&partyOnly, "party", false, "only customers and suppliers")
	return cmd
}

func newAccountAddCommand(global *globalOptions) *cobra.Command {
	var (
		a       model.Account
		typ     string
		opening string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Type = model.AccountType(typ)
			if opening != "" {
				d, err := decimal.NewFromString(opening)
				if err != nil {
					return fmt.Errorf("--opening: %w", err)
				}
				a.OpeningBalance = d
			}

			return withProject(cmd.Context(), global, func(p *project) error {
				created, err := p.svc.CreateAccount(cmd.Context(), a)
				if err != nil {
					return err
				}
				p.commit(cmd.Context(), fmt.Sprintf("account: add %d %s", created.ID, created.Name))
				fmt.Fprintf(cmd.OutOrStdout(), "Added account %d %s (%s)\n", created.ID, created.Name, created.Type)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&a.ID, "id", 0, "account number (required)")
	cmd.Flags().StringVar(&a.Name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&typ, "type", "", "asset, liability, income or expense (required)")
	cmd.Flags().BoolVar(&a.IsParty, "party", false, "customer or supplier account")
	cmd.Flags().StringVar(&a.TaxNumber, "tax-number", "", "party GSTIN")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance")
	for _, f := range []string{"id", "name", "type"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newAccountShowCommand(global *globalOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("account id %q is not a number", args[0])
			}
			at, err := parseDate("as-of", asOf)
			if err != nil {
				return err
			}

			return withProject(cmd.Context(), global, func(p *project) error {
				bal, err := p.svc.AccountBalance(cmd.Context(), id, at)
				if err != nil {
					return err
				}
				a := bal.Account
				w := newTable(cmd.OutOrStdout())
				row(w, "ID:", strconv.Itoa(a.ID))
				row(w, "Name:", a.Name)
				row(w, "Type:", string(a.Type))
				if a.IsParty {
					row(w, "Party:", "yes")
				}
				if a.TaxNumber != "" {
					row(w, "GSTIN:", a.TaxNumber)
				}
				row(w, "Opening:", money(a.OpeningBalance))
				row(w, "Balance as of "+day(bal.AsOf)+":", money(bal.Balance))
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date, YYYY-MM-DD (default today)")
	return cmd
}
