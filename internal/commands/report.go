package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/report"
)

func newReportCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports derived from the ledger",
	}
	cmd.AddCommand(
		newTrialBalanceCommand(global),
		newProfitLossCommand(global),
		newGSTCommand(global),
		newOutstandingCommand(global),
		newLedgerCommand(global),
		newDayBookCommand(global),
	)
	return cmd
}

func newTrialBalanceCommand(global *globalOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Debit and credit totals per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseDate("as-of", asOf)
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), global, func(p *project) error {
				tb, err := p.svc.TrialBalance(cmd.Context(), at)
				if err != nil {
					return err
				}
				return printTrialBalance(cmd.OutOrStdout(), tb)
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "last date included, YYYY-MM-DD (default today)")
	return cmd
}

func printTrialBalance(out io.Writer, tb report.TrialBalance) error {
	fmt.Fprintf(out, "Trial balance as of %s\n\n", day(tb.AsOf))
	w := newTable(out)
	row(w, "ID", "ACCOUNT", "TYPE", "DEBIT", "CREDIT")
	for _, r := range tb.Rows {
		row(w, strconv.Itoa(r.AccountID), r.AccountName, string(r.AccountType), money(r.Debit), money(r.Credit))
	}
	row(w, "", "Total", "", money(tb.TotalDebit), money(tb.TotalCredit))
	if err := w.Flush(); err != nil {
		return err
	}
	if !tb.Balanced {
		fmt.Fprintln(out, "\nWARNING: debits and credits do not agree")
	}
	return nil
}

func newProfitLossCommand(global *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "pl",
		Aliases: []string{"profit-loss"},
		Short:   "Income less expenses over a period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("to", to)
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), global, func(p *project) error {
				pl, err := p.svc.ProfitAndLoss(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				return printProfitLoss(cmd.OutOrStdout(), pl)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default January 1 of this year)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")
	return cmd
}

func printProfitLoss(out io.Writer, pl report.ProfitAndLoss) error {
	fmt.Fprintf(out, "Profit and loss %s to %s\n\n", day(pl.Start), day(pl.End))
	w := newTable(out)
	row(w, "INCOME", "")
	for _, r := range pl.Income {
		row(w, "  "+r.AccountName, money(r.Amount))
	}
	row(w, "Total income", money(pl.TotalIncome))
	row(w, "", "")
	row(w, "EXPENSES", "")
	for _, r := range pl.Expenses {
		row(w, "  "+r.AccountName, money(r.Amount))
	}
	row(w, "Total expenses", money(pl.TotalExpenses))
	row(w, "", "")
	label := "Net profit"
	if pl.NetProfit.IsNegative() {
		label = "Net loss"
	}
	row(w, label, money(pl.NetProfit.Abs()))
	return w.Flush()
}

func newGSTCommand(global *globalOptions) *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "gst",
		Short: "Output and input GST for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				g, err := p.svc.GST(cmd.Context(), month, year)
				if err != nil {
					return err
				}
				return printGST(cmd.OutOrStdout(), g)
			})
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default this month)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default this year)")
	return cmd
}

func printGST(out io.Writer, g report.GSTReport) error {
	fmt.Fprintf(out, "GST for %02d/%d\n", g.Month, g.Year)
	for _, sec := range []struct {
		title string
		rows  []report.GSTRow
	}{{"Sales (output tax)", g.Sales}, {"Purchases (input tax)", g.Purchases}} {
		fmt.Fprintf(out, "\n%s\n", sec.title)
		w := newTable(out)
		row(w, "NUMBER", "DATE", "PARTY", "GSTIN", "AMOUNT", "TAX", "TOTAL")
		for _, r := range sec.rows {
			row(w, r.VoucherNumber, day(r.Date), r.PartyName, r.TaxNumber, money(r.Amount), money(r.Tax), money(r.Total))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	w := newTable(out)
	row(w, "Output tax:", money(g.OutputTax))
	row(w, "Input tax:", money(g.InputTax))
	row(w, "Net tax:", money(g.NetTax), g.Status)
	return w.Flush()
}

func newOutstandingCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding",
		Short: "Receivables and payables per party",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				o, err := p.svc.Outstanding(cmd.Context())
				if err != nil {
					return err
				}
				return printOutstanding(cmd.OutOrStdout(), o)
			})
		},
	}
}

func printOutstanding(out io.Writer, o report.OutstandingReport) error {
	for _, sec := range []struct {
		title string
		rows  []report.PartyBalance
		total string
	}{
		{"Receivables", o.Receivables, money(o.TotalReceivable)},
		{"Payables", o.Payables, money(o.TotalPayable)},
	} {
		fmt.Fprintln(out, sec.title)
		w := newTable(out)
		row(w, "ID", "PARTY", "GSTIN", "BALANCE")
		for _, r := range sec.rows {
			row(w, strconv.Itoa(r.AccountID), r.Name, r.TaxNumber, money(r.Balance))
		}
		row(w, "", "Total", "", sec.total)
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Net position: %s\n", money(o.NetPosition))
	return nil
}

func newLedgerCommand(global *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "ledger ACCOUNT",
		Short: "Entries of one account with a running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("account id %q is not a number", args[0])
			}
			start, err := parseDate("from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("to", to)
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), global, func(p *project) error {
				l, err := p.svc.Ledger(cmd.Context(), accountID, start, end)
				if err != nil {
					return err
				}
				numbers, err := voucherNumbers(cmd, p)
				if err != nil {
					return err
				}
				return printLedger(cmd.OutOrStdout(), l, numbers)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	return cmd
}

func voucherNumbers(cmd *cobra.Command, p *project) (map[uuid.UUID]string, error) {
	vs, err := p.svc.ListVouchers(cmd.Context(), model.VoucherFilter{})
	if err != nil {
		return nil, err
	}
	numbers := make(map[uuid.UUID]string, len(vs))
	for _, v := range vs {
		numbers[v.ID] = v.Number
	}
	return numbers, nil
}

func printLedger(out io.Writer, l report.Ledger, numbers map[uuid.UUID]string) error {
	fmt.Fprintf(out, "Ledger %d %s (%s)\n\n", l.Account.ID, l.Account.Name, l.Account.Type)
	w := newTable(out)
	row(w, "DATE", "VOUCHER", "DEBIT", "CREDIT", "BALANCE")
	row(w, "", "Opening", "", "", money(l.OpeningBalance))
	for _, line := range l.Lines {
		row(w, day(line.Date), numbers[line.VoucherID], money(line.Debit), money(line.Credit), money(line.RunningBalance))
	}
	row(w, "", "Closing", "", "", money(l.ClosingBalance))
	return w.Flush()
}

func newDayBookCommand(global *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "daybook",
		Short: "Vouchers in a date range with per-type totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("to", to)
			if err != nil {
				return err
			}
			return withProject(cmd.Context(), global, func(p *project) error {
				db, err := p.svc.DayBook(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				return printDayBook(cmd.OutOrStdout(), db)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default --to)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")
	return cmd
}

func printDayBook(out io.Writer, db report.DayBook) error {
	fmt.Fprintf(out, "Day book %s to %s\n\n", day(db.Start), day(db.End))
	w := newTable(out)
	row(w, "DATE", "NUMBER", "TYPE", "TOTAL", "NARRATION")
	for _, v := range db.Vouchers {
		row(w, day(v.Date), v.Number, string(v.Type), money(v.TotalAmount), v.Narration)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = newTable(out)
	row(w, "TYPE", "COUNT", "TOTAL")
	for _, t := range model.VoucherTypes {
		s, ok := db.ByType[t]
		if !ok {
			continue
		}
		row(w, string(t), strconv.Itoa(s.Count), money(s.Total))
	}
	row(w, "Grand total", "", money(db.GrandTotal))
	return w.Flush()
}
