package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/ledger"
	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/posting"
)

func newVoucherCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voucher",
		Short: "Post, list, show and delete vouchers",
	}
	cmd.AddCommand(
		newVoucherPostCommand(global),
		newVoucherListCommand(global),
		newVoucherShowCommand(global),
		newVoucherDeleteCommand(global),
	)
	return cmd
}

type postOptions struct {
	date      string
	party     int
	items     []string
	amount    string
	bank      int
	expense   int
	income    int
	narration string
	reference string
}

func newVoucherPostCommand(global *globalOptions) *cobra.Command {
	var opts postOptions

	cmd := &cobra.Command{
		Use:   "post TYPE",
		Short: "Post a SALES, PURCHASE, PAYMENT or RECEIPT voucher",
		Example: `  khata voucher post sales --party 1201 --item "Consulting:10:1000:18"
  khata voucher post purchase --party 2201 --item "Laptop:1:5000:18"
  khata voucher post payment --party 2201 --amount 5900
  khata voucher post payment --expense 5020 --amount 15000 --narration "April rent"
  khata voucher post receipt --party 1201 --amount 11800 --date 2025-04-15 --reference UTR0001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				req, err := opts.request(args[0], p.cfg.SystemAccounts.Bank)
				if err != nil {
					return err
				}
				res, err := p.svc.PostVoucher(cmd.Context(), req)
				if err != nil {
					return err
				}
				p.commit(cmd.Context(), fmt.Sprintf("voucher: post %s %s", res.Number, money(res.TotalAmount)))

				fmt.Fprintf(cmd.OutOrStdout(), "Posted %s (%s) dated %s, total %s\n",
					res.Number, res.Voucher.Type, day(res.Voucher.Date), money(res.TotalAmount))
				return printEntries(cmd.Context(), cmd.OutOrStdout(), p.svc, res.Entries)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "voucher date, YYYY-MM-DD (default today)")
	f.IntVar(&opts.party, "party", 0, "customer or supplier account")
	f.StringArrayVar(&opts.items, "item", nil, `item line "description:qty:rate:taxrate" (repeatable)`)
	f.StringVar(&opts.amount, "amount", "", "amount when there are no item lines")
	f.IntVar(&opts.bank, "bank", 0, "bank or cash account (default system_accounts.bank)")
	f.IntVar(&opts.expense, "expense", 0, "expense account for a direct payment")
	f.IntVar(&opts.income, "income", 0, "income account for a direct receipt")
	f.StringVar(&opts.narration, "narration", "", "free-text note")
	f.StringVar(&opts.reference, "reference", "", "cheque or UTR number; refused if an active voucher has it")
	return cmd
}

func (o postOptions) request(typ string, defaultBank int) (ledger.PostRequest, error) {
	fields := posting.Fields{
		Type:             typ,
		PartyID:          o.party,
		BankAccountID:    o.bank,
		ExpenseAccountID: o.expense,
		IncomeAccountID:  o.income,
	}
	if fields.BankAccountID == 0 {
		fields.BankAccountID = defaultBank
	}
	if o.amount != "" {
		d, err := decimal.NewFromString(o.amount)
		if err != nil {
			return ledger.PostRequest{}, fmt.Errorf("--amount: %w", err)
		}
		fields.Amount = d
	}
	for _, s := range o.items {
		it, err := parseItem(s)
		if err != nil {
			return ledger.PostRequest{}, err
		}
		fields.Items = append(fields.Items, it)
	}

	in, err := posting.FromFields(fields)
	if err != nil {
		return ledger.PostRequest{}, err
	}
	d, err := parseDate("date", o.date)
	if err != nil {
		return ledger.PostRequest{}, err
	}
	req := ledger.PostRequest{Input: in, Narration: o.narration, Reference: o.reference}
	if d != nil {
		req.Date = *d
	}
	return req, nil
}

// parseItem reads "description:qty:rate:taxrate". The description may
// itself contain colons; the last three fields are always numeric.
func parseItem(s string) (posting.ItemInput, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 4 {
		return posting.ItemInput{}, fmt.Errorf("--item %q: want description:qty:rate:taxrate", s)
	}
	n := len(parts)
	nums := make([]decimal.Decimal, 3)
	for i, raw := range parts[n-3:] {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return posting.ItemInput{}, fmt.Errorf("--item %q: %q is not a number", s, raw)
		}
		nums[i] = d
	}
	return posting.ItemInput{
		Description: strings.TrimSpace(strings.Join(parts[:n-3], ":")),
		Quantity:    nums[0],
		Rate:        nums[1],
		TaxRate:     nums[2],
	}, nil
}

func newVoucherListCommand(global *globalOptions) *cobra.Command {
	var typ, from, to string
	var deleted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vouchers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := model.VoucherFilter{IncludeDeleted: deleted}
			if typ != "" {
				t, err := model.ParseVoucherType(typ)
				if err != nil {
					return err
				}
				f.Type = t
			}
			var err error
			if f.From, err = parseDate("from", from); err != nil {
				return err
			}
			if f.To, err = parseDate("to", to); err != nil {
				return err
			}

			return withProject(cmd.Context(), global, func(p *project) error {
				vs, err := p.svc.ListVouchers(cmd.Context(), f)
				if err != nil {
					return err
				}
				names, err := accountNames(cmd.Context(), p.svc)
				if err != nil {
					return err
				}
				w := newTable(cmd.OutOrStdout())
				row(w, "NUMBER", "DATE", "TYPE", "PARTY", "TOTAL", "NARRATION")
				for _, v := range vs {
					number := v.Number
					if v.Deleted {
						number += " (deleted)"
					}
					row(w, number, day(v.Date), string(v.Type), names[v.PartyID], money(v.TotalAmount), v.Narration)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only this voucher type")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "include deleted vouchers")
	return cmd
}

func newVoucherShowCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|NUMBER",
		Short: "Show a voucher with its items and entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				d, err := p.svc.FindVoucher(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				names, err := accountNames(cmd.Context(), p.svc)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				v := d.Voucher

				w := newTable(out)
				row(w, "Number:", v.Number)
				row(w, "ID:", v.ID.String())
				row(w, "Type:", string(v.Type))
				row(w, "Date:", day(v.Date))
				if v.HasParty() {
					row(w, "Party:", fmt.Sprintf("%d %s", v.PartyID, names[v.PartyID]))
				}
				if v.Narration != "" {
					row(w, "Narration:", v.Narration)
				}
				if v.Reference != "" {
					row(w, "Reference:", v.Reference)
				}
				row(w, "Total:", money(v.TotalAmount))
				if v.Deleted && v.DeletedAt != nil {
					row(w, "Deleted:", v.DeletedAt.Format("2006-01-02 15:04:05"))
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if len(v.Items) > 0 {
					fmt.Fprintln(out)
					w = newTable(out)
					row(w, "ITEM", "QTY", "RATE", "AMOUNT", "TAX%", "TAX", "TOTAL")
					for _, it := range v.Items {
						row(w, it.Description, it.Quantity.String(), money(it.Rate), money(it.Amount),
							it.TaxRate.String(), money(it.TaxAmount), money(it.Total))
					}
					if err := w.Flush(); err != nil {
						return err
					}
				}
				if len(d.Entries) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				return printEntries(cmd.Context(), out, p.svc, d.Entries)
			})
		},
	}
}

func newVoucherDeleteCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID|NUMBER",
		Short: "Soft-delete a voucher so it drops out of every report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				d, err := p.svc.FindVoucher(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := p.svc.DeleteVoucher(cmd.Context(), d.Voucher.ID); err != nil {
					return err
				}
				p.commit(cmd.Context(), "voucher: delete "+d.Voucher.Number)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", d.Voucher.Number)
				return nil
			})
		},
	}
}

func printEntries(ctx context.Context, out io.Writer, svc *ledger.Service, entries []model.LedgerEntry) error {
	names, err := accountNames(ctx, svc)
	if err != nil {
		return err
	}
	w := newTable(out)
	row(w, "ACCOUNT", "NAME", "DEBIT", "CREDIT")
	for _, e := range entries {
		row(w, strconv.Itoa(e.AccountID), names[e.AccountID], money(e.Debit), money(e.Credit))
	}
	return w.Flush()
}

func accountNames(ctx context.Context, svc *ledger.Service) (map[int]string, error) {
	accts, err := svc.ListAccounts(ctx, model.AccountFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(accts))
	for _, a := range accts {
		names[a.ID] = a.Name
	}
	return names, nil
}
