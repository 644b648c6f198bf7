package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/importer"
	"github.com/khata-dev/khata/internal/logger"
)

type importOptions struct {
	format  string
	bank    int
	income  int
	expense int
}

func newImportCommand(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Book bank statement rows as receipts and payments",
		Long: `Each statement row becomes a RECEIPT (money in, from the income account)
or a PAYMENT (money out, to the expense account) against the bank account.

Rows whose bank reference is already on an active voucher are skipped,
so importing the same statement twice books nothing new.

Without FILE, every CSV in import/ is imported and then moved to
import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProject(cmd.Context(), global, func(p *project) error {
				accts := importer.Accounts{
					Bank:    firstNonZero(opts.bank, p.cfg.SystemAccounts.Bank),
					Income:  firstNonZero(opts.income, p.cfg.Import.IncomeAccount),
					Expense: firstNonZero(opts.expense, p.cfg.Import.ExpenseAccount),
				}
				if err := accts.Validate(); err != nil {
					return err
				}
				reg := importer.DefaultRegistry()
				im := importer.New(p.svc, accts, logger.WithComponent("importer"))

				files := args
				scanned := len(args) == 0
				if scanned {
					found, err := importer.Scan(p.dir)
					if err != nil {
						return err
					}
					if len(found) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "Nothing to import in %s/\n", importer.Dir)
						return nil
					}
					files = nil
					for _, f := range found {
						files = append(files, f.Path)
					}
				}

				for _, path := range files {
					txns, err := reg.ParseFile(path, opts.format)
					if err != nil {
						return err
					}
					name := filepath.Base(path)
					res, err := im.Import(cmd.Context(), txns)
					if err != nil {
						if res.Posted() > 0 {
							p.commit(cmd.Context(), fmt.Sprintf("import: %s (partial, %d vouchers)", name, res.Posted()))
						}
						return fmt.Errorf("importing %s after %d vouchers: %w", name, res.Posted(), err)
					}
					if scanned {
						if err := importer.MarkProcessed(p.dir, name); err != nil {
							return err
						}
					}
					p.commit(cmd.Context(), fmt.Sprintf("import: %s (%d vouchers)", name, res.Posted()))
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d receipts, %d payments, %d skipped",
						name, res.Receipts, res.Payments, res.Skipped)
					if res.Duplicates > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), " (%d already posted)", res.Duplicates)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "generic", "statement format ("+strings.Join(importer.DefaultRegistry().Formats(), ", ")+")")
	cmd.Flags().IntVar(&opts.bank, "bank", 0, "bank account the statement belongs to (default system_accounts.bank)")
	cmd.Flags().IntVar(&opts.income, "income", 0, "income account for money in (default import.income_account)")
	cmd.Flags().IntVar(&opts.expense, "expense", 0, "expense account for money out (default import.expense_account)")
	return cmd
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
