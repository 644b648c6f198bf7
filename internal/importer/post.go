package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/khata-dev/khata/internal/ledger"
	"github.com/khata-dev/khata/internal/model"
	"github.com/khata-dev/khata/internal/posting"
)

// Poster posts one voucher and lists what is already on the books.
// *ledger.Service satisfies it.
type Poster interface {
	PostVoucher(ctx context.Context, req ledger.PostRequest) (*ledger.PostResult, error)
	ListVouchers(ctx context.Context, f model.VoucherFilter) ([]model.Voucher, error)
}

// Accounts are the chart accounts statement rows are booked against.
type Accounts struct {
	Bank    int // the account the statement belongs to
	Income  int // direct income for money in
	Expense int // direct expense for money out
}

// Validate reports which of the accounts is missing.
func (a Accounts) Validate() error {
	var errs []error
	if a.Bank == 0 {
		errs = append(errs, errors.New("bank account is required"))
	}
	if a.Income == 0 {
		errs = append(errs, errors.New("income account is required"))
	}
	if a.Expense == 0 {
		errs = append(errs, errors.New("expense account is required"))
	}
	return errors.Join(errs...)
}

// Result summarizes an import run.
type Result struct {
	Receipts   int
	Payments   int
	Skipped    int      // zero-amount and already-posted rows
	Duplicates int      // the already-posted part of Skipped
	Numbers    []string // voucher numbers in statement order
}

// Posted is the number of vouchers created.
func (r Result) Posted() int { return r.Receipts + r.Payments }

// Importer books statement rows as RECEIPT or PAYMENT vouchers.
type Importer struct {
	poster   Poster
	accounts Accounts
	log      zerolog.Logger
}

// New returns an Importer posting through p.
func New(p Poster, accts Accounts, log zerolog.Logger) *Importer {
	return &Importer{poster: p, accounts: accts, log: log}
}

// Import posts one voucher per row. Positive amounts become receipts from
// the income account, negative amounts payments to the expense account.
// Rows whose reference an active voucher already carries are skipped, so a
// statement can be imported again safely. It stops at the first rejected
// row; rows before it stay posted.
func (im *Importer) Import(ctx context.Context, txns []model.BankTransaction) (Result, error) {
	var res Result
	if err := im.accounts.Validate(); err != nil {
		return res, err
	}

	booked, err := im.bookedReferences(ctx)
	if err != nil {
		return res, err
	}

	refs := referencesFor(txns)
	for i, txn := range txns {
		req, ok := im.request(txn)
		if !ok {
			res.Skipped++
			im.log.Debug().Str("reference", refs[i]).Msg("skipping zero-amount row")
			continue
		}
		req.Reference = refs[i]
		if number, dup := booked[refs[i]]; dup {
			res.Skipped++
			res.Duplicates++
			im.log.Debug().Str("reference", refs[i]).Str("number", number).Msg("skipping row already posted")
			continue
		}

		posted, err := im.poster.PostVoucher(ctx, req)
		if errors.Is(err, model.ErrDuplicateReference) {
			res.Skipped++
			res.Duplicates++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("row %d (%s): %w", i+1, refs[i], err)
		}
		if txn.Inflow() {
			res.Receipts++
		} else {
			res.Payments++
		}
		res.Numbers = append(res.Numbers, posted.Number)
	}

	im.log.Info().
		Int("receipts", res.Receipts).
		Int("payments", res.Payments).
		Int("skipped", res.Skipped).
		Int("duplicates", res.Duplicates).
		Msg("statement imported")
	return res, nil
}

// bookedReferences maps the reference of every active voucher to its number.
func (im *Importer) bookedReferences(ctx context.Context) (map[string]string, error) {
	vs, err := im.poster.ListVouchers(ctx, model.VoucherFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading posted vouchers: %w", err)
	}
	booked := make(map[string]string)
	for _, v := range vs {
		if v.Reference != "" {
			booked[v.Reference] = v.Number
		}
	}
	return booked, nil
}

// referencesFor returns the voucher reference of each row. A reference seen
// earlier in the same statement gets a "#n" suffix by occurrence, so the
// same file always yields the same references.
func referencesFor(txns []model.BankTransaction) []string {
	refs := make([]string, len(txns))
	seen := make(map[string]int, len(txns))
	for i, txn := range txns {
		ref := strings.TrimSpace(txn.Reference)
		if ref == "" {
			continue
		}
		seen[ref]++
		if n := seen[ref]; n > 1 {
			ref = fmt.Sprintf("%s#%d", ref, n)
		}
		refs[i] = ref
	}
	return refs
}

func (im *Importer) request(txn model.BankTransaction) (ledger.PostRequest, bool) {
	if txn.Amount.IsZero() {
		return ledger.PostRequest{}, false
	}

	var in posting.Input
	if txn.Inflow() {
		in = posting.ReceiptInput{
			Bank:   im.accounts.Bank,
			Amount: txn.Amount,
			From:   posting.Direct(im.accounts.Income),
		}
	} else {
		in = posting.PaymentInput{
			Bank:   im.accounts.Bank,
			Amount: txn.Amount.Abs(),
			To:     posting.Direct(im.accounts.Expense),
		}
	}

	narration := txn.Description
	if txn.Reference != "" {
		narration = fmt.Sprintf("%s [%s]", txn.Description, txn.Reference)
	}
	return ledger.PostRequest{Input: in, Date: txn.Date, Narration: narration}, true
}
