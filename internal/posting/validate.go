package posting

import (
	"fmt"

	"github.com/khata-dev/khata/internal/model"
)

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// ValidateEntries runs every check a voucher's drafts must pass before
// they are persisted. It returns nil when the drafts are acceptable.
func ValidateEntries(entries []model.EntryDraft, accounts AccountChecker) ValidationErrors {
	var errs ValidationErrors

	if len(entries) < 2 {
		errs = append(errs, ValidationError{
			Rule:        RuleBalanced,
			Description: fmt.Sprintf("a voucher needs at least two legs, got %d", len(entries)),
		})
	}

	if !ValidateBalance(entries) {
		debit, credit := Sums(entries)
		errs = append(errs, ValidationError{
			Rule:        RuleBalanced,
			Description: fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
		})
	}

	seen := make(map[int]bool)
	for _, e := range entries {
		if !e.Debit.IsZero() && !e.Credit.IsZero() {
			errs = append(errs, ValidationError{
				Rule:        RuleOneSided,
				AccountID:   e.AccountID,
				Description: "leg carries both a debit and a credit",
			})
		}

		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:        RuleNonNegative,
				AccountID:   e.AccountID,
				Description: fmt.Sprintf("negative amount (debit %s, credit %s)", e.Debit.StringFixed(2), e.Credit.StringFixed(2)),
			})
		}

		if seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true
		if accounts != nil && !accounts.Exists(e.AccountID) {
			errs = append(errs, ValidationError{
				Rule:        RuleKnownAccount,
				AccountID:   e.AccountID,
				Description: fmt.Sprintf("unknown account %d", e.AccountID),
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
