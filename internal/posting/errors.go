package posting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khata-dev/khata/internal/model"
)

// Rejections produced while turning a voucher into ledger entries. None of
// them are transient; callers surface them as a rejected request.
var (
	ErrInvalidVoucherType       = errors.New("no matching posting rule")
	ErrMissingCounterAccount    = errors.New("system account not configured")
	ErrMissingRequiredReference = errors.New("missing required reference")
	ErrUnbalancedEntries        = errors.New("ledger entries do not balance")
	ErrInvalidEntry             = errors.New("invalid ledger entry")
	ErrNonPositiveAmount        = errors.New("amount must be positive")
)

// Rule names a single check performed by ValidateEntries.
type Rule int

const (
	RuleBalanced Rule = iota + 1
	RuleOneSided
	RuleNonNegative
	RuleKnownAccount
)

func (r Rule) String() string {
	switch r {
	case RuleBalanced:
		return "balanced"
	case RuleOneSided:
		return "one-sided"
	case RuleNonNegative:
		return "non-negative"
	case RuleKnownAccount:
		return "known-account"
	default:
		return fmt.Sprintf("rule(%d)", int(r))
	}
}

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        Rule
	AccountID   int // 0 for voucher-level rules
	Description string
}

func (e ValidationError) Error() string {
	if e.AccountID == 0 {
		return fmt.Sprintf("%s: %s", e.Rule, e.Description)
	}
	return fmt.Sprintf("%s [account %d]: %s", e.Rule, e.AccountID, e.Description)
}

// Unwrap maps the rule onto the matching sentinel so callers can use errors.Is.
func (e ValidationError) Unwrap() error {
	switch e.Rule {
	case RuleBalanced:
		return ErrUnbalancedEntries
	case RuleKnownAccount:
		return model.ErrAccountNotFound
	default:
		return ErrInvalidEntry
	}
}

// ValidationErrors collects every violation found for one voucher.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
