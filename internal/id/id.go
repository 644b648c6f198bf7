package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FallbackPrefix is used for voucher types without a registered prefix.
const FallbackPrefix = "VO"

var prefixes = map[string]string{
	"SALES":    "SV",
	"PURCHASE": "PV",
	"PAYMENT":  "PY",
	"RECEIPT":  "RC",
}

// Prefix returns the voucher number prefix for a voucher type name.
func Prefix(voucherType string) string {
	if p, ok := prefixes[voucherType]; ok {
		return p
	}
	return FallbackPrefix
}

// FormatVoucherNumber returns a number like "SV-0001". Sequences above 9999
// simply widen ("SV-10000").
func FormatVoucherNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// ParseVoucherNumber parses "SV-0012" into its prefix and sequence.
func ParseVoucherNumber(number string) (prefix string, seq int, err error) {
	prefix, digits, ok := strings.Cut(number, "-")
	if !ok || prefix == "" || digits == "" {
		return "", 0, fmt.Errorf("invalid voucher number format: %q", number)
	}

	seq, err = strconv.Atoi(digits)
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in voucher number %q: %w", number, err)
	}
	if seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in voucher number %q: must be positive", number)
	}
	return prefix, seq, nil
}
