package model

import "errors"

// Lookup failures shared by the stores and the ledger service.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrDuplicateReference = errors.New("reference already posted")
)
