package ledger

import (
	"errors"

	"github.com/khata-dev/khata/internal/model"
)

// Errors returned by the Service in addition to the posting package's
// rejections.
var (
	ErrAccountNotFound    = model.ErrAccountNotFound
	ErrVoucherNotFound    = model.ErrVoucherNotFound
	ErrDuplicateAccount   = model.ErrDuplicateAccount
	ErrDuplicateReference = model.ErrDuplicateReference
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidPeriod      = errors.New("invalid reporting period")
)
