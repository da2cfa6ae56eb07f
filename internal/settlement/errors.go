package settlement

import (
	"errors"
	"fmt"

	"vestra/internal/auth"
)

// Failures returned by engine commands. Match them with errors.Is.
var (
	ErrUnauthorized                 = auth.ErrUnauthorized
	ErrNotFound                     = errors.New("not found")
	ErrInvalidState                 = errors.New("invalid state for operation")
	ErrAlreadyProcessed             = errors.New("transaction already processed")
	ErrAlreadyCredited              = errors.New("interest already credited for this period")
	ErrInvalidAmount                = errors.New("invalid amount")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
	ErrInsufficientTotalBalance     = errors.New("insufficient total balance")
	ErrPayoutNonPositive            = errors.New("net payout must be positive")
	ErrBalanceNotFound              = errors.New("investor balance not found")
	ErrInvalidTransition            = errors.New("invalid status transition")
	ErrStorageFailure               = errors.New("storage failure")
)

var domainErrors = []error{
	ErrUnauthorized,
	ErrNotFound,
	ErrInvalidState,
	ErrAlreadyProcessed,
	ErrAlreadyCredited,
	ErrInvalidAmount,
	ErrInsufficientAvailableBalance,
	ErrInsufficientTotalBalance,
	ErrPayoutNonPositive,
	ErrBalanceNotFound,
	ErrInvalidTransition,
}

// StorageError wraps a ledger store failure. It matches ErrStorageFailure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageFailure, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// IsRetryable reports whether the whole command may be retried as is.
// Validation failures are terminal; storage failures are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

func isDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

func fail(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
