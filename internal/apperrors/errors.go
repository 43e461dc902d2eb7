package apperrors

import (
	"errors"
	"fmt"
)

// AppError carries an HTTP-ish status code alongside a message and an
// optional wrapped cause. Repositories use it for infrastructure failures;
// domain rule violations use the sentinel errors below instead.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a not-found AppError that matches ErrNotFound
// under errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrConflict indicates that a resource changed between being read and being
// written, so the write was computed from stale state. Callers retry from a
// fresh read.
var ErrConflict = errors.New("resource was modified concurrently")

// ErrUnknownAccount indicates a journal line references an account that does not exist.
var ErrUnknownAccount = errors.New("unknown account")

// ErrInvalidCurrency indicates a reference to a currency with no master-data record.
var ErrInvalidCurrency = errors.New("invalid currency")

// ErrImmutableKey indicates an attempt to change the key identity of a
// historical exchange rate record (from, to, rate date).
var ErrImmutableKey = errors.New("exchange rate key fields are immutable")

// ErrUnbalanced indicates that the debit and credit totals of a journal entry
// do not match, in either transaction-currency or functional-currency units.
var ErrUnbalanced = errors.New("journal entry debits and credits do not balance")

// ErrZeroAmount indicates a journal entry with no non-zero line.
var ErrZeroAmount = errors.New("journal entry has no non-zero line")

// ErrUnknownEntry indicates the referenced journal entry does not exist.
var ErrUnknownEntry = errors.New("unknown journal entry")

// ErrAlreadyPosted indicates an attempt to post a journal entry twice.
var ErrAlreadyPosted = errors.New("journal entry is already posted")

// ErrPostedImmutable indicates an attempt to edit or delete a posted journal
// entry or its lines. Posted history can only be altered by reversal or correction.
var ErrPostedImmutable = errors.New("posted journal entry is immutable")

// ErrNotPosted indicates a reversal or correction target that is not posted.
var ErrNotPosted = errors.New("journal entry is not posted")

// ErrAlreadyProcessed indicates a reversal or correction target that has
// already been reversed or corrected.
var ErrAlreadyProcessed = errors.New("journal entry is already reversed or corrected")

// ErrAlreadyClosed indicates an attempt to close a fiscal year twice.
var ErrAlreadyClosed = errors.New("fiscal year is already closed")

// ErrOverlappingPeriod indicates a fiscal year that overlaps an existing one.
var ErrOverlappingPeriod = errors.New("fiscal year overlaps an existing period")

// ErrRateUnavailable indicates that no exchange rate exists at or before the
// requested date for a currency pair. Callers must treat this as "excluded
// from computation", never as a rate of 1.0.
var ErrRateUnavailable = errors.New("no exchange rate available")
