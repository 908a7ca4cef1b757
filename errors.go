package timevault

import "errors"

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput   = errors.New("timevault: invalid input")
	ErrInvalidAccount = errors.New("timevault: invalid account")
	ErrInvalidAmount  = errors.New("timevault: amount must be positive")

	// Commitment errors. All of these signal a caller logic error or
	// data corruption, never a transient fault; retrying cannot help.
	ErrCommitmentNotFound = errors.New("timevault: commitment not found")
	ErrCommitmentExists   = errors.New("timevault: commitment already exists")
	ErrAlreadyClosed      = errors.New("timevault: commitment already closed")
	ErrNotOwner           = errors.New("timevault: commitment owned by another account")

	// Account / registry errors
	ErrAccountNotFound = errors.New("timevault: account not found")
	ErrOutOfBounds     = errors.New("timevault: page offset out of bounds")

	// Journal errors
	ErrJournalBufferFull = errors.New("timevault: journal buffer full")

	// Store errors
	ErrStoreNotReady     = errors.New("timevault: store not ready")
	ErrStoreClosed       = errors.New("timevault: store is closed")
	ErrTransactionFailed = errors.New("timevault: transaction failed")
	ErrMigrationFailed   = errors.New("timevault: migration failed")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommitmentNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}

// IsCallerError returns true for the non-retriable ledger errors: each
// signals a caller logic error or a corrupted counter, and the caller
// must treat the whole surrounding operation as failed and roll back
// any side effects performed before the ledger call.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrCommitmentNotFound) ||
		errors.Is(err, ErrCommitmentExists) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAccount) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsRetryable returns true if the error is temporary and the operation
// can be retried. Ledger logic errors are never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrJournalBufferFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
