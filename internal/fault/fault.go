// Package fault provides single instances of errors grouped into classes,
// so callers can compare by class without matching message strings.
package fault

// error base
type GenericError string

// the error classes a caller can distinguish
type UnauthenticatedError GenericError
type InvalidArgumentError GenericError
type NotFoundError GenericError
type FailedPreconditionError GenericError
type InternalError GenericError

var (
	ErrMissingToken = UnauthenticatedError("authentication token is required")
	ErrUnknownToken = UnauthenticatedError("authentication token is not recognised")

	ErrInvalidAmount    = InvalidArgumentError("amount must be a positive number")
	ErrMissingRecipient = InvalidArgumentError("recipient address is required")
	ErrSelfTransfer     = InvalidArgumentError("cannot send a transaction to your own address")
	ErrInvalidPage      = InvalidArgumentError("page and limit must be positive")

	ErrRecipientNotFound   = NotFoundError("recipient address not found among registered accounts")
	ErrAccountNotFound     = NotFoundError("account not found")
	ErrTransactionNotFound = NotFoundError("transaction not found")

	ErrInsufficientBalance = FailedPreconditionError("insufficient balance for this transaction")

	ErrCommitFailed        = InternalError("commit failed")
	ErrInconsistentAccount = InternalError("account data inconsistent after lookup")
)

func (e GenericError) Error() string            { return string(e) }
func (e UnauthenticatedError) Error() string    { return string(e) }
func (e InvalidArgumentError) Error() string    { return string(e) }
func (e NotFoundError) Error() string           { return string(e) }
func (e FailedPreconditionError) Error() string { return string(e) }
func (e InternalError) Error() string           { return string(e) }
