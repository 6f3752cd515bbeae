package ledger

import "errors"

// Domain errors. Business declines (insufficient funds, inactive account,
// daily limit exceeded) are not errors; operations report them as a false
// result. Errors are reserved for caller mistakes and broken invariants.
var (
	// ErrInvalidArgument indicates malformed input: a non-positive amount,
	// an empty customer name, a bad customer id, an unknown account type,
	// or a self-transfer.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates the account number is not registered.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidState indicates a precondition violation, such as closing
	// an account whose balance is not zero.
	ErrInvalidState = errors.New("invalid account state")
)
