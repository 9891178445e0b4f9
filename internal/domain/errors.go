package domain

import (
	"errors"
	"fmt"
)

// ErrLedgerNotFound is returned by stores when the requested ledger id
// does not exist.
var ErrLedgerNotFound = errors.New("ledger not found")

// ValidationError reports a request that failed a pre-I/O constraint:
// missing ledger id, unknown transaction type, purity out of range,
// non-finite numeric input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NetworkError reports a store call that failed or answered non-2xx.
// The original status and message are carried verbatim; no retry is
// attempted anywhere in the core.
type NetworkError struct {
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store call failed: %v", e.Err)
	}
	return fmt.Sprintf("store answered %d: %s", e.Status, e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }
