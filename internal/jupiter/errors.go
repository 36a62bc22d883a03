package jupiter

import "errors"

// Execution error taxonomy. All are handled locally by the position manager;
// none escalate to process-crashing failures.
var (
	// ErrGaslessMinimum: the net amount is under the aggregator's gasless
	// floor and no alternate payer is configured.
	ErrGaslessMinimum = errors.New("order below gasless minimum")

	// ErrInvalidOrder: the aggregator returned an unusable order, or
	// transient retries were exhausted.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrTransient marks network/timeout-class submission failures that are
	// retried with backoff.
	ErrTransient = errors.New("transient network error")

	// ErrSigning: the transaction payload could not be decoded or signed.
	// Fatal for the attempt, never retried.
	ErrSigning = errors.New("transaction signing failed")
)
