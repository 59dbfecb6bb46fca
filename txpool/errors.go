package txpool

import "errors"

// Error taxonomy Validation and consistency errors are
// non-fatal: the offending item is rejected into the Waste Basket with the
// reason code rather than propagated to the caller as a hard failure.
var (
	// ErrAlreadyKnown is returned when itemId(tx) already exists in the store.
	ErrAlreadyKnown = errors.New("txpool: transaction already known")

	// ErrInvalidSender is returned when signature recovery fails.
	ErrInvalidSender = errors.New("txpool: invalid sender")

	// ErrSenderNonceIndex is returned on a (sender, nonce) collision that
	// does not clear the configured price-bump replacement threshold.
	ErrSenderNonceIndex = errors.New("txpool: sender/nonce already occupied")

	// ErrBasicValidatorFailed covers fork/type, nonce-too-low, and
	// intrinsic-gas rejections from acceptTxValid.
	ErrBasicValidatorFailed = errors.New("txpool: basic validation failed")

	// ErrTxExpired is the deleteExpiredItems rejection reason.
	ErrTxExpired = errors.New("txpool: transaction expired")

	// ErrUnderpriced is the deleteUnderpricedItems rejection reason.
	ErrUnderpriced = errors.New("txpool: transaction underpriced")

	// ErrJobQueueFull signals a Capacity rejection on Job Queue.Append.
	ErrJobQueueFull = errors.New("txpool: job queue full")

	// ErrUnknownItem names an itemId the Item Store does not hold. No
	// operation in this package returns it: Pool.Get returns nil instead.
	ErrUnknownItem = errors.New("txpool: unknown item")
)
