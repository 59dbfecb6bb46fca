package skeleton

import "errors"

// Error taxonomy Storage errors are fatal to the current
// operation; the rest are non-fatal and reify as typed values the caller
// consults to decide retry/restart/advance.
var (
	// ErrInvalidGenesis is returned when a number-0 head announcement does
	// not match the configured genesis hash.
	ErrInvalidGenesis = errors.New("skeleton: invalid genesis announcement")

	// ErrBlocksDoNotExtendCanonical is returned by putBlocks when a header
	// batch does not chain into the active segment's tail.
	ErrBlocksDoNotExtendCanonical = errors.New("skeleton: blocks don't extend canonical subchain")

	// ErrHashesDoNotMatch signals a body whose content hash does not match
	// the header's declared sum hash.
	ErrHashesDoNotMatch = errors.New("skeleton: body hash does not match header")

	// ErrNoSegments is returned when an operation requires an active
	// segment but the registry is empty.
	ErrNoSegments = errors.New("skeleton: no active segment")

	// ErrTerminated names the shut-down condition. No function in this
	// package returns it: a stopped Scheduler's RunMulti simply returns.
	ErrTerminated = errors.New("skeleton: terminated")

	// errEmptyResponse signals a peer returned no data for a request; the
	// job is requeued for another peer.
	errEmptyResponse = errors.New("skeleton: empty peer response")
)

// StorageError wraps a KV read/write/decode failure. It is always fatal to
// the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "skeleton: storage error during " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
