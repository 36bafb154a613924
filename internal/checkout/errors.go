package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to check out")
	ErrInvalidLine          = errors.New("invalid cart line")
	ErrInvalidInitialStatus = errors.New("initial status must be pending or confirmed")
	ErrInvalidDeliveryFee   = errors.New("delivery fee must not be negative")
	ErrMissingUser          = errors.New("user id is required")

	// ErrCommitConflict means one attempt could not be validated at commit
	// time because a concurrent transaction invalidated a read. The
	// coordinator retries these transparently.
	ErrCommitConflict = errors.New("transaction commit conflict")

	// ErrTransactionConflict surfaces only after the retry bound is
	// exhausted. Nothing was applied.
	ErrTransactionConflict = errors.New("order transaction could not be committed after retries")

	// ErrStoreUnavailable means the backing store was unreachable. Surfaced
	// immediately, no partial effect.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)
