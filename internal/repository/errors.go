package repository

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrStatusConflict means the conditional status write matched no row:
	// either the order is gone or its status moved under the caller.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
