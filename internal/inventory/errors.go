package inventory

import (
	"errors"
	"fmt"
)

// Common errors returned by the ledger
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// UnavailableError reports a product that no longer exists, typically because
// it was deleted after being added to a cart. Fatal to the whole order
// transaction, never retried.
type UnavailableError struct {
	ProductID int64
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %d is no longer available", e.ProductID)
}

func (e *UnavailableError) Unwrap() error {
	return ErrProductNotFound
}

// InsufficientStockError reports a shortfall. It names the product and the
// remaining quantity so the caller can tell the user what to adjust.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: requested %d, only %d left", e.Name, e.Requested, e.Remaining)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
