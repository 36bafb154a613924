package inventory

import (
	"context"
	"errors"
)

// Snapshot is the sellable state of a product as observed inside a
// transaction. The order document denormalizes name, price and vendor from
// it, so one read serves both validation and order assembly.
type Snapshot struct {
	ProductID int64
	Name      string
	Price     float64
	Vendor    string
	Stock     int
}

// Requirement is the aggregated quantity one order needs for one product.
type Requirement struct {
	ProductID int64
	Quantity  int
}

// Tx is the transactional scope the ledger operates in. Reads must see a
// snapshot the backing store can validate at commit time; writes become
// visible only if that commit succeeds.
type Tx interface {
	// ReadStock returns the product's sellable state or ErrProductNotFound.
	ReadStock(ctx context.Context, productID int64) (*Snapshot, error)

	// WriteStock sets the product's stock to the given value. Callers derive
	// the value from a ReadStock in the same scope, never from a blind delta.
	WriteStock(ctx context.Context, productID int64, stock int) error
}

// Ledger owns the stock invariant: stock never goes negative, and no write
// happens unless every requirement in the set is satisfiable.
type Ledger struct{}

// DecrementAll validates every requirement against the stock observed in tx
// and only then writes the decremented values. A missing product or a
// shortfall on any product aborts before anything is written, so a failure
// on one product can never leave another partially decremented.
//
// Returns the pre-decrement snapshots, in requirement order, on success.
func (Ledger) DecrementAll(ctx context.Context, tx Tx, reqs []Requirement) ([]Snapshot, error) {
	// First pass: read and validate everything
	snapshots := make([]Snapshot, 0, len(reqs))
	for _, req := range reqs {
		snap, err := tx.ReadStock(ctx, req.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			return nil, &UnavailableError{ProductID: req.ProductID}
		}
		if err != nil {
			return nil, err
		}
		if snap.Stock < req.Quantity {
			return nil, &InsufficientStockError{
				ProductID: req.ProductID,
				Name:      snap.Name,
				Requested: req.Quantity,
				Remaining: snap.Stock,
			}
		}
		snapshots = append(snapshots, *snap)
	}

	// Second pass: write observed stock minus requested quantity
	for i, req := range reqs {
		if err := tx.WriteStock(ctx, req.ProductID, snapshots[i].Stock-req.Quantity); err != nil {
			return nil, err
		}
	}

	return snapshots, nil
}
