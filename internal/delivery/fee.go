// Package delivery computes the delivery fee for a (origin, destination)
// town pair. The coordinator receives the result as a precomputed number; it
// never calls in here.
package delivery

import "github.com/Daddtdrey/eatai/internal/domain"

const (
	sameTownFee  = 1000
	crossTownFee = 2000
	uromiFee     = 3000
)

// Fee maps a town pair to a flat fee in naira. Unknown or missing towns fall
// back the same way the shop UI expects: nothing selected costs nothing yet,
// anything else defaults to the cross-town rate.
func Fee(origin, destination string) float64 {
	if origin == "" || destination == "" {
		return 0
	}

	from, errFrom := domain.NormalizeLocation(origin)
	to, errTo := domain.NormalizeLocation(destination)
	if errFrom != nil || errTo != nil {
		return crossTownFee
	}

	if from == to {
		return sameTownFee
	}
	if from == "Uromi" || to == "Uromi" {
		return uromiFee
	}
	return crossTownFee
}
