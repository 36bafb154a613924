package cart

import (
	"context"
	"errors"

	"github.com/Daddtdrey/eatai/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("line not found in cart")
)

// Repository defines the cart storage operations. Consumers define this
// interface, not the MongoDB implementation.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, userID string, lineID string) error
	DeleteCart(ctx context.Context, userID string) error
}
