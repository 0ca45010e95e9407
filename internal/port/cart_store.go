package port

import (
	"context"
	"errors"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

var ErrCartNotFound = errors.New("cart not found")

type CartStore interface {
	// GetItems returns the items saved under key, or ErrCartNotFound
	GetItems(ctx context.Context, key string) ([]domain.CartItem, error)

	// SaveItems overwrites whatever is saved under key
	SaveItems(ctx context.Context, key string, items []domain.CartItem) error
}
