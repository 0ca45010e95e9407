package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

// MethodCatalog exposes the store-wide shipping and payment methods lists.
// The cart reads them but never changes them.
type MethodCatalog interface {
	ShippingMethods(ctx context.Context) ([]domain.Method, error)
	PaymentMethods(ctx context.Context) ([]domain.Method, error)
}
