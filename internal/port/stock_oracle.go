package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type StockOracle interface {
	// Check answers whether adding to the cart is safe. Unknown statuses are
	// treated as a rejection by the caller.
	Check(ctx context.Context, req domain.StockRequest) (domain.StockResult, error)
}
