package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

// Notifier delivers user-facing messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
