package notify

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

// Fanout forwards every notification to each sink in order.
type Fanout []port.Notifier

func (f Fanout) Notify(ctx context.Context, n domain.Notification) {
	for _, sink := range f {
		sink.Notify(ctx, n)
	}
}
