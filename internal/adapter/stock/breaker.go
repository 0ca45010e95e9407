package stock

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// BreakerOracle fails fast with gobreaker.ErrOpenState while the wrapped
// oracle keeps failing.
type BreakerOracle struct {
	next port.StockOracle
	cb   *gobreaker.CircuitBreaker[domain.StockResult]
}

func NewBreakerOracle(next port.StockOracle, settings BreakerSettings, logger *zap.Logger) *BreakerOracle {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker[domain.StockResult](gobreaker.Settings{
		Name:        "stock-oracle",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerOracle{next: next, cb: cb}
}

func (b *BreakerOracle) Check(ctx context.Context, req domain.StockRequest) (domain.StockResult, error) {
	return b.cb.Execute(func() (domain.StockResult, error) {
		return b.next.Check(ctx, req)
	})
}

func (b *BreakerOracle) State() gobreaker.State {
	return b.cb.State()
}
