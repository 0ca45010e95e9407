package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/cart"
	"github.com/rl1809/storefront-cart/internal/port"
)

// Persister writes cart snapshots to the store. A single Run loop must own a Persister.
type Persister struct {
	store   port.CartStore
	key     string
	timeout time.Duration
	logger  *zap.Logger

	lastRevision uint64
}

func NewPersister(store port.CartStore, key string, timeout time.Duration, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		store:   store,
		key:     key,
		timeout: timeout,
		logger:  logger.With(zap.String("cart_key", key)),
	}
}

// Run consumes the queue until it is closed. Snapshots of an unloaded cart
// and snapshots older than the last one written are skipped.
func (p *Persister) Run(queue <-chan cart.Snapshot) {
	for snap := range queue {
		if !snap.Loaded {
			p.logger.Warn("skipping snapshot of unloaded cart", zap.Uint64("revision", snap.Revision))
			continue
		}
		if snap.Revision <= p.lastRevision {
			p.logger.Debug("skipping stale snapshot", zap.Uint64("revision", snap.Revision))
			continue
		}

		ctx, cancel := withTimeout(context.Background(), p.timeout)
		if err := p.store.SaveItems(ctx, p.key, snap.Items); err != nil {
			p.logger.Error("failed to persist cart",
				zap.Uint64("revision", snap.Revision),
				zap.Error(err))
		} else {
			p.lastRevision = snap.Revision
			p.logger.Debug("cart persisted",
				zap.Uint64("revision", snap.Revision),
				zap.Int("items", len(snap.Items)))
		}
		cancel()
	}
}

func (p *Persister) LastRevision() uint64 {
	return p.lastRevision
}
