package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/storefront-cart/internal/core/cart"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

var (
	ErrInvalidProduct = errors.New("product has no sku")
	ErrLoadFailed     = errors.New("cart load failed")
)

type Config struct {
	CartKey      string
	StockTimeout time.Duration
	LoadTimeout  time.Duration
	QueueSize    int

	// PerItemStockCheck sends the SKU being added to the oracle. Off by
	// default: the check is cart-scoped.
	PerItemStockCheck bool

	// NotifyRejections emits an error notification when the oracle refuses an add.
	NotifyRejections bool
}

type Dependencies struct {
	Oracle   port.StockOracle
	Store    port.CartStore
	Catalog  port.MethodCatalog
	Notifier port.Notifier
	Logger   *zap.Logger
}

type AddResult struct {
	Status domain.StockStatus `json:"status"`
	Added  bool               `json:"added"`
}

// CartService runs the cart workflows. It only changes the cart through
// the mutations of cart.State and publishes every item change on the
// snapshot queue for persistence.
type CartService struct {
	state    *cart.State
	oracle   port.StockOracle
	store    port.CartStore
	catalog  port.MethodCatalog
	notifier port.Notifier
	logger   *zap.Logger
	cfg      Config

	sfg singleflight.Group

	queueMu   sync.RWMutex
	closed    bool
	snapshots chan cart.Snapshot
}

func NewCartService(state *cart.State, deps Dependencies, cfg Config) *CartService {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CartService{
		state:     state,
		oracle:    deps.Oracle,
		store:     deps.Store,
		catalog:   deps.Catalog,
		notifier:  deps.Notifier,
		logger:    logger.With(zap.String("cart_key", cfg.CartKey)),
		cfg:       cfg,
		snapshots: make(chan cart.Snapshot, cfg.QueueSize),
	}
}

// AddItem checks stock and, when the oracle accepts, adds one unit of product.
// A rejection is not an error: the result reports Added=false.
func (s *CartService) AddItem(ctx context.Context, product domain.Product) (AddResult, error) {
	if product.SKU == "" {
		return AddResult{}, ErrInvalidProduct
	}

	req := domain.StockRequest{CartKey: s.cfg.CartKey}
	if s.cfg.PerItemStockCheck {
		req.SKU = product.SKU
	}

	checkCtx, cancel := withTimeout(ctx, s.cfg.StockTimeout)
	result, err := s.oracle.Check(checkCtx, req)
	cancel()
	if err != nil {
		s.logger.Warn("stock check failed", zap.String("sku", product.SKU), zap.Error(err))
		return AddResult{}, fmt.Errorf("stock check: %w", err)
	}

	if result.Status == domain.StockStatusVolatile {
		s.notify(ctx, domain.NotificationWarning, MsgStockVolatile)
	}

	if !result.Status.Accepted() {
		s.logger.Info("add rejected by stock check",
			zap.String("sku", product.SKU),
			zap.String("status", string(result.Status)))
		if s.cfg.NotifyRejections {
			s.notify(ctx, domain.NotificationError, MsgOutOfStock)
		}
		return AddResult{Status: result.Status}, nil
	}

	snap := s.state.AddItem(product)
	s.enqueue(snap)
	s.notify(ctx, domain.NotificationSuccess, MsgItemAdded)

	s.logger.Debug("item added",
		zap.String("sku", product.SKU),
		zap.String("status", string(result.Status)),
		zap.Uint64("revision", snap.Revision))
	return AddResult{Status: result.Status, Added: true}, nil
}

func (s *CartService) RemoveItem(sku string) {
	s.enqueue(s.state.RemoveItem(sku))
}

// UpdateQuantity returns cart.ErrItemNotFound when sku is not in the cart.
func (s *CartService) UpdateQuantity(sku string, qty int) error {
	snap, err := s.state.UpdateQuantity(sku, qty)
	if err != nil {
		return err
	}
	s.enqueue(snap)
	return nil
}

func (s *CartService) ChangeShippingMethod(code string, cost decimal.Decimal) {
	s.state.UpdateShipping(code, cost)
}

func (s *CartService) ChangePaymentMethod(code string, cost decimal.Decimal) {
	s.state.UpdatePayment(code, cost)
}

func (s *CartService) Clear() {
	s.enqueue(s.state.LoadCart([]domain.CartItem{}))
}

// Load resolves default shipping and payment selections, then replaces the
// items with what the store holds under the cart key. Concurrent calls share
// one fetch, which runs detached from any single caller and is bounded by
// LoadTimeout. A store failure other than "not found" aborts the load and
// leaves the cart unloaded.
func (s *CartService) Load(ctx context.Context) error {
	ch := s.sfg.DoChan(s.cfg.CartKey, func() (interface{}, error) {
		loadCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.LoadTimeout)
		defer cancel()
		return nil, s.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("joined in-flight load")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CartService) load(ctx context.Context) error {
	s.resolveDefaults(ctx)

	items, err := s.store.GetItems(ctx, s.cfg.CartKey)
	if err != nil && !errors.Is(err, port.ErrCartNotFound) {
		s.logger.Error("failed to fetch stored cart", zap.Error(err))
		s.notify(ctx, domain.NotificationError, MsgLoadFailed)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	snap := s.state.LoadCart(items)
	s.logger.Info("cart loaded", zap.Int("items", len(snap.Items)))
	return nil
}

func (s *CartService) resolveDefaults(ctx context.Context) {
	if !s.state.Shipping().IsSet() {
		methods, err := s.catalog.ShippingMethods(ctx)
		if err != nil {
			s.logger.Warn("failed to read shipping methods", zap.Error(err))
		} else if m, ok := domain.DefaultMethod(methods); ok {
			if _, applied := s.state.SelectDefaultShipping(m.Selection()); applied {
				s.logger.Debug("default shipping selected", zap.String("code", m.Code))
			}
		} else {
			s.logger.Warn("no default shipping method configured")
		}
	}

	if !s.state.Payment().IsSet() {
		methods, err := s.catalog.PaymentMethods(ctx)
		if err != nil {
			s.logger.Warn("failed to read payment methods", zap.Error(err))
		} else if m, ok := domain.DefaultMethod(methods); ok {
			if _, applied := s.state.SelectDefaultPayment(m.Selection()); applied {
				s.logger.Debug("default payment selected", zap.String("code", m.Code))
			}
		} else {
			s.logger.Warn("no default payment method configured")
		}
	}
}

func (s *CartService) State() cart.Snapshot {
	return s.state.Snapshot()
}

func (s *CartService) Totals() domain.Totals {
	return s.state.Totals()
}

func (s *CartService) GetSnapshotQueue() <-chan cart.Snapshot {
	return s.snapshots
}

// Close stops publishing snapshots and closes the queue so the persister drains and exits.
func (s *CartService) Close() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.snapshots)
}

// enqueue never blocks. A snapshot of a cart that was never loaded is not
// published, so it cannot overwrite the stored cart. When the queue is full
// the lower revision of the incoming and the oldest pending snapshot is
// dropped, so the newest always reaches the persister.
func (s *CartService) enqueue(snap cart.Snapshot) {
	if !snap.Loaded {
		s.logger.Debug("snapshot not persisted, cart not loaded", zap.Uint64("revision", snap.Revision))
		return
	}

	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	if s.closed {
		s.logger.Warn("snapshot not persisted, service closed", zap.Uint64("revision", snap.Revision))
		return
	}

	for {
		select {
		case s.snapshots <- snap:
			return
		default:
		}

		select {
		case pending := <-s.snapshots:
			if pending.Revision >= snap.Revision {
				pending, snap = snap, pending
			}
			s.logger.Debug("dropped superseded snapshot", zap.Uint64("revision", pending.Revision))
		default:
		}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
