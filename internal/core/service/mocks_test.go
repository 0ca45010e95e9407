package service

import (
	"context"
	"sync"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

type mockOracle struct {
	mu       sync.Mutex
	status   domain.StockStatus
	err      error
	requests []domain.StockRequest
	// gate, when set, is read once per call before answering.
	gate chan domain.StockStatus
}

func (m *mockOracle) Check(ctx context.Context, req domain.StockRequest) (domain.StockResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate, status, err := m.gate, m.status, m.err
	m.mu.Unlock()

	if gate != nil {
		select {
		case status = <-gate:
		case <-ctx.Done():
			return domain.StockResult{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.StockResult{}, err
	}
	return domain.StockResult{Status: status}, nil
}

func (m *mockOracle) calls() []domain.StockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StockRequest(nil), m.requests...)
}

type mockStore struct {
	mu     sync.Mutex
	items  map[string][]domain.CartItem
	getErr error
	setErr error
	gets   int
	saves  int
	// release, when set, blocks GetItems until closed.
	release chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{items: make(map[string][]domain.CartItem)}
}

func (m *mockStore) GetItems(ctx context.Context, key string) ([]domain.CartItem, error) {
	m.mu.Lock()
	m.gets++
	release := m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	items, ok := m.items[key]
	if !ok {
		return nil, port.ErrCartNotFound
	}
	return items, nil
}

func (m *mockStore) SaveItems(_ context.Context, key string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.saves++
	m.items[key] = items
	return nil
}

func (m *mockStore) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

func (m *mockStore) saved(key string) ([]domain.CartItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.items[key]
	return items, ok
}

type mockCatalog struct {
	shipping []domain.Method
	payment  []domain.Method
	err      error
}

func (m *mockCatalog) ShippingMethods(context.Context) ([]domain.Method, error) {
	return m.shipping, m.err
}

func (m *mockCatalog) PaymentMethods(context.Context) ([]domain.Method, error) {
	return m.payment, m.err
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (m *mockNotifier) Notify(_ context.Context, n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

func (m *mockNotifier) types() []domain.NotificationType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.NotificationType, 0, len(m.sent))
	for _, n := range m.sent {
		out = append(out, n.Type)
	}
	return out
}
