package cart

import (
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

var ErrItemNotFound = errors.New("item not found in cart")

// Snapshot is a read-only copy of the cart taken right after a mutation.
type Snapshot struct {
	Loaded   bool              `json:"loaded"`
	Shipping domain.Selection  `json:"shipping"`
	Payment  domain.Selection  `json:"payment"`
	Items    []domain.CartItem `json:"items"`
	Revision uint64            `json:"revision"`
}

func (s Snapshot) Totals() domain.Totals {
	return CalculateTotals(s.Items)
}

// State is the authoritative cart record. Its exported methods are the only
// way to change it; each one runs to completion under the lock.
type State struct {
	mu       sync.RWMutex
	loaded   bool
	shipping domain.Selection
	payment  domain.Selection
	items    []domain.CartItem
	revision uint64
}

func New() *State {
	return &State{items: []domain.CartItem{}}
}

// AddItem increments the quantity of the item sharing product's SKU,
// or appends a new item with quantity 1.
func (s *State) AddItem(product domain.Product) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.SKU); i >= 0 {
		s.items[i].Qty++
	} else {
		s.items = append(s.items, domain.CartItem{Product: product, Qty: 1})
	}
	return s.commit()
}

func (s *State) RemoveItem(sku string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.DeleteFunc(s.items, func(item domain.CartItem) bool {
		return item.SKU == sku
	})
	return s.commit()
}

// UpdateQuantity sets the quantity of an existing item. A quantity below 1
// removes the item.
func (s *State) UpdateQuantity(sku string, qty int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sku)
	if i < 0 {
		return s.snapshot(), ErrItemNotFound
	}

	if qty < 1 {
		s.items = slices.Delete(s.items, i, i+1)
	} else {
		s.items[i].Qty = qty
	}
	return s.commit(), nil
}

func (s *State) UpdateShipping(code string, cost decimal.Decimal) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shipping = domain.Selection{Code: code, Cost: cost}
	return s.commit()
}

func (s *State) UpdatePayment(code string, cost decimal.Decimal) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payment = domain.Selection{Code: code, Cost: cost}
	return s.commit()
}

// SelectDefaultShipping sets the shipping selection only if none is set yet.
func (s *State) SelectDefaultShipping(sel domain.Selection) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shipping.IsSet() {
		return s.snapshot(), false
	}
	s.shipping = sel
	return s.commit(), true
}

// SelectDefaultPayment sets the payment selection only if none is set yet.
func (s *State) SelectDefaultPayment(sel domain.Selection) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payment.IsSet() {
		return s.snapshot(), false
	}
	s.payment = sel
	return s.commit(), true
}

// LoadCart replaces the items and marks the cart as loaded. Stored rows
// sharing a SKU are merged and rows with a non-positive quantity are dropped.
func (s *State) LoadCart(stored []domain.CartItem) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, 0, len(stored))
	index := make(map[string]int, len(stored))
	for _, item := range stored {
		if item.Qty < 1 {
			continue
		}
		if i, ok := index[item.SKU]; ok {
			items[i].Qty += item.Qty
			continue
		}
		index[item.SKU] = len(items)
		items = append(items, item)
	}

	s.items = items
	s.loaded = true
	return s.commit()
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *State) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CalculateTotals(s.items)
}

func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *State) Shipping() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shipping
}

func (s *State) Payment() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payment
}

func (s *State) indexOf(sku string) int {
	return slices.IndexFunc(s.items, func(item domain.CartItem) bool {
		return item.SKU == sku
	})
}

// commit must be called with the write lock held.
func (s *State) commit() Snapshot {
	s.revision++
	return s.snapshot()
}

func (s *State) snapshot() Snapshot {
	return Snapshot{
		Loaded:   s.loaded,
		Shipping: s.shipping,
		Payment:  s.payment,
		Items:    slices.Clone(s.items),
		Revision: s.revision,
	}
}
