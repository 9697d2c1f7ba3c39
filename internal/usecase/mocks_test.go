package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
)

// mockOrders implements Orders with a locked map and injectable failures.
type mockOrders struct {
	mu        sync.Mutex
	store     map[string]*domain.Order
	createErr error
	updateErr error
}

func newMockOrders() *mockOrders {
	return &mockOrders{store: make(map[string]*domain.Order)}
}

func (m *mockOrders) Create(_ context.Context, o *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[o.ID] = o.Clone()
	return nil
}

func (m *mockOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

func (m *mockOrders) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.store {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (m *mockOrders) ListByStatus(_ context.Context, st domain.Status) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.store {
		if o.Status == st {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (m *mockOrders) UpdateIf(_ context.Context, o *domain.Order, from domain.Status) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.store[o.ID]
	if !ok || existing.Status != from {
		return false, nil
	}
	m.store[o.ID] = o.Clone()
	return true, nil
}

// mockCart serves a fixed set of lines; clearErrs makes the first N Clear
// calls fail.
type mockCart struct {
	lines     []domain.CartLine
	cleared   bool
	clearErrs int
}

func (m *mockCart) Lines(_ context.Context, _ string) ([]domain.CartLine, error) {
	if m.cleared {
		return nil, nil
	}
	return append([]domain.CartLine(nil), m.lines...), nil
}

func (m *mockCart) Clear(_ context.Context, _ string) error {
	if m.clearErrs > 0 {
		m.clearErrs--
		return fmt.Errorf("cart store unavailable")
	}
	m.cleared = true
	return nil
}

// mockLedger combines Ledger and Catalog over an in-memory stock table, the
// same all-or-nothing check-then-apply the real ledgers do.
type mockLedger struct {
	mu       sync.Mutex
	stock    map[string]int
	prices   map[string]decimal.Decimal
	restores int
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		stock:  make(map[string]int),
		prices: make(map[string]decimal.Decimal),
	}
}

func (m *mockLedger) seed(productID string, price string, stock int) {
	m.prices[productID] = decimal.RequireFromString(price)
	m.stock[productID] = stock
}

func (m *mockLedger) Reserve(_ context.Context, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var shortages []domain.Shortage
	for _, l := range lines {
		avail, ok := m.stock[l.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if avail < l.Quantity {
			shortages = append(shortages, domain.Shortage{ProductID: l.ProductID, Requested: l.Quantity, Available: avail})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	for _, l := range lines {
		m.stock[l.ProductID] -= l.Quantity
	}
	return nil
}

func (m *mockLedger) Restore(_ context.Context, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restores++
	for _, l := range lines {
		m.stock[l.ProductID] += l.Quantity
	}
	return nil
}

func (m *mockLedger) PriceAndStock(_ context.Context, productID string) (decimal.Decimal, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, ok := m.prices[productID]
	if !ok {
		return decimal.Zero, 0, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return price, m.stock[productID], nil
}

func (m *mockLedger) stockOf(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

func (m *mockLedger) restoreCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restores
}

// mockIdem is an in-memory IdempotencyStore.
type mockIdem struct {
	locks  map[string]bool
	memory map[string]string
}

func newMockIdem() *mockIdem {
	return &mockIdem{locks: make(map[string]bool), memory: make(map[string]string)}
}

func (m *mockIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	if m.locks[k] {
		return false, nil
	}
	m.locks[k] = true
	return true, nil
}

func (m *mockIdem) Remember(_ context.Context, scope, key, value string) error {
	m.memory[scope+":"+key] = value
	return nil
}

func (m *mockIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := m.memory[scope+":"+key]
	return v, ok, nil
}

// mockEvents counts published events.
type mockEvents struct {
	created   []CreatedMsg
	cancelled []CancelledMsg
}

func (m *mockEvents) PublishCreated(_ context.Context, msg CreatedMsg) error {
	m.created = append(m.created, msg)
	return nil
}

func (m *mockEvents) PublishCancelled(_ context.Context, msg CancelledMsg) error {
	m.cancelled = append(m.cancelled, msg)
	return nil
}

// mockCache records the latest status per order.
type mockCache struct {
	statuses map[string]string
}

func newMockCache() *mockCache { return &mockCache{statuses: make(map[string]string)} }

func (m *mockCache) SetStatus(_ context.Context, orderID, status string) error {
	m.statuses[orderID] = status
	return nil
}

func (m *mockCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	s, ok := m.statuses[orderID]
	return s, ok, nil
}
