package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// MemoryInventory keeps the product catalog and stock in memory. Used by
// tests and local runs. The whole batch is checked and applied under one
// lock, which gives the same all-or-nothing guarantee the SQL ledger gets
// from its transaction.
type MemoryInventory struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewMemoryInventory() *MemoryInventory {
	return &MemoryInventory{products: make(map[string]*domain.Product)}
}

// SetProduct seeds or replaces a product.
func (m *MemoryInventory) SetProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := p
	m.products[p.ID] = &clone
}

func (m *MemoryInventory) Reserve(ctx context.Context, lines []domain.CartLine) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	// First pass: validate every line before touching anything.
	var shortages []domain.Shortage
	for _, l := range lines {
		p, ok := m.products[l.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if p.Stock < l.Quantity {
			shortages = append(shortages, domain.Shortage{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: p.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}

	// Second pass: apply.
	for _, l := range lines {
		m.products[l.ProductID].Stock -= l.Quantity
	}
	return nil
}

func (m *MemoryInventory) Restore(ctx context.Context, lines []domain.CartLine) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range lines {
		p, ok := m.products[l.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
		}
		p.Stock += l.Quantity
	}
	return nil
}

func (m *MemoryInventory) PriceAndStock(ctx context.Context, productID string) (decimal.Decimal, int, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productID]
	if !ok {
		return decimal.Zero, 0, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return p.Price, p.Stock, nil
}

// Stock reports the current stock level, mainly for assertions in tests.
func (m *MemoryInventory) Stock(productID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[productID]; ok {
		return p.Stock
	}
	return 0
}

var (
	_ usecase.Ledger  = (*MemoryInventory)(nil)
	_ usecase.Catalog = (*MemoryInventory)(nil)
)
