package repo

import (
	"context"
	"sort"
	"sync"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// MemoryCart is a map-backed cart reader for tests and local runs.
type MemoryCart struct {
	mu    sync.RWMutex
	carts map[string]map[string]int // userID -> productID -> quantity
}

func NewMemoryCart() *MemoryCart {
	return &MemoryCart{carts: make(map[string]map[string]int)}
}

// SetLine seeds a cart line; quantity zero removes the line.
func (c *MemoryCart) SetLine(userID, productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[userID]
	if !ok {
		cart = make(map[string]int)
		c.carts[userID] = cart
	}
	if quantity == 0 {
		delete(cart, productID)
		return
	}
	cart[productID] = quantity
}

func (c *MemoryCart) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	cart := c.carts[userID]
	lines := make([]domain.CartLine, 0, len(cart))
	for pid, qty := range cart {
		lines = append(lines, domain.CartLine{ProductID: pid, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (c *MemoryCart) Clear(ctx context.Context, userID string) error {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.carts, userID)
	return nil
}

// Len reports how many lines a user's cart holds, for test assertions.
func (c *MemoryCart) Len(userID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.carts[userID])
}

var _ usecase.CartReader = (*MemoryCart)(nil)
