package repo

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// MemoryOrderRepo stores orders in a map, cloning on the way in and out so
// callers never share mutable state with the store.
type MemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return fmt.Errorf("order repository: duplicate id %s", o.ID)
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *MemoryOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *MemoryOrderRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (r *MemoryOrderRepo) ListByStatus(ctx context.Context, st domain.Status) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.Status == st {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

// UpdateIf writes the order only while the stored status still equals from,
// under the same lock every other access takes, so two racing transitions
// cannot both see their expected status.
func (r *MemoryOrderRepo) UpdateIf(ctx context.Context, o *domain.Order, from domain.Status) (bool, error) {
	_ = ctx
	if o == nil || o.ID == "" {
		return false, fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.orders[o.ID]
	if !exists || existing.Status != from {
		return false, nil
	}
	r.orders[o.ID] = o.Clone()
	return true, nil
}

var _ usecase.Orders = (*MemoryOrderRepo)(nil)
