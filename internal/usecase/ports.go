package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
)

// Orders is the persistence boundary for the order aggregate. Items travel
// with the order; they have no identity of their own.
//
// UpdateIf persists the order only while the stored status still equals
// from, and reports whether the guard matched. Status moves race with each
// other (two cancels, a cancel against a payment callback), so the write is
// a compare-and-swap; an unconditional update would let both racers win.
type Orders interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, st domain.Status) ([]*domain.Order, error)
	UpdateIf(ctx context.Context, o *domain.Order, from domain.Status) (bool, error)
}

// CartReader reads and clears a user's cart. Adding/removing lines belongs
// to the cart component, not to checkout.
type CartReader interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID string) error
}

// Ledger is the only path that mutates stock. Reserve is all-or-nothing:
// either every line is decremented or none is, and a failure carries every
// shortage. Restore puts a reservation back; callers must not restore the
// same order twice.
type Ledger interface {
	Reserve(ctx context.Context, lines []domain.CartLine) error
	Restore(ctx context.Context, lines []domain.CartLine) error
}

// Catalog resolves the current unit price and stock of a product.
type Catalog interface {
	PriceAndStock(ctx context.Context, productID string) (decimal.Decimal, int, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// EventPublisher emits order lifecycle events. Publishing is best effort
// and never fails the operation that triggered it.
type EventPublisher interface {
	PublishCreated(ctx context.Context, msg CreatedMsg) error
	PublishCancelled(ctx context.Context, msg CancelledMsg) error
}

type StatusCache interface {
	SetStatus(ctx context.Context, orderID, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}
