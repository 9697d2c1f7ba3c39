package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/logging"
)

// Lifecycle drives an order through its status table after creation. Every
// transition is persisted; illegal moves fail, they are never clamped.
type Lifecycle struct {
	orders Orders
	ledger Ledger
	events EventPublisher
	cache  StatusCache
}

func NewLifecycle(orders Orders, ledger Ledger, events EventPublisher, cache StatusCache) *Lifecycle {
	return &Lifecycle{orders: orders, ledger: ledger, events: events, cache: cache}
}

// ConfirmPayment attaches the gateway result to a PENDING order and moves
// it to CONFIRMED. A repeated confirmation fails with an invalid-transition
// error; a second gateway callback for the same order is something to
// investigate, not auto-apply.
func (l *Lifecycle) ConfirmPayment(ctx context.Context, orderID string, pay domain.PaymentRecord) (*domain.Order, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.AttachPayment(pay, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := l.persistTransition(ctx, order, domain.StatusPending); err != nil {
		return nil, err
	}

	l.refreshCache(ctx, order)
	logging.FromCtx(ctx).Info("payment confirmed", "order_id", order.ID, "auth_code", pay.AuthCode)
	return order, nil
}

// SetStatus is the administrative transition. It walks the same table as
// every other operation; backward moves and jumps are rejected.
func (l *Lifecycle) SetStatus(ctx context.Context, orderID string, target domain.Status, requesterIsAdmin bool) (*domain.Order, error) {
	if !requesterIsAdmin {
		return nil, domain.ErrUnauthorized
	}

	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if target == domain.StatusCancelled {
		return l.cancel(ctx, order, "admin status update")
	}

	from := order.Status
	if err := order.Transition(target); err != nil {
		return nil, err
	}
	if err := l.persistTransition(ctx, order, from); err != nil {
		return nil, err
	}

	l.refreshCache(ctx, order)
	return order, nil
}

// Cancel ends an order. The owner may cancel while it is still PENDING; an
// admin may also cancel a CONFIRMED order. The transition table rules out
// everything else.
func (l *Lifecycle) Cancel(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*domain.Order, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !requesterIsAdmin {
		if order.UserID != requesterID {
			return nil, domain.ErrUnauthorized
		}
		if order.Status != domain.StatusPending {
			return nil, domain.ErrUnauthorized
		}
	}

	return l.cancel(ctx, order, "cancelled by requester")
}

func (l *Lifecycle) cancel(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	from := order.Status
	if err := order.Transition(domain.StatusCancelled); err != nil {
		return nil, err
	}
	if err := l.persistTransition(ctx, order, from); err != nil {
		return nil, err
	}

	// Restore the reservation exactly once: of two racing cancels only one
	// wins the guarded write above, and cancellation is terminal, so this
	// path cannot run twice for the same order.
	if err := l.ledger.Restore(ctx, order.Lines()); err != nil {
		logging.FromCtx(ctx).Error("stock restore failed after cancel, operator remediation needed",
			"order_id", order.ID, "error", err)
		return nil, &domain.PersistenceError{Op: "stock_restore", Err: err}
	}

	l.refreshCache(ctx, order)
	if l.events != nil {
		if err := l.events.PublishCancelled(ctx, CancelledMsg{OrderID: order.ID, UserID: order.UserID, Reason: reason}); err != nil {
			logging.FromCtx(ctx).Warn("order.cancelled publish failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// Get returns an order to its owner or to an admin.
func (l *Lifecycle) Get(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*domain.Order, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requesterIsAdmin && order.UserID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	return order, nil
}

func (l *Lifecycle) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return l.orders.ListByUser(ctx, userID)
}

func (l *Lifecycle) ListByStatus(ctx context.Context, st domain.Status, requesterIsAdmin bool) ([]*domain.Order, error) {
	if !requesterIsAdmin {
		return nil, domain.ErrUnauthorized
	}
	if !st.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidOrder, st)
	}
	return l.orders.ListByStatus(ctx, st)
}

// persistTransition writes the order through the status guard. When the
// guard misses, another transition got there first; the error reports the
// move against the status that actually won.
func (l *Lifecycle) persistTransition(ctx context.Context, order *domain.Order, from domain.Status) error {
	ok, err := l.orders.UpdateIf(ctx, order, from)
	if err != nil {
		return &domain.PersistenceError{Op: "order_update", Err: err}
	}
	if ok {
		return nil
	}

	current, err := l.orders.GetByID(ctx, order.ID)
	if err != nil {
		return err
	}
	return &domain.InvalidTransitionError{From: current.Status, To: order.Status}
}

func (l *Lifecycle) refreshCache(ctx context.Context, order *domain.Order) {
	if l.cache != nil {
		_ = l.cache.SetStatus(ctx, order.ID, string(order.Status))
	}
}
