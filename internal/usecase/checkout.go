package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/logging"
)

var ErrDuplicate = errors.New("duplicate idempotency key")

type CheckoutInput struct {
	UserID         string
	IdempotencyKey string
}

// Checkout converts a user's cart into a persisted order: validate lines,
// reserve stock, snapshot prices, persist, clear the cart. Reservation and
// persistence are tied together by compensating rollback: a failure after
// the reservation restores stock before the error surfaces, so a failed
// checkout never leaves stock decremented without an order.
type Checkout struct {
	orders  Orders
	cart    CartReader
	ledger  Ledger
	catalog Catalog
	idem    IdempotencyStore
	events  EventPublisher
	cache   StatusCache
}

func NewCheckout(orders Orders, cart CartReader, ledger Ledger, catalog Catalog, idem IdempotencyStore, events EventPublisher, cache StatusCache) *Checkout {
	return &Checkout{
		orders:  orders,
		cart:    cart,
		ledger:  ledger,
		catalog: catalog,
		idem:    idem,
		events:  events,
		cache:   cache,
	}
}

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	log := logging.FromCtx(ctx).With("use_case", "checkout", "user_id", in.UserID)

	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidOrder)
	}

	// Fast path: a retried request with the same key gets the order the
	// first attempt persisted.
	if in.IdempotencyKey != "" && uc.idem != nil {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			return uc.orders.GetByID(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "idempotency_lock", Err: err}
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	lines, err := uc.cart.Lines(ctx, in.UserID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "cart_read", Err: err}
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Fixed order keeps concurrent reservations from deadlocking on the
	// same products.
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &domain.InvalidQuantityError{ProductID: l.ProductID, Quantity: l.Quantity}
		}
	}

	if err := uc.ledger.Reserve(ctx, lines); err != nil {
		// Shortage list travels to the caller verbatim; nothing was
		// decremented and the cart is untouched.
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		price, _, err := uc.catalog.PriceAndStock(ctx, l.ProductID)
		if err != nil {
			uc.compensate(ctx, log, lines)
			return nil, err
		}
		items = append(items, domain.LineItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: price})
	}

	order, err := domain.NewOrder(uuid.NewString(), in.UserID, items)
	if err != nil {
		uc.compensate(ctx, log, lines)
		return nil, err
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		uc.compensate(ctx, log, lines)
		return nil, &domain.PersistenceError{Op: "order_create", Err: err}
	}

	// Remember before clearing the cart: if the clear fails and the caller
	// retries with the same key, the retry finds this order instead of
	// reserving stock again.
	if in.IdempotencyKey != "" && uc.idem != nil {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, order.ID)
	}

	if err := uc.cart.Clear(ctx, in.UserID); err != nil {
		if err = uc.cart.Clear(ctx, in.UserID); err != nil {
			// The persisted order stays the source of truth; the stale
			// cart needs operator remediation.
			log.Error("cart clear failed after order persisted", "order_id", order.ID, "error", err)
			return nil, &domain.PersistenceError{Op: "cart_clear", Err: err}
		}
	}

	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, order.ID, string(order.Status))
	}
	if uc.events != nil {
		if err := uc.events.PublishCreated(ctx, NewCreatedMsg(order)); err != nil {
			log.Warn("order.created publish failed", "order_id", order.ID, "error", err)
		}
	}

	log.Info("order created", "order_id", order.ID, "total", order.Total.String(), "items", len(order.Items))
	return order, nil
}

func (uc *Checkout) compensate(ctx context.Context, log *slog.Logger, lines []domain.CartLine) {
	if err := uc.ledger.Restore(ctx, lines); err != nil {
		log.Error("stock restore failed, operator remediation needed", "error", err)
	}
}
