package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the full set of legal status moves. Anything not listed
// here is rejected; there is no way out of DELIVERED or CANCELLED.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the move s -> target is in the table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// LineItem is the historical record of one purchased product. UnitPrice is
// snapshotted from the catalog at order-creation time and never re-read, so
// later catalog price changes do not touch existing orders.
type LineItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PaymentRecord holds the gateway result fields exactly as received.
type PaymentRecord struct {
	OrderRef     string
	AuthCode     string
	ResponseCode string
	CardTail     string
	CardType     string
	Installments int
	PaidAt       time.Time
}

type Order struct {
	ID        string
	UserID    string
	Items     []LineItem
	Total     decimal.Decimal
	Status    Status
	Payment   *PaymentRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder builds a PENDING order from already-snapshotted line items and
// computes the total as the sum of subtotals. The total is never set from
// the outside.
func NewOrder(id, userID string, items []LineItem) (*Order, error) {
	if id == "" || userID == "" {
		return nil, ErrInvalidOrder
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		if it.UnitPrice.IsNegative() {
			return nil, ErrInvalidOrder
		}
		total = total.Add(it.Subtotal())
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Transition moves the order to target if the table allows it.
func (o *Order) Transition(target Status) error {
	if !target.IsValid() || !o.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	o.Status = target
	o.touch()
	return nil
}

// AttachPayment records the gateway result and confirms the order. Only a
// PENDING order accepts a payment; a second confirmation attempt is
// rejected so a duplicate gateway callback gets investigated instead of
// silently applied.
func (o *Order) AttachPayment(p PaymentRecord, paidAt time.Time) error {
	if o.Status != StatusPending {
		return &InvalidTransitionError{From: o.Status, To: StatusConfirmed}
	}
	p.PaidAt = paidAt
	o.Payment = &p
	o.Status = StatusConfirmed
	o.touch()
	return nil
}

// Lines converts the order items back to cart lines, used to restore stock
// on cancellation.
func (o *Order) Lines() []CartLine {
	lines := make([]CartLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		clone.Payment = &p
	}
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
