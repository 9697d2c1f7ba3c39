package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusConfirmed, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusConfirmed, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}

func TestNewOrder_TotalIsSumOfSubtotals(t *testing.T) {
	o, err := NewOrder("o1", "u1", []LineItem{
		{ProductID: "P1", Quantity: 2, UnitPrice: price("1000")},
		{ProductID: "P2", Quantity: 1, UnitPrice: price("500")},
	})

	require.NoError(t, err)
	assert.Equal(t, "2500", o.Total.String())
	assert.Equal(t, StatusPending, o.Status)
	assert.Nil(t, o.Payment)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestNewOrder_Rejections(t *testing.T) {
	_, err := NewOrder("o1", "u1", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewOrder("", "u1", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("1")}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("o1", "", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("1")}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	var qtyErr *InvalidQuantityError
	_, err = NewOrder("o1", "u1", []LineItem{{ProductID: "P1", Quantity: 0, UnitPrice: price("1")}})
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, "P1", qtyErr.ProductID)

	_, err = NewOrder("o1", "u1", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("-1")}})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestOrder_Transition(t *testing.T) {
	o, err := NewOrder("o1", "u1", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("100")}})
	require.NoError(t, err)

	require.NoError(t, o.Transition(StatusConfirmed))
	require.NoError(t, o.Transition(StatusShipped))
	require.NoError(t, o.Transition(StatusDelivered))

	err = o.Transition(StatusCancelled)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, StatusDelivered, transErr.From)
	assert.Equal(t, StatusCancelled, transErr.To)
	// Status stays where it was.
	assert.Equal(t, StatusDelivered, o.Status)
}

func TestOrder_AttachPayment(t *testing.T) {
	o, err := NewOrder("o1", "u1", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("100")}})
	require.NoError(t, err)

	paidAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pay := PaymentRecord{OrderRef: "ref", AuthCode: "auth", ResponseCode: "0"}

	require.NoError(t, o.AttachPayment(pay, paidAt))
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, o.Payment)
	assert.Equal(t, paidAt, o.Payment.PaidAt)

	err = o.AttachPayment(pay, paidAt.Add(time.Minute))
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, paidAt, o.Payment.PaidAt)
}

func TestOrder_CloneIsIndependent(t *testing.T) {
	o, err := NewOrder("o1", "u1", []LineItem{{ProductID: "P1", Quantity: 1, UnitPrice: price("100")}})
	require.NoError(t, err)
	require.NoError(t, o.AttachPayment(PaymentRecord{OrderRef: "ref"}, time.Now().UTC()))

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	clone.Payment.OrderRef = "changed"

	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "ref", o.Payment.OrderRef)
}

func TestLineItem_Subtotal(t *testing.T) {
	li := LineItem{ProductID: "P1", Quantity: 3, UnitPrice: price("19.90")}
	assert.Equal(t, "59.7", li.Subtotal().String())
}
