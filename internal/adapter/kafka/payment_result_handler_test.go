package kafka

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francoabl/HuertoHogar/internal/adapter/repo"
	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

func newHandlerFixture(t *testing.T) (*PaymentResultHandler, *repo.MemoryOrderRepo, *domain.Order) {
	t.Helper()

	orders := repo.NewMemoryOrderRepo()
	inv := repo.NewMemoryInventory()
	inv.SetProduct(domain.Product{ID: "P1", Price: decimal.RequireFromString("1000"), Stock: 5})

	order, err := domain.NewOrder("o1", "u1", []domain.LineItem{
		{ProductID: "P1", Quantity: 1, UnitPrice: decimal.RequireFromString("1000")},
	})
	require.NoError(t, err)
	require.NoError(t, orders.Create(context.Background(), order))

	lc := usecase.NewLifecycle(orders, inv, nil, nil)
	return NewPaymentResultHandler(lc), orders, order
}

func successMsg(orderID string) usecase.PaymentResultMsg {
	return usecase.PaymentResultMsg{
		OrderID:      orderID,
		Status:       "SUCCESS",
		OrderRef:     "ref-1",
		AuthCode:     "auth-1",
		ResponseCode: "0",
		CardTail:     "4242",
		CardType:     "Visa",
		Installments: 1,
	}
}

func TestPaymentResultHandler_SuccessConfirmsOrder(t *testing.T) {
	h, orders, order := newHandlerFixture(t)

	err := h.Handle(context.Background(), successMsg(order.ID))

	require.NoError(t, err)
	got, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.Payment)
	assert.Equal(t, "auth-1", got.Payment.AuthCode)
}

func TestPaymentResultHandler_FailureLeavesOrderPending(t *testing.T) {
	h, orders, order := newHandlerFixture(t)

	msg := successMsg(order.ID)
	msg.Status = "FAILED"
	msg.ResponseCode = "-1"

	err := h.Handle(context.Background(), msg)

	require.NoError(t, err)
	got, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.Payment)
}

func TestPaymentResultHandler_DuplicateCallbackDropped(t *testing.T) {
	h, orders, order := newHandlerFixture(t)

	require.NoError(t, h.Handle(context.Background(), successMsg(order.ID)))

	dup := successMsg(order.ID)
	dup.AuthCode = "auth-2"

	// The duplicate is dropped without error, so the consumer group moves
	// on; the recorded payment stays the first one.
	require.NoError(t, h.Handle(context.Background(), dup))

	got, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth-1", got.Payment.AuthCode)
}

func TestPaymentResultHandler_UnknownOrderDropped(t *testing.T) {
	h, _, _ := newHandlerFixture(t)

	err := h.Handle(context.Background(), successMsg("missing"))

	assert.NoError(t, err)
}
