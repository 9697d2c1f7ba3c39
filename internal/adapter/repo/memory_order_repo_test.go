package repo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
)

func testOrder(t *testing.T, id, userID string) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(id, userID, []domain.LineItem{
		{ProductID: "P1", Quantity: 1, UnitPrice: decimal.RequireFromString("1000")},
	})
	require.NoError(t, err)
	return o
}

func TestMemoryOrderRepo_CreateAndGet(t *testing.T) {
	r := NewMemoryOrderRepo()
	o := testOrder(t, "o1", "u1")

	require.NoError(t, r.Create(context.Background(), o))

	got, err := r.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Total.String(), got.Total.String())

	err = r.Create(context.Background(), o)
	assert.Error(t, err)

	_, err = r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryOrderRepo_ReadsAreIsolated(t *testing.T) {
	r := NewMemoryOrderRepo()
	require.NoError(t, r.Create(context.Background(), testOrder(t, "o1", "u1")))

	got, err := r.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	got.Status = domain.StatusDelivered
	got.Items[0].Quantity = 99

	again, err := r.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryOrderRepo_UpdateIfGuardsStatus(t *testing.T) {
	r := NewMemoryOrderRepo()
	o := testOrder(t, "o1", "u1")

	ok, err := r.UpdateIf(context.Background(), o, domain.StatusPending)
	require.NoError(t, err)
	assert.False(t, ok, "missing order must not match")

	require.NoError(t, r.Create(context.Background(), o))
	require.NoError(t, o.Transition(domain.StatusConfirmed))

	ok, err = r.UpdateIf(context.Background(), o, domain.StatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	// Stale expectation: the stored status moved on, so the guard misses
	// and the write is dropped.
	require.NoError(t, o.Transition(domain.StatusShipped))
	ok, err = r.UpdateIf(context.Background(), o, domain.StatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = r.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestMemoryOrderRepo_Listing(t *testing.T) {
	r := NewMemoryOrderRepo()
	require.NoError(t, r.Create(context.Background(), testOrder(t, "o1", "u1")))
	require.NoError(t, r.Create(context.Background(), testOrder(t, "o2", "u1")))
	require.NoError(t, r.Create(context.Background(), testOrder(t, "o3", "u2")))

	byUser, err := r.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	pending, err := r.ListByStatus(context.Background(), domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	cancelled, err := r.ListByStatus(context.Background(), domain.StatusCancelled)
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}
