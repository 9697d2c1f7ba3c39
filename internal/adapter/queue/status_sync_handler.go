package queue

import (
	"context"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/logging"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// StatusSyncHandler keeps the status cache in step with order events, so
// consumers that only need the status never hit the order store. Both
// handlers are idempotent; a redelivered event rewrites the same value.
type StatusSyncHandler struct {
	Cache usecase.StatusCache
}

func NewStatusSyncHandler(cache usecase.StatusCache) *StatusSyncHandler {
	return &StatusSyncHandler{Cache: cache}
}

// HandleCreated is intended to be used with queue.JSONHandler[CreatedMsg].
func (h *StatusSyncHandler) HandleCreated(ctx context.Context, msg usecase.CreatedMsg) error {
	logging.FromCtx(ctx).Info("order created event", "order_id", msg.OrderID, "total", msg.Total)
	return h.Cache.SetStatus(ctx, msg.OrderID, msg.Status)
}

// HandleCancelled is intended to be used with queue.JSONHandler[CancelledMsg].
func (h *StatusSyncHandler) HandleCancelled(ctx context.Context, msg usecase.CancelledMsg) error {
	logging.FromCtx(ctx).Info("order cancelled event", "order_id", msg.OrderID, "reason", msg.Reason)
	return h.Cache.SetStatus(ctx, msg.OrderID, string(domain.StatusCancelled))
}
