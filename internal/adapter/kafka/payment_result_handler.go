package kafka

import (
	"context"
	"errors"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/logging"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// PaymentResultHandler applies gateway results to orders: a SUCCESS result
// confirms the order and records the payment fields verbatim.
type PaymentResultHandler struct {
	Lifecycle *usecase.Lifecycle
}

func NewPaymentResultHandler(lc *usecase.Lifecycle) *PaymentResultHandler {
	return &PaymentResultHandler{Lifecycle: lc}
}

func (h *PaymentResultHandler) Handle(ctx context.Context, ev usecase.PaymentResultMsg) error {
	log := logging.FromCtx(ctx).With("order_id", ev.OrderID, "gateway_status", ev.Status)

	if ev.Status != "SUCCESS" {
		// Failed payments leave the order PENDING; the owner can retry or
		// cancel through the API.
		log.Warn("payment failed at gateway", "response_code", ev.ResponseCode)
		return nil
	}

	_, err := h.Lifecycle.ConfirmPayment(ctx, ev.OrderID, domain.PaymentRecord{
		OrderRef:     ev.OrderRef,
		AuthCode:     ev.AuthCode,
		ResponseCode: ev.ResponseCode,
		CardTail:     ev.CardTail,
		CardType:     ev.CardType,
		Installments: ev.Installments,
	})

	var transition *domain.InvalidTransitionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &transition):
		// A duplicate callback for an already-confirmed order. Drop it
		// after logging; retrying would only wedge the consumer group,
		// and a second confirmation must be investigated, not applied.
		log.Error("duplicate or out-of-order payment callback", "error", err)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		log.Error("payment callback for unknown order")
		return nil
	default:
		return err
	}
}
