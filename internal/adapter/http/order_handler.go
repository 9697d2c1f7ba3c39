package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/francoabl/HuertoHogar/internal/adapter/http/middleware"
	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

type OrderHandler struct {
	checkout  *usecase.Checkout
	lifecycle *usecase.Lifecycle
}

func NewOrderHandler(checkout *usecase.Checkout, lifecycle *usecase.Lifecycle) *OrderHandler {
	return &OrderHandler{checkout: checkout, lifecycle: lifecycle}
}

type lineItemResp struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type paymentResp struct {
	OrderRef     string    `json:"orderRef"`
	AuthCode     string    `json:"authCode"`
	ResponseCode string    `json:"responseCode"`
	CardTail     string    `json:"cardTail"`
	CardType     string    `json:"cardType"`
	Installments int       `json:"installments"`
	PaidAt       time.Time `json:"paidAt"`
}

type orderResp struct {
	ID          string         `json:"id"`
	OwnerUserID string         `json:"ownerUserId"`
	Items       []lineItemResp `json:"items"`
	Total       string         `json:"total"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	Payment     *paymentResp   `json:"payment"`
}

func toOrderResp(o *domain.Order) orderResp {
	items := make([]lineItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemResp{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
		})
	}
	resp := orderResp{
		ID:          o.ID,
		OwnerUserID: o.UserID,
		Items:       items,
		Total:       o.Total.String(),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
	if p := o.Payment; p != nil {
		resp.Payment = &paymentResp{
			OrderRef:     p.OrderRef,
			AuthCode:     p.AuthCode,
			ResponseCode: p.ResponseCode,
			CardTail:     p.CardTail,
			CardType:     p.CardType,
			Installments: p.Installments,
			PaidAt:       p.PaidAt,
		}
	}
	return resp
}

// CreateFromCart turns the requester's cart into an order.
func (h *OrderHandler) CreateFromCart(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated requests

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.checkout.Execute(ctx, usecase.CheckoutInput{
		UserID:         id.UserID,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResp(order))
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.lifecycle.Get(ctx, c.Param("id"), id.UserID, id.Admin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.lifecycle.ListForUser(ctx, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	c.JSON(http.StatusOK, out)
}

type confirmPaymentReq struct {
	OrderRef     string `json:"orderRef" binding:"required"`
	AuthCode     string `json:"authCode" binding:"required"`
	ResponseCode string `json:"responseCode" binding:"required"`
	CardTail     string `json:"cardTail"`
	CardType     string `json:"cardType"`
	Installments int    `json:"installments"`
}

// ConfirmPayment records a gateway result reported by the storefront after
// the payment flow returns. Only the order owner (or an admin) may post it.
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req confirmPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orderID := c.Param("id")

	// Ownership check before touching the state machine.
	if _, err := h.lifecycle.Get(ctx, orderID, id.UserID, id.Admin); err != nil {
		writeError(c, err)
		return
	}

	order, err := h.lifecycle.ConfirmPayment(ctx, orderID, domain.PaymentRecord{
		OrderRef:     req.OrderRef,
		AuthCode:     req.AuthCode,
		ResponseCode: req.ResponseCode,
		CardTail:     req.CardTail,
		CardType:     req.CardType,
		Installments: req.Installments,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

type setStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.lifecycle.SetStatus(ctx, c.Param("id"), domain.Status(req.Status), id.Admin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.lifecycle.Cancel(ctx, c.Param("id"), id.UserID, id.Admin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) ListByStatus(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.lifecycle.ListByStatus(ctx, domain.Status(c.Query("status")), id.Admin)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	c.JSON(http.StatusOK, out)
}

// writeError maps domain errors onto transport codes. Every error the core
// returns is a value; nothing is swallowed here.
func writeError(c *gin.Context, err error) {
	var (
		quantity   *domain.InvalidQuantityError
		stock      *domain.InsufficientStockError
		transition *domain.InvalidTransitionError
		persist    *domain.PersistenceError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart"})
	case errors.As(err, &quantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid_quantity",
			"productId": quantity.ProductID,
			"quantity":  quantity.Quantity,
		})
	case errors.As(err, &stock):
		shortages := make([]gin.H, 0, len(stock.Shortages))
		for _, s := range stock.Shortages {
			shortages = append(shortages, gin.H{
				"productId": s.ProductID,
				"requested": s.Requested,
				"available": s.Available,
			})
		}
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "shortages": shortages})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid_transition",
			"from":  string(transition.From),
			"to":    string(transition.To),
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
	case errors.Is(err, domain.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
	case errors.As(err, &persist):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence_failure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
