package usecase

import domain "github.com/francoabl/HuertoHogar/internal/entity"

// Published on RabbitMQ when checkout completes.
type CreatedMsg struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	Total   string `json:"total"`
	Status  string `json:"status"`
}

func NewCreatedMsg(o *domain.Order) CreatedMsg {
	return CreatedMsg{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total.String(),
		Status:  string(o.Status),
	}
}

// Published on RabbitMQ when an order is cancelled.
type CancelledMsg struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	Reason  string `json:"reason,omitempty"`
}

// Sent by the payment gateway bridge on Kafka.
type PaymentResultMsg struct {
	OrderID      string `json:"orderId"`
	Status       string `json:"status"` // "SUCCESS" or a gateway failure code
	OrderRef     string `json:"orderRef"`
	AuthCode     string `json:"authCode"`
	ResponseCode string `json:"responseCode"`
	CardTail     string `json:"cardTail"`
	CardType     string `json:"cardType"`
	Installments int    `json:"installments"`
}
