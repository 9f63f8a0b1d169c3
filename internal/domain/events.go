package domain

import "time"

// Типы событий, публикуемых сервисами через outbox.
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderDelivered = "order.delivered"

	EventPaymentCreated   = "payment.created"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"

	EventPromotionApplied = "promotion.applied"
)

// OrderEvent — полезная нагрузка события заказа.
type OrderEvent struct {
	EventType     string                 `json:"event_type"`
	OrderID       string                 `json:"order_id"`
	CustomerEmail string                 `json:"customer_email"`
	Status        string                 `json:"status"`
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// PaymentEvent — полезная нагрузка события платежа.
type PaymentEvent struct {
	EventType   string                 `json:"event_type"`
	PaymentID   string                 `json:"payment_id"`
	OrderID     string                 `json:"order_id"`
	AmountMinor int64                  `json:"amount_minor"`
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent собирает событие из текущего состояния заказа.
func NewOrderEvent(eventType string, order Order, metadata map[string]interface{}) OrderEvent {
	return OrderEvent{
		EventType:     eventType,
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Status:        string(order.Status),
		Timestamp:     time.Now().UTC(),
		Metadata:      metadata,
	}
}

// NewPaymentEvent собирает событие из текущего состояния платежа.
func NewPaymentEvent(eventType string, payment Payment, metadata map[string]interface{}) PaymentEvent {
	return PaymentEvent{
		EventType:   eventType,
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		AmountMinor: payment.AmountMinor,
		Status:      string(payment.Status),
		Timestamp:   time.Now().UTC(),
		Metadata:    metadata,
	}
}
