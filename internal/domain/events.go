package domain

import (
	"strconv"
	"time"
)

// AggregateOrder: тип агрегата в outbox-сообщениях о заказах.
const AggregateOrder = "order"

// Типы событий заказа.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// OrderEvent: полезная нагрузка outbox-сообщения о заказе.
type OrderEvent struct {
	OrderID      int64     `json:"orderId"`
	OrderNumber  string    `json:"orderNumber,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
	LineCount    int       `json:"lineCount"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// NewOrderEvent снимает с заказа поля, которые уходят в событие.
func NewOrderEvent(order Order, occurredAt time.Time) OrderEvent {
	return OrderEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		LineCount:    len(order.Lines),
		OccurredAt:   occurredAt.UTC(),
	}
}

// AggregateID возвращает ключ агрегата для outbox и ключа сообщения Kafka.
func (e OrderEvent) AggregateID() string {
	return strconv.FormatInt(e.OrderID, 10)
}
