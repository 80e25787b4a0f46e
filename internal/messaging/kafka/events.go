package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "orderline.order.events"
	TopicDeadLetterQueue = "orderline.dlq"
)

// Заголовки, которые дублируют поля конверта для маршрутизации без разбора JSON.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)

// Envelope: то, что уходит в topic: outbox-сообщение с исходным payload.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope упаковывает outbox-сообщение. Пустой payload становится null.
func NewEnvelope(msg domain.OutboxMessage, publishedAt time.Time) Envelope {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		PublishedAt:   publishedAt.UTC(),
	}
}

// Key: ключ партиционирования: события одного заказа попадают в одну партицию.
func (e Envelope) Key() string {
	if e.AggregateID != "" {
		return e.AggregateID
	}
	return e.ID
}

// OrderEvent разбирает payload как событие заказа.
func (e Envelope) OrderEvent() (domain.OrderEvent, error) {
	var event domain.OrderEvent
	if e.AggregateType != domain.AggregateOrder {
		return event, fmt.Errorf("envelope %s carries %q, not an order event", e.ID, e.AggregateType)
	}
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return event, fmt.Errorf("unmarshal order event: %w", err)
	}
	return event, nil
}
