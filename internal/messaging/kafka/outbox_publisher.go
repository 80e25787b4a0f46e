package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

var errPublisherNotInitialized = errors.New("kafka outbox publisher is not initialized")

// OutboxTopicPublisher публикует outbox-сообщения конвертами в заданный topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewOutboxPublisher создаёт паблишер; пустой topic означает TopicOrderEvents.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish отправляет сообщение; повторная отправка того же ID безопасна для потребителей,
// которые дедуплицируют по заголовку x-outbox-id.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errPublisherNotInitialized
	}

	envelope := NewEnvelope(msg, p.now())
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", msg.ID, err)
	}

	return p.producer.Send(ctx, p.topic, envelope.Key(), value,
		header(HeaderEventType, msg.EventType),
		header(HeaderAggregateType, msg.AggregateType),
		header(HeaderOutboxID, msg.ID),
	)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
