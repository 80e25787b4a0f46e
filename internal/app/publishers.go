package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderline/internal/service/outbox"
)

// publishers: куда outbox worker отправляет события и DLQ.
type publishers struct {
	events   domain.OutboxPublisher
	dlq      domain.OutboxPublisher
	producer *kafka.Producer
}

// openPublishers подключает Kafka, если заданы брокеры. Без брокеров или при
// ошибке подключения события пишутся в лог.
func openPublishers(brokers []string, logger *log.Entry) publishers {
	fallback := publishers{events: outbox.NewLogPublisher(logger.WithField("component", "event-log"))}
	if len(brokers) == 0 {
		return fallback
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return fallback
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return publishers{
		events:   kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
		dlq:      kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue),
		producer: producer,
	}
}

func (p publishers) close(logger *log.Entry) {
	if p.producer == nil {
		return
	}
	if err := p.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
