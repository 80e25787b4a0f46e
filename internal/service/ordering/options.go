// Package ordering реализует сценарии работы с артикулами, заказами и позициями заказов.
package ordering

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/metrics"
)

// Option настраивает сервисы пакета.
type Option func(*deps)

type deps struct {
	logger  *log.Entry
	metrics *metrics.OrderingMetrics
	outbox  domain.OutboxRepository
	now     func() time.Time
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(d *deps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics включает метрики операций.
func WithMetrics(m *metrics.OrderingMetrics) Option {
	return func(d *deps) {
		d.metrics = m
	}
}

// WithOutbox включает запись событий о заказах в outbox.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(d *deps) {
		d.outbox = repo
	}
}

// WithClock подменяет источник времени (номер и дата заказа).
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

func newDeps(component string, opts []Option) deps {
	d := deps{
		logger: log.New().WithField("component", component),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d *deps) observe(entity, operation string, started time.Time, err error) {
	d.metrics.ObserveOperation(entity, operation, err, time.Since(started))
}

// emit ставит событие в outbox. Ошибка только логируется: запись уже сохранена.
func (d *deps) emit(ctx context.Context, eventType string, order domain.Order) {
	if d.outbox == nil {
		return
	}

	event := domain.NewOrderEvent(order, d.now())
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   event.AggregateID(),
		EventType:     eventType,
		Payload:       payload,
	}
	if _, err := d.outbox.Enqueue(ctx, msg); err != nil {
		d.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	}
}
