package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// Результаты операций для label result.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// OrderingMetrics считает операции над артикулами, заказами и позициями.
type OrderingMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lineChanges *prometheus.CounterVec
}

// NewOrderingMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderingMetrics() *OrderingMetrics {
	return NewOrderingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderingMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewOrderingMetricsWithRegisterer(registerer prometheus.Registerer) *OrderingMetrics {
	return &OrderingMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderline_operations_total",
			Help: "Total number of ordering operations by entity, operation and result",
		}, []string{"entity", "operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orderline_operation_duration_seconds",
			Help:    "Duration of ordering operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"entity", "operation"}),
		lineChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderline_order_line_changes_total",
			Help: "Order lines removed, updated and added while updating orders",
		}, []string{"change"}),
	}
}

// ObserveOperation записывает результат и длительность операции.
func (m *OrderingMetrics) ObserveOperation(entity, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(entity, operation, Result(err)).Inc()
	m.duration.WithLabelValues(entity, operation).Observe(elapsed.Seconds())
}

// RecordLineChanges учитывает результат сверки позиций заказа.
func (m *OrderingMetrics) RecordLineChanges(changes domain.LineChanges) {
	if m == nil {
		return
	}
	m.lineChanges.WithLabelValues("removed").Add(float64(len(changes.Removed)))
	m.lineChanges.WithLabelValues("updated").Add(float64(len(changes.Updated)))
	m.lineChanges.WithLabelValues("added").Add(float64(len(changes.Added)))
}

// Result сводит ошибку к значению label result.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case domain.IsNotFound(err):
		return ResultNotFound
	case domain.IsInvalidArgument(err):
		return ResultInvalid
	default:
		return ResultError
	}
}
