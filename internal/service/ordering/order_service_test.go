package ordering_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
	"github.com/vladislavdragonenkov/orderline/internal/metrics"
	"github.com/vladislavdragonenkov/orderline/internal/service/ordering"
	"github.com/vladislavdragonenkov/orderline/internal/storage/memory"
)

type orderFixture struct {
	svc      *ordering.OrderService
	orders   *spyOrders
	articles domain.ArticleRepository
	lines    domain.OrderLineRepository
	outbox   *memory.OutboxRepository
}

func newOrderFixture(t *testing.T, extra ...ordering.Option) orderFixture {
	t.Helper()

	store := memory.NewStore()
	f := orderFixture{
		orders:   &spyOrders{OrderRepository: memory.NewOrderRepository(store)},
		articles: memory.NewArticleRepository(store),
		lines:    memory.NewOrderLineRepository(store),
		outbox:   memory.NewOutboxRepository(),
	}
	opts := append([]ordering.Option{
		ordering.WithLogger(quietLogger()),
		ordering.WithOutbox(f.outbox),
		ordering.WithClock(func() time.Time { return fixedNow }),
		ordering.WithMetrics(metrics.NewOrderingMetricsWithRegisterer(prometheus.NewRegistry())),
	}, extra...)
	f.svc = ordering.NewOrderService(f.orders, opts...)
	return f
}

func TestOrderService_CreateAssignsNumberAndDate(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{
		OrderID:      55,
		OrderNumber:  "client-chosen",
		CustomerName: "Customer One",
		OrderLines: []dto.OrderLineDto{
			{OrderLineID: 900, ProductName: "Product A", Quantity: 2, Price: 12550},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.OrderID)
	require.Equal(t, "ORD-20241220115358", created.OrderNumber)
	require.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), created.OrderDate.Time)
	require.Len(t, created.OrderLines, 1)
	require.NotEqual(t, int64(900), created.OrderLines[0].OrderLineID)
	require.Equal(t, created.OrderID, created.OrderLines[0].OrderID)

	explicit := dto.NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	dated, err := f.svc.CreateOrder(ctx, &dto.OrderDto{CustomerName: "Customer Two", OrderDate: explicit})
	require.NoError(t, err)
	require.Equal(t, explicit.Time, dated.OrderDate.Time)
	require.NotNil(t, dated.OrderLines)
	require.Empty(t, dated.OrderLines)
}

func TestOrderService_CreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(ctx, nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.svc.CreateOrder(ctx, &dto.OrderDto{CustomerName: ""})
	require.ErrorIs(t, err, domain.ErrCustomerNameRequired)

	_, err = f.svc.CreateOrder(ctx, &dto.OrderDto{
		CustomerName: "Customer One",
		OrderLines:   []dto.OrderLineDto{{ArticleID: 404, ProductName: "ghost", Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownReference)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.Equal(t, 1, f.orders.creates, "only the dangling reference reaches the repository")
	require.Empty(t, f.outbox.AllPending())
}

func TestOrderService_GetMissingIsAbsent(t *testing.T) {
	f := newOrderFixture(t)

	got, err := f.svc.GetOrder(context.Background(), 12345)
	require.NoError(t, err)
	require.True(t, got.IsAbsent())
}

func TestOrderService_UpdateMissingOrder(t *testing.T) {
	f := newOrderFixture(t)

	err := f.svc.UpdateOrder(context.Background(), 12345, &dto.OrderDto{CustomerName: "Customer One"})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.EqualError(t, err, "Order not found")
	require.Zero(t, f.orders.updates)
}

func TestOrderService_UpdateReconcilesLines(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	article, err := f.articles.Create(ctx, domain.Article{Name: "Product A", PriceMinor: 1000})
	require.NoError(t, err)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{
		CustomerName: "Customer One",
		OrderLines: []dto.OrderLineDto{
			{ArticleID: article.ID, ProductName: "L1", Quantity: 1, Price: 1000},
			{ProductName: "L2", Quantity: 2, Price: 2000},
		},
	})
	require.NoError(t, err)
	l1, l2 := created.OrderLines[0], created.OrderLines[1]

	err = f.svc.UpdateOrder(ctx, created.OrderID, &dto.OrderDto{
		OrderNumber:  "ignored",
		CustomerName: "Customer Renamed",
		OrderDate:    created.OrderDate,
		OrderLines: []dto.OrderLineDto{
			{OrderLineID: l1.OrderLineID, ArticleID: article.ID, ProductName: "L1", Quantity: 9, Price: 1000},
			{ProductName: "L3", Quantity: 3, Price: 3000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.orders.updates)
	require.Len(t, f.orders.lastChange.Removed, 1)
	require.Len(t, f.orders.lastChange.Updated, 1)
	require.Len(t, f.orders.lastChange.Added, 1)

	got, err := f.svc.GetOrder(ctx, created.OrderID)
	require.NoError(t, err)
	order := got.MustGet()
	require.Equal(t, created.OrderNumber, order.OrderNumber)
	require.Equal(t, created.OrderDate.Time, order.OrderDate.Time)
	require.Equal(t, "Customer Renamed", order.CustomerName)
	require.Len(t, order.OrderLines, 2)

	require.Equal(t, l1.OrderLineID, order.OrderLines[0].OrderLineID)
	require.Equal(t, int32(9), order.OrderLines[0].Quantity)
	require.Equal(t, "L3", order.OrderLines[1].ProductName)
	require.NotZero(t, order.OrderLines[1].OrderLineID)
	require.NotEqual(t, l2.OrderLineID, order.OrderLines[1].OrderLineID)
	require.Equal(t, created.OrderID, order.OrderLines[1].OrderID)

	_, err = f.lines.Get(ctx, l2.OrderLineID)
	require.ErrorIs(t, err, domain.ErrOrderLineNotFound)
}

func TestOrderService_UpdateWithExplicitDate(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{CustomerName: "Customer One"})
	require.NoError(t, err)

	moved := dto.NewDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.svc.UpdateOrder(ctx, created.OrderID, &dto.OrderDto{CustomerName: "Customer One", OrderDate: moved}))

	got, err := f.svc.GetOrder(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, moved.Time, got.MustGet().OrderDate.Time)
}

func TestOrderService_UpdateValidatesBeforeSaving(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{CustomerName: "Customer One"})
	require.NoError(t, err)

	err = f.svc.UpdateOrder(ctx, created.OrderID, &dto.OrderDto{CustomerName: " "})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.ErrorIs(t, f.svc.UpdateOrder(ctx, created.OrderID, nil), domain.ErrInvalidArgument)

	err = f.svc.UpdateOrder(ctx, created.OrderID, &dto.OrderDto{CustomerName: "Customer One"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.ErrorIs(t, err, domain.ErrOrderDateRequired)
	require.Zero(t, f.orders.updates)

	got, err := f.svc.GetOrder(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, created.OrderDate.Time, got.MustGet().OrderDate.Time)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	deleted, err := f.svc.DeleteOrder(ctx, 777)
	require.NoError(t, err)
	require.False(t, deleted)
	require.Empty(t, f.orders.deletedIDs)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{
		CustomerName: "Customer One",
		OrderLines:   []dto.OrderLineDto{{ProductName: "L1", Quantity: 1}},
	})
	require.NoError(t, err)

	deleted, err = f.svc.DeleteOrder(ctx, created.OrderID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.Equal(t, []int64{created.OrderID}, f.orders.deletedIDs)

	_, err = f.lines.Get(ctx, created.OrderLines[0].OrderLineID)
	require.ErrorIs(t, err, domain.ErrOrderLineNotFound)
}

func TestOrderService_EmitsOrderEvents(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{
		CustomerName: "Customer One",
		OrderLines:   []dto.OrderLineDto{{ProductName: "L1", Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateOrder(ctx, created.OrderID, &dto.OrderDto{CustomerName: "Customer Two", OrderDate: created.OrderDate}))
	_, err = f.svc.DeleteOrder(ctx, created.OrderID)
	require.NoError(t, err)

	pending := f.outbox.AllPending()
	require.Len(t, pending, 3)
	require.Equal(t, domain.EventOrderCreated, pending[0].EventType)
	require.Equal(t, domain.EventOrderUpdated, pending[1].EventType)
	require.Equal(t, domain.EventOrderDeleted, pending[2].EventType)

	var event domain.OrderEvent
	require.NoError(t, json.Unmarshal(pending[1].Payload, &event))
	require.Equal(t, created.OrderID, event.OrderID)
	require.Equal(t, "Customer Two", event.CustomerName)
	require.Zero(t, event.LineCount)
	require.Equal(t, fixedNow, event.OccurredAt)
	require.Equal(t, domain.AggregateOrder, pending[1].AggregateType)
	require.Equal(t, event.AggregateID(), pending[1].AggregateID)
}

func TestOrderService_OutboxFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	outbox := &failingOutbox{}
	f := newOrderFixture(t, ordering.WithOutbox(outbox))

	created, err := f.svc.CreateOrder(ctx, &dto.OrderDto{CustomerName: "Customer One"})
	require.NoError(t, err)
	require.Equal(t, 1, outbox.attempts)

	got, err := f.svc.GetOrder(ctx, created.OrderID)
	require.NoError(t, err)
	require.True(t, got.IsPresent())
}
