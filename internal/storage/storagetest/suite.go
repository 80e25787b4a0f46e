// Package storagetest содержит общий набор проверок для всех реализаций хранилища.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/storage/seed"
)

// Repos: набор репозиториев одного хранилища.
type Repos struct {
	Articles    domain.ArticleRepository
	Orders      domain.OrderRepository
	Lines       domain.OrderLineRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository
}

// Suite проверяет контракт репозиториев. Factory вызывается перед каждым
// тестом и должна возвращать пустое хранилище.
type Suite struct {
	suite.Suite
	Factory func(t *testing.T) Repos

	ctx context.Context
	r   Repos
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.r = s.Factory(s.T())
}

func ptr(v int64) *int64 { return &v }

func (s *Suite) createArticle(name string, price int64) domain.Article {
	a, err := s.r.Articles.Create(s.ctx, domain.Article{Name: name, PriceMinor: price})
	s.Require().NoError(err)
	s.Require().NotZero(a.ID)
	return a
}

func (s *Suite) createOrder(lines ...domain.OrderLine) domain.Order {
	o, err := s.r.Orders.Create(s.ctx, domain.Order{
		OrderNumber:  "ORD-20241220115358",
		CustomerName: "John Doe",
		OrderDate:    time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		Lines:        lines,
	})
	s.Require().NoError(err)
	return o
}

func (s *Suite) TestArticles_CRUD() {
	empty, err := s.r.Articles.List(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(empty)
	s.Require().Empty(empty)

	a := s.createArticle("Product A", 10000)
	b := s.createArticle("Product B", 15000)
	s.Require().Greater(b.ID, a.ID)

	a.Name = "Product A+"
	a.PriceMinor = 12550
	s.Require().NoError(s.r.Articles.Update(s.ctx, a))

	stored, err := s.r.Articles.Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Equal(a, stored)

	all, err := s.r.Articles.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal([]domain.Article{a, b}, all)

	s.Require().NoError(s.r.Articles.Delete(s.ctx, b.ID))
	_, err = s.r.Articles.Get(s.ctx, b.ID)
	s.Require().ErrorIs(err, domain.ErrArticleNotFound)
	s.Require().ErrorIs(s.r.Articles.Delete(s.ctx, b.ID), domain.ErrArticleNotFound)
	s.Require().ErrorIs(s.r.Articles.Update(s.ctx, domain.Article{ID: b.ID, Name: "x"}), domain.ErrArticleNotFound)
}

func (s *Suite) TestSeed_FillsEmptyStoreOnce() {
	now := time.Date(2024, 12, 20, 15, 4, 5, 0, time.UTC)

	applied, err := seed.Apply(s.ctx, s.r.Articles, s.r.Orders, now)
	s.Require().NoError(err)
	s.Require().True(applied)

	articles, err := s.r.Articles.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(articles, 2)
	s.Require().Equal("Product A", articles[0].Name)
	s.Require().Equal(int64(10000), articles[0].PriceMinor)
	s.Require().Equal("Product B", articles[1].Name)
	s.Require().Equal(int64(15000), articles[1].PriceMinor)

	orders, err := s.r.Orders.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Require().Equal("ORD001", orders[0].OrderNumber)
	s.Require().Equal("John Doe", orders[0].CustomerName)
	s.Require().True(orders[0].OrderDate.Equal(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)))
	s.Require().Equal("ORD002", orders[1].OrderNumber)
	s.Require().Equal("Jane Smith", orders[1].CustomerName)
	s.Require().True(orders[1].OrderDate.Equal(time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC)))

	s.Require().Len(orders[0].Lines, 1)
	s.Require().Equal(articles[0].ID, *orders[0].Lines[0].ArticleID)
	s.Require().Equal(int32(2), orders[0].Lines[0].Quantity)
	s.Require().Equal(int64(10000), orders[0].Lines[0].PriceMinor)
	s.Require().Len(orders[1].Lines, 1)
	s.Require().Equal(articles[1].ID, *orders[1].Lines[0].ArticleID)
	s.Require().Equal(int32(1), orders[1].Lines[0].Quantity)

	applied, err = seed.Apply(s.ctx, s.r.Articles, s.r.Orders, now)
	s.Require().NoError(err)
	s.Require().False(applied)

	again, err := s.r.Articles.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(again, 2)
}

func (s *Suite) TestOrders_CreateGetList() {
	article := s.createArticle("Product A", 10000)

	first := s.createOrder(
		domain.OrderLine{ArticleID: ptr(article.ID), ProductName: "Product A", Quantity: 2, PriceMinor: 10000},
		domain.OrderLine{ProductName: "Product B", Quantity: 1, PriceMinor: 15000},
	)
	s.Require().NotZero(first.ID)
	s.Require().Len(first.Lines, 2)
	for _, line := range first.Lines {
		s.Require().NotZero(line.ID)
		s.Require().NotNil(line.OrderID)
		s.Require().Equal(first.ID, *line.OrderID)
	}

	second := s.createOrder()
	s.Require().NotNil(second.Lines)
	s.Require().Empty(second.Lines)

	stored, err := s.r.Orders.Get(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Require().Equal(first, stored)

	orders, err := s.r.Orders.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Require().Equal(first, orders[0])
	s.Require().Equal(second.ID, orders[1].ID)
	s.Require().NotNil(orders[1].Lines)
	s.Require().Empty(orders[1].Lines)

	_, err = s.r.Orders.Get(s.ctx, second.ID+100)
	s.Require().ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *Suite) TestOrders_CreateWithUnknownArticleWritesNothing() {
	_, err := s.r.Orders.Create(s.ctx, domain.Order{
		OrderNumber:  "ORD-1",
		CustomerName: "John Doe",
		OrderDate:    time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		Lines:        []domain.OrderLine{{ArticleID: ptr(4040), ProductName: "ghost", Quantity: 1}},
	})
	s.Require().ErrorIs(err, domain.ErrUnknownReference)
	s.Require().ErrorIs(err, domain.ErrInvalidArgument)

	orders, err := s.r.Orders.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(orders)
	lines, err := s.r.Lines.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(lines)
}

func (s *Suite) TestOrders_UpdateReconcilesLines() {
	article := s.createArticle("Product A", 10000)
	order := s.createOrder(
		domain.OrderLine{ArticleID: ptr(article.ID), ProductName: "Product A", Quantity: 2, PriceMinor: 10000},
		domain.OrderLine{ProductName: "Product B", Quantity: 1, PriceMinor: 15000},
	)
	keptID, removedID := order.Lines[0].ID, order.Lines[1].ID

	order.CustomerName = "Jane Smith"
	order.OrderDate = time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)
	changes := domain.ReconcileLines(&order, []domain.OrderLine{
		{ID: keptID, ArticleID: ptr(article.ID), ProductName: "Product A", Quantity: 5, PriceMinor: 9900},
		{ProductName: "Product C", Quantity: 3, PriceMinor: 500},
	})
	s.Require().NoError(s.r.Orders.Update(s.ctx, order, changes))

	stored, err := s.r.Orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal("Jane Smith", stored.CustomerName)
	s.Require().Equal("ORD-20241220115358", stored.OrderNumber)
	s.Require().Equal(order.OrderDate, stored.OrderDate)
	s.Require().Len(stored.Lines, 2)
	s.Require().Equal(keptID, stored.Lines[0].ID)
	s.Require().Equal(int32(5), stored.Lines[0].Quantity)
	s.Require().Equal(int64(9900), stored.Lines[0].PriceMinor)
	s.Require().Equal("Product C", stored.Lines[1].ProductName)
	s.Require().Equal(order.ID, *stored.Lines[1].OrderID)

	_, err = s.r.Lines.Get(s.ctx, removedID)
	s.Require().ErrorIs(err, domain.ErrOrderLineNotFound)
}

func (s *Suite) TestOrders_UpdateWithEmptyLinesRemovesAll() {
	order := s.createOrder(
		domain.OrderLine{ProductName: "A", Quantity: 1},
		domain.OrderLine{ProductName: "B", Quantity: 1},
	)

	changes := domain.ReconcileLines(&order, nil)
	s.Require().Len(changes.Removed, 2)
	s.Require().NoError(s.r.Orders.Update(s.ctx, order, changes))

	stored, err := s.r.Orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Empty(stored.Lines)
}

func (s *Suite) TestOrders_UpdateIsAtomic() {
	order := s.createOrder(domain.OrderLine{ProductName: "A", Quantity: 1})

	order.CustomerName = "Changed"
	changes := domain.ReconcileLines(&order, []domain.OrderLine{{ArticleID: ptr(777), ProductName: "B", Quantity: 1}})
	s.Require().ErrorIs(s.r.Orders.Update(s.ctx, order, changes), domain.ErrUnknownReference)

	stored, err := s.r.Orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal("John Doe", stored.CustomerName)
	s.Require().Len(stored.Lines, 1)
	s.Require().Equal("A", stored.Lines[0].ProductName)
}

func (s *Suite) TestOrders_UpdateForeignLineFails() {
	own := s.createOrder(domain.OrderLine{ProductName: "own", Quantity: 1})
	other := s.createOrder(domain.OrderLine{ProductName: "other", Quantity: 1})

	foreign := other.Lines[0]
	foreign.ProductName = "hijacked"
	changes := domain.LineChanges{Updated: []domain.OrderLine{foreign}}
	s.Require().ErrorIs(s.r.Orders.Update(s.ctx, own, changes), domain.ErrOrderLineNotFound)

	stored, err := s.r.Lines.Get(s.ctx, foreign.ID)
	s.Require().NoError(err)
	s.Require().Equal("other", stored.ProductName)
}

func (s *Suite) TestOrders_UpdateMissing() {
	err := s.r.Orders.Update(s.ctx, domain.Order{ID: 42, CustomerName: "x"}, domain.LineChanges{})
	s.Require().ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *Suite) TestOrders_DeleteCascadesLines() {
	order := s.createOrder(domain.OrderLine{ProductName: "A", Quantity: 1})
	loose, err := s.r.Lines.Create(s.ctx, domain.OrderLine{ProductName: "loose", Quantity: 1})
	s.Require().NoError(err)

	s.Require().NoError(s.r.Orders.Delete(s.ctx, order.ID))
	s.Require().ErrorIs(s.r.Orders.Delete(s.ctx, order.ID), domain.ErrOrderNotFound)

	lines, err := s.r.Lines.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Require().Equal(loose.ID, lines[0].ID)
	s.Require().Nil(lines[0].OrderID)
}

func (s *Suite) TestArticles_DeleteKeepsLineSnapshots() {
	article := s.createArticle("Product A", 10000)
	order := s.createOrder(domain.OrderLine{ArticleID: ptr(article.ID), ProductName: "Product A", Quantity: 1, PriceMinor: 10000})

	s.Require().NoError(s.r.Articles.Delete(s.ctx, article.ID))

	stored, err := s.r.Orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Lines, 1)
	s.Require().Nil(stored.Lines[0].ArticleID)
	s.Require().Equal("Product A", stored.Lines[0].ProductName)
	s.Require().Equal(int64(10000), stored.Lines[0].PriceMinor)
}

func (s *Suite) TestLines_CRUD() {
	order := s.createOrder()
	article := s.createArticle("Product A", 100)

	line, err := s.r.Lines.Create(s.ctx, domain.OrderLine{
		OrderID: ptr(order.ID), ArticleID: ptr(article.ID), ProductName: "Product A", Quantity: 4, PriceMinor: 100,
	})
	s.Require().NoError(err)
	s.Require().NotZero(line.ID)

	line.Quantity = 7
	line.ArticleID = nil
	s.Require().NoError(s.r.Lines.Update(s.ctx, line))

	stored, err := s.r.Lines.Get(s.ctx, line.ID)
	s.Require().NoError(err)
	s.Require().Equal(line, stored)

	withLine, err := s.r.Orders.Get(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal([]domain.OrderLine{line}, withLine.Lines)

	s.Require().NoError(s.r.Lines.Delete(s.ctx, line.ID))
	s.Require().ErrorIs(s.r.Lines.Delete(s.ctx, line.ID), domain.ErrOrderLineNotFound)
	s.Require().ErrorIs(s.r.Lines.Update(s.ctx, line), domain.ErrOrderLineNotFound)

	lines, err := s.r.Lines.List(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(lines)
	s.Require().Empty(lines)
}

func (s *Suite) TestLines_ReferencesAreChecked() {
	_, err := s.r.Lines.Create(s.ctx, domain.OrderLine{OrderID: ptr(9001), ProductName: "A", Quantity: 1})
	s.Require().ErrorIs(err, domain.ErrUnknownReference)

	line, err := s.r.Lines.Create(s.ctx, domain.OrderLine{ProductName: "A", Quantity: 1})
	s.Require().NoError(err)

	line.ArticleID = ptr(9002)
	s.Require().ErrorIs(s.r.Lines.Update(s.ctx, line), domain.ErrUnknownReference)
}

func (s *Suite) TestOutbox_Lifecycle() {
	stats, err := s.r.Outbox.Stats(s.ctx)
	s.Require().NoError(err)
	s.Require().Zero(stats.PendingCount)
	s.Require().True(stats.OldestPendingAt.IsZero())

	saved, err := s.r.Outbox.Enqueue(s.ctx, domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "1",
		EventType:     "order.created",
		Payload:       []byte(`{"orderId":1}`),
	})
	s.Require().NoError(err)
	s.Require().NotEmpty(saved.ID)

	pending, err := s.r.Outbox.PullPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Require().Equal(saved.ID, pending[0].ID)
	s.Require().JSONEq(`{"orderId":1}`, string(pending[0].Payload))

	stats, err = s.r.Outbox.Stats(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, stats.PendingCount)
	s.Require().False(stats.OldestPendingAt.IsZero())

	s.Require().NoError(s.r.Outbox.MarkSent(s.ctx, saved.ID))
	pending, err = s.r.Outbox.PullPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Empty(pending)

	s.Require().ErrorIs(s.r.Outbox.MarkFailed(s.ctx, "missing"), domain.ErrOutboxPublish)
}

func (s *Suite) TestIdempotency_Lifecycle() {
	ttl := time.Now().UTC().Add(time.Hour)

	created, err := s.r.Idempotency.CreateProcessing(s.ctx, "key-1", "hash-1", ttl)
	s.Require().NoError(err)
	s.Require().Equal(domain.IdempotencyStatusProcessing, created.Status)

	existing, err := s.r.Idempotency.CreateProcessing(s.ctx, "key-1", "hash-1", ttl)
	s.Require().ErrorIs(err, domain.ErrIdempotencyKeyAlreadyExists)
	s.Require().Equal("hash-1", existing.RequestHash)

	_, err = s.r.Idempotency.CreateProcessing(s.ctx, "key-1", "hash-2", ttl)
	s.Require().ErrorIs(err, domain.ErrIdempotencyHashMismatch)

	s.Require().NoError(s.r.Idempotency.MarkDone(s.ctx, "key-1", []byte(`{"articleId":1}`), 201))
	done, err := s.r.Idempotency.Get(s.ctx, "key-1")
	s.Require().NoError(err)
	s.Require().Equal(domain.IdempotencyStatusDone, done.Status)
	s.Require().Equal(201, done.HTTPStatus)
	s.Require().JSONEq(`{"articleId":1}`, string(done.ResponseBody))

	s.Require().ErrorIs(s.r.Idempotency.MarkFailed(s.ctx, "missing", nil, 500), domain.ErrIdempotencyKeyNotFound)
	_, err = s.r.Idempotency.Get(s.ctx, "missing")
	s.Require().ErrorIs(err, domain.ErrIdempotencyKeyNotFound)
}

func (s *Suite) TestIdempotency_ExpiredKeys() {
	past := time.Now().UTC().Add(-time.Minute)

	_, err := s.r.Idempotency.CreateProcessing(s.ctx, "stale", "hash-1", past)
	s.Require().NoError(err)

	reused, err := s.r.Idempotency.CreateProcessing(s.ctx, "stale", "hash-2", time.Now().UTC().Add(time.Hour))
	s.Require().NoError(err)
	s.Require().Equal("hash-2", reused.RequestHash)

	for _, key := range []string{"old-1", "old-2", "old-3"} {
		_, err := s.r.Idempotency.CreateProcessing(s.ctx, key, "h", past)
		s.Require().NoError(err)
	}

	removed, err := s.r.Idempotency.DeleteExpired(s.ctx, time.Now().UTC(), 2)
	s.Require().NoError(err)
	s.Require().Equal(2, removed)

	removed, err = s.r.Idempotency.DeleteExpired(s.ctx, time.Now().UTC(), 0)
	s.Require().NoError(err)
	s.Require().Equal(1, removed)

	_, err = s.r.Idempotency.Get(s.ctx, "stale")
	s.Require().NoError(err)
}
