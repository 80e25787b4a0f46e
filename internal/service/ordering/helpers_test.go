package ordering_test

import (
	"context"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

var fixedNow = time.Date(2024, 12, 20, 11, 53, 58, 0, time.UTC)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

func int64Ptr(v int64) *int64 { return &v }

// countingArticles считает обращения к репозиторию артикулов.
type countingArticles struct {
	domain.ArticleRepository
	calls int
}

func (c *countingArticles) List(ctx context.Context) ([]domain.Article, error) {
	c.calls++
	return c.ArticleRepository.List(ctx)
}

func (c *countingArticles) Get(ctx context.Context, id int64) (domain.Article, error) {
	c.calls++
	return c.ArticleRepository.Get(ctx, id)
}

func (c *countingArticles) Create(ctx context.Context, a domain.Article) (domain.Article, error) {
	c.calls++
	return c.ArticleRepository.Create(ctx, a)
}

func (c *countingArticles) Update(ctx context.Context, a domain.Article) error {
	c.calls++
	return c.ArticleRepository.Update(ctx, a)
}

func (c *countingArticles) Delete(ctx context.Context, id int64) error {
	c.calls++
	return c.ArticleRepository.Delete(ctx, id)
}

// spyOrders записывает вызовы изменяющих методов репозитория заказов.
type spyOrders struct {
	domain.OrderRepository
	updates    int
	lastChange domain.LineChanges
	deletedIDs []int64
	creates    int
}

func (s *spyOrders) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	s.creates++
	return s.OrderRepository.Create(ctx, o)
}

func (s *spyOrders) Update(ctx context.Context, o domain.Order, changes domain.LineChanges) error {
	s.updates++
	s.lastChange = changes
	return s.OrderRepository.Update(ctx, o, changes)
}

func (s *spyOrders) Delete(ctx context.Context, id int64) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.OrderRepository.Delete(ctx, id)
}

// failingOutbox отклоняет любые события.
type failingOutbox struct {
	domain.OutboxRepository
	attempts int
}

func (f *failingOutbox) Enqueue(context.Context, domain.OutboxMessage) (domain.OutboxMessage, error) {
	f.attempts++
	return domain.OutboxMessage{}, io.ErrUnexpectedEOF
}
