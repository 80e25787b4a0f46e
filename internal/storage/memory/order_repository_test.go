package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/storage/memory"
)

func int64Ptr(v int64) *int64 { return &v }

type repos struct {
	articles domain.ArticleRepository
	orders   domain.OrderRepository
	lines    domain.OrderLineRepository
}

func newRepos() repos {
	store := memory.NewStore()
	return repos{
		articles: memory.NewArticleRepository(store),
		orders:   memory.NewOrderRepository(store),
		lines:    memory.NewOrderLineRepository(store),
	}
}

func newOrder(articleID int64) domain.Order {
	return domain.Order{
		OrderNumber:  "ORD-20241220115358",
		CustomerName: "John Doe",
		OrderDate:    time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		Lines: []domain.OrderLine{
			{ArticleID: int64Ptr(articleID), ProductName: "Product A", Quantity: 2, PriceMinor: 10000},
			{ProductName: "Product B", Quantity: 1, PriceMinor: 15000},
		},
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	article, err := r.articles.Create(ctx, domain.Article{Name: "Product A", PriceMinor: 10000})
	require.NoError(t, err)

	created, err := r.orders.Create(ctx, newOrder(article.ID))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Lines, 2)
	for _, line := range created.Lines {
		require.NotZero(t, line.ID)
		require.Equal(t, created.ID, *line.OrderID)
	}

	stored, err := r.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, stored)

	_, err = r.orders.Get(ctx, created.ID+1)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_CreateRejectsUnknownArticle(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	_, err := r.orders.Create(ctx, newOrder(404))
	require.ErrorIs(t, err, domain.ErrUnknownReference)

	orders, err := r.orders.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders, "nothing must be written on failure")
}

func TestOrderRepository_UpdateAppliesChanges(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	article, err := r.articles.Create(ctx, domain.Article{Name: "Product A", PriceMinor: 10000})
	require.NoError(t, err)
	order, err := r.orders.Create(ctx, newOrder(article.ID))
	require.NoError(t, err)
	keptID := order.Lines[0].ID
	removedID := order.Lines[1].ID

	order.CustomerName = "Jane Smith"
	order.OrderNumber = "ORD-forged"
	changes := domain.ReconcileLines(&order, []domain.OrderLine{
		{ID: keptID, ArticleID: int64Ptr(article.ID), ProductName: "Product A", Quantity: 9, PriceMinor: 10000},
		{ProductName: "Product C", Quantity: 3, PriceMinor: 500},
	})
	require.NoError(t, r.orders.Update(ctx, order, changes))

	stored, err := r.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Smith", stored.CustomerName)
	require.Equal(t, "ORD-20241220115358", stored.OrderNumber, "order number is immutable")
	require.Len(t, stored.Lines, 2)
	require.Equal(t, keptID, stored.Lines[0].ID)
	require.Equal(t, int32(9), stored.Lines[0].Quantity)
	require.Greater(t, stored.Lines[1].ID, removedID)
	require.Equal(t, "Product C", stored.Lines[1].ProductName)

	_, err = r.lines.Get(ctx, removedID)
	require.ErrorIs(t, err, domain.ErrOrderLineNotFound)
}

func TestOrderRepository_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	order, err := r.orders.Create(ctx, domain.Order{CustomerName: "John Doe", Lines: []domain.OrderLine{{ProductName: "A", Quantity: 1}}})
	require.NoError(t, err)

	order.CustomerName = "Changed"
	changes := domain.ReconcileLines(&order, []domain.OrderLine{{ArticleID: int64Ptr(77), ProductName: "B", Quantity: 1}})
	err = r.orders.Update(ctx, order, changes)
	require.ErrorIs(t, err, domain.ErrUnknownReference)

	stored, err := r.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "John Doe", stored.CustomerName)
	require.Len(t, stored.Lines, 1)
	require.Equal(t, "A", stored.Lines[0].ProductName)
}

func TestOrderRepository_UpdateMissingOrder(t *testing.T) {
	r := newRepos()

	err := r.orders.Update(context.Background(), domain.Order{ID: 5}, domain.LineChanges{})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_DeleteCascadesLines(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	order, err := r.orders.Create(ctx, domain.Order{CustomerName: "John Doe", Lines: []domain.OrderLine{{ProductName: "A", Quantity: 1}}})
	require.NoError(t, err)
	standalone, err := r.lines.Create(ctx, domain.OrderLine{ProductName: "loose", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, r.orders.Delete(ctx, order.ID))

	lines, err := r.lines.List(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, standalone.ID, lines[0].ID)

	if err := r.orders.Delete(ctx, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestArticleRepository_DeleteKeepsLineSnapshots(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	article, err := r.articles.Create(ctx, domain.Article{Name: "Product A", PriceMinor: 10000})
	require.NoError(t, err)
	line, err := r.lines.Create(ctx, domain.OrderLine{ArticleID: int64Ptr(article.ID), ProductName: "Product A", Quantity: 1, PriceMinor: 10000})
	require.NoError(t, err)

	require.NoError(t, r.articles.Delete(ctx, article.ID))

	stored, err := r.lines.Get(ctx, line.ID)
	require.NoError(t, err)
	require.Nil(t, stored.ArticleID)
	require.Equal(t, "Product A", stored.ProductName)
	require.Equal(t, int64(10000), stored.PriceMinor)

	require.ErrorIs(t, r.articles.Delete(ctx, article.ID), domain.ErrArticleNotFound)
}

func TestArticleRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	empty, err := r.articles.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	created, err := r.articles.Create(ctx, domain.Article{Name: "Product A", PriceMinor: 100})
	require.NoError(t, err)

	created.PriceMinor = 250
	require.NoError(t, r.articles.Update(ctx, created))

	stored, err := r.articles.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(250), stored.PriceMinor)

	require.ErrorIs(t, r.articles.Update(ctx, domain.Article{ID: 999}), domain.ErrArticleNotFound)
}

func TestOrderLineRepository_ReferencesAreChecked(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	_, err := r.lines.Create(ctx, domain.OrderLine{OrderID: int64Ptr(1), ProductName: "A"})
	require.ErrorIs(t, err, domain.ErrUnknownReference)

	line, err := r.lines.Create(ctx, domain.OrderLine{ProductName: "A", Quantity: 1})
	require.NoError(t, err)

	line.ArticleID = int64Ptr(8)
	require.ErrorIs(t, r.lines.Update(ctx, line), domain.ErrUnknownReference)
	require.ErrorIs(t, r.lines.Update(ctx, domain.OrderLine{ID: 100}), domain.ErrOrderLineNotFound)
	require.ErrorIs(t, r.lines.Delete(ctx, 100), domain.ErrOrderLineNotFound)
}
