// Package seed заполняет пустое хранилище демонстрационным каталогом и двумя заказами.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

type article struct {
	name  string
	price int64
}

type order struct {
	number   string
	customer string
	daysAgo  int
	article  int
	quantity int32
}

var (
	articles = []article{
		{name: "Product A", price: 10000},
		{name: "Product B", price: 15000},
	}
	orders = []order{
		{number: "ORD001", customer: "John Doe", daysAgo: 0, article: 0, quantity: 2},
		{number: "ORD002", customer: "Jane Smith", daysAgo: 1, article: 1, quantity: 1},
	}
)

// Apply создаёт начальные данные, если в хранилище нет ни артикулов, ни заказов.
// Возвращает false, когда данные уже есть и ничего не записано.
func Apply(ctx context.Context, articleRepo domain.ArticleRepository, orderRepo domain.OrderRepository, now time.Time) (bool, error) {
	existingArticles, err := articleRepo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list articles: %w", err)
	}
	existingOrders, err := orderRepo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list orders: %w", err)
	}
	if len(existingArticles) > 0 || len(existingOrders) > 0 {
		return false, nil
	}

	created := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		stored, err := articleRepo.Create(ctx, domain.Article{Name: a.name, PriceMinor: a.price})
		if err != nil {
			return false, fmt.Errorf("seed article %q: %w", a.name, err)
		}
		created = append(created, stored)
	}

	today := domain.DateOnly(now)
	for _, o := range orders {
		ref := created[o.article]
		articleID := ref.ID
		if _, err := orderRepo.Create(ctx, domain.Order{
			OrderNumber:  o.number,
			CustomerName: o.customer,
			OrderDate:    today.AddDate(0, 0, -o.daysAgo),
			Lines: []domain.OrderLine{{
				ArticleID:   &articleID,
				ProductName: ref.Name,
				Quantity:    o.quantity,
				PriceMinor:  ref.PriceMinor,
			}},
		}); err != nil {
			return false, fmt.Errorf("seed order %s: %w", o.number, err)
		}
	}
	return true, nil
}
