package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

func TestArticleRoundTrip(t *testing.T) {
	article := domain.Article{ID: 42, Name: "Product A", PriceMinor: 10050}

	back := dto.ToArticle(dto.FromArticle(article))

	require.Zero(t, back.ID, "generated id is not carried over")
	require.Equal(t, article.Name, back.Name)
	require.Equal(t, article.PriceMinor, back.PriceMinor)
}

func TestToOrderLine_Identity(t *testing.T) {
	in := dto.OrderLineDto{OrderLineID: 7, OrderID: 3, ArticleID: 0, ProductName: "Product B", Quantity: 2, Price: 150}

	kept := dto.ToOrderLine(in, dto.KeepLineID)
	require.Equal(t, int64(7), kept.ID)
	require.Equal(t, int64(3), *kept.OrderID)
	require.Nil(t, kept.ArticleID, "articleId 0 means no reference")

	dropped := dto.ToOrderLine(in, dto.DropLineID)
	require.Zero(t, dropped.ID)
	require.Equal(t, int32(2), dropped.Quantity)
	require.Equal(t, int64(150), dropped.PriceMinor)
}

func TestApplyOrderLine_KeepsID(t *testing.T) {
	line := domain.OrderLine{ID: 5, ProductName: "old", Quantity: 1}

	dto.ApplyOrderLine(&line, dto.OrderLineDto{OrderLineID: 99, ArticleID: 4, ProductName: "new", Quantity: 9, Price: 300})

	require.Equal(t, int64(5), line.ID)
	require.Equal(t, "new", line.ProductName)
	require.Equal(t, int32(9), line.Quantity)
	require.Equal(t, int64(4), *line.ArticleID)
	require.Equal(t, int64(300), line.PriceMinor)
}

func TestToOrder_DropsIdentity(t *testing.T) {
	in := dto.OrderDto{
		OrderID:      11,
		OrderNumber:  "ORD-forged",
		CustomerName: "John Doe",
		OrderDate:    dto.NewDate(time.Date(2024, 12, 20, 15, 4, 5, 0, time.UTC)),
		OrderLines: []dto.OrderLineDto{
			{OrderLineID: 1, ProductName: "Product A", Quantity: 1, Price: 100},
		},
	}

	order := dto.ToOrder(in)

	require.Zero(t, order.ID)
	require.Empty(t, order.OrderNumber)
	require.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), order.OrderDate)
	require.Len(t, order.Lines, 1)
	require.Zero(t, order.Lines[0].ID)
}

func TestFromOrder_EmptyLinesSerializeAsArray(t *testing.T) {
	raw, err := json.Marshal(dto.FromOrder(domain.Order{ID: 1, CustomerName: "Jane Smith"}))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"orderLines":[]`)
}

func TestFromLists_NeverNil(t *testing.T) {
	require.NotNil(t, dto.FromArticles(nil))
	require.NotNil(t, dto.FromOrders(nil))
	require.NotNil(t, dto.FromOrderLines(nil))
}

func TestOrderDto_WireShape(t *testing.T) {
	order := domain.Order{
		ID:           1,
		OrderNumber:  "ORD-20241220115358",
		CustomerName: "John Doe",
		OrderDate:    time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		Lines: []domain.OrderLine{
			{ID: 1, ProductName: "Product A", Quantity: 2, PriceMinor: 10000},
		},
	}

	raw, err := json.Marshal(dto.FromOrder(order))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"orderId": 1,
		"orderDate": "2024-12-20",
		"customerName": "John Doe",
		"orderNumber": "ORD-20241220115358",
		"orderLines": [
			{"orderLineId": 1, "orderId": 0, "articleId": 0, "productName": "Product A", "quantity": 2, "price": 100.00}
		]
	}`, string(raw))
}
