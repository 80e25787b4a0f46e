package dto

import (
	"github.com/samber/lo"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// LineIdentity определяет, переносится ли идентификатор позиции из DTO в сущность.
type LineIdentity bool

const (
	// KeepLineID переносит orderLineId: нужно, чтобы сопоставить входящие позиции с существующими.
	KeepLineID LineIdentity = true
	// DropLineID оставляет ID пустым, его назначит хранилище.
	DropLineID LineIdentity = false
)

// FromArticle копирует поля артикула в DTO.
func FromArticle(a domain.Article) ArticleDto {
	return ArticleDto{
		ArticleID: a.ID,
		Name:      a.Name,
		Price:     Price(a.PriceMinor),
	}
}

// ToArticle строит новую сущность из DTO без ID.
func ToArticle(d ArticleDto) domain.Article {
	return domain.Article{
		Name:       d.Name,
		PriceMinor: d.Price.Minor(),
	}
}

// ApplyArticle перезаписывает изменяемые поля артикула.
func ApplyArticle(dst *domain.Article, src ArticleDto) {
	dst.Name = src.Name
	dst.PriceMinor = src.Price.Minor()
}

// FromOrderLine копирует поля позиции в DTO; отсутствующие ссылки становятся 0.
func FromOrderLine(l domain.OrderLine) OrderLineDto {
	return OrderLineDto{
		OrderLineID: l.ID,
		OrderID:     idFromRef(l.OrderID),
		ArticleID:   idFromRef(l.ArticleID),
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		Price:       Price(l.PriceMinor),
	}
}

// ToOrderLine строит сущность позиции из DTO.
func ToOrderLine(d OrderLineDto, identity LineIdentity) domain.OrderLine {
	line := domain.OrderLine{
		OrderID:     refFromID(d.OrderID),
		ArticleID:   refFromID(d.ArticleID),
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		PriceMinor:  d.Price.Minor(),
	}
	if identity == KeepLineID {
		line.ID = d.OrderLineID
	}
	return line
}

// ApplyOrderLine перезаписывает все поля позиции, кроме её ID.
func ApplyOrderLine(dst *domain.OrderLine, src OrderLineDto) {
	dst.OrderID = refFromID(src.OrderID)
	dst.ArticleID = refFromID(src.ArticleID)
	dst.ProductName = src.ProductName
	dst.Quantity = src.Quantity
	dst.PriceMinor = src.Price.Minor()
}

// FromOrder копирует заказ вместе с позициями. Позиции всегда сериализуются массивом.
func FromOrder(o domain.Order) OrderDto {
	return OrderDto{
		OrderID:      o.ID,
		OrderDate:    NewDate(o.OrderDate),
		CustomerName: o.CustomerName,
		OrderNumber:  o.OrderNumber,
		OrderLines:   FromOrderLines(o.Lines),
	}
}

// FromOrders преобразует список заказов; результат никогда не nil.
func FromOrders(orders []domain.Order) []OrderDto {
	return lo.Map(orders, func(o domain.Order, _ int) OrderDto { return FromOrder(o) })
}

// FromOrderLines преобразует список позиций; результат никогда не nil.
func FromOrderLines(lines []domain.OrderLine) []OrderLineDto {
	return lo.Map(lines, func(l domain.OrderLine, _ int) OrderLineDto { return FromOrderLine(l) })
}

// FromArticles преобразует список артикулов; результат никогда не nil.
func FromArticles(articles []domain.Article) []ArticleDto {
	return lo.Map(articles, func(a domain.Article, _ int) ArticleDto { return FromArticle(a) })
}

// ToOrder строит новый заказ из DTO. Номер заказа и все ID назначаются позже.
func ToOrder(d OrderDto) domain.Order {
	return domain.Order{
		CustomerName: d.CustomerName,
		OrderDate:    domain.DateOnly(d.OrderDate.Time),
		Lines:        ToOrderLines(d.OrderLines, DropLineID),
	}
}

// ToOrderLines преобразует входящие позиции с заданным правилом для ID.
func ToOrderLines(lines []OrderLineDto, identity LineIdentity) []domain.OrderLine {
	return lo.Map(lines, func(l OrderLineDto, _ int) domain.OrderLine { return ToOrderLine(l, identity) })
}

func refFromID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func idFromRef(ref *int64) int64 {
	if ref == nil {
		return 0
	}
	return *ref
}
