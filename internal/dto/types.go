// Package dto содержит транспортные объекты API и явные функции копирования
// полей между ними и доменными сущностями.
package dto

// ArticleDto: представление артикула на проводе.
type ArticleDto struct {
	ArticleID int64  `json:"articleId"`
	Name      string `json:"name"`
	Price     Price  `json:"price"`
}

// OrderLineDto: представление позиции заказа на проводе.
// orderId и articleId равные 0 означают отсутствие ссылки.
type OrderLineDto struct {
	OrderLineID int64  `json:"orderLineId"`
	OrderID     int64  `json:"orderId"`
	ArticleID   int64  `json:"articleId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	Price       Price  `json:"price"`
}

// OrderDto: представление заказа на проводе.
type OrderDto struct {
	OrderID      int64          `json:"orderId"`
	OrderDate    Date           `json:"orderDate"`
	CustomerName string         `json:"customerName"`
	OrderNumber  string         `json:"orderNumber"`
	OrderLines   []OrderLineDto `json:"orderLines"`
}
