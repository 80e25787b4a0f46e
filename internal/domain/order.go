package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// OrderNumberLayout: формат временной части номера заказа (yyyyMMddHHmmss).
const OrderNumberLayout = "20060102150405"

// OrderLine: позиция заказа. Название и цена фиксируются на момент создания
// и не пересчитываются при изменении артикула.
type OrderLine struct {
	// ID назначается хранилищем и больше не меняется.
	ID          int64
	OrderID     *int64
	ArticleID   *int64
	ProductName string
	Quantity    int32
	PriceMinor  int64
}

// Order агрегирует заказ и его позиции.
type Order struct {
	ID int64
	// OrderNumber назначается при создании и не меняется при обновлении.
	OrderNumber  string
	CustomerName string
	// OrderDate хранится как дата без времени (UTC).
	OrderDate time.Time
	Lines     []OrderLine
}

// NewOrderNumber формирует номер заказа из момента создания.
func NewOrderNumber(createdAt time.Time) string {
	return "ORD-" + createdAt.Format(OrderNumberLayout)
}

// DateOnly отбрасывает время суток, оставляя календарную дату в UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate проверяет инварианты заказа и его позиций.
func (o *Order) Validate() error {
	var errs []error

	switch {
	case strings.TrimSpace(o.CustomerName) == "":
		errs = append(errs, ErrCustomerNameRequired)
	case utf8.RuneCountInString(o.CustomerName) > MaxNameLength:
		errs = append(errs, ErrCustomerNameTooLong)
	}
	for _, line := range o.Lines {
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceNegative)
			break
		}
	}

	return NewValidationError(errs)
}

// Validate проверяет инварианты отдельной позиции.
func (l *OrderLine) Validate() error {
	if l.PriceMinor < 0 {
		return NewValidationError([]error{ErrLinePriceNegative})
	}
	return nil
}
