package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrInvalidArgument: обязательный вход отсутствует или не прошёл валидацию (HTTP 400).
	ErrInvalidArgument = errors.New("invalid argument")

	// Сообщения not-found отдаются клиенту без изменений, поэтому начинаются с заглавной буквы.

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("Order not found") //nolint:staticcheck // фиксированное сообщение API
	// ErrArticleNotFound возвращается, если артикул не найден в репозитории.
	ErrArticleNotFound = errors.New("Article not found") //nolint:staticcheck // фиксированное сообщение API
	// ErrOrderLineNotFound возвращается, если позиция заказа не найдена в репозитории.
	ErrOrderLineNotFound = errors.New("OrderLine not found") //nolint:staticcheck // фиксированное сообщение API

	// ErrOrderLineIDMismatch: идентификатор позиции в пути и в теле запроса различаются.
	ErrOrderLineIDMismatch = fmt.Errorf("%w: OrderLineId mismatch between path and data", ErrInvalidArgument)
	// ErrUnknownReference: позиция ссылается на несуществующий заказ или артикул.
	ErrUnknownReference = fmt.Errorf("%w: referenced order or article does not exist", ErrInvalidArgument)

	// Ошибки валидации полей.
	ErrArticleNameRequired  = errors.New("article name is required")
	ErrArticleNameTooLong   = fmt.Errorf("article name must be at most %d characters", MaxNameLength)
	ErrArticlePriceNegative = errors.New("article price must be non-negative")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrCustomerNameTooLong  = fmt.Errorf("customer name must be at most %d characters", MaxNameLength)
	ErrOrderDateRequired    = errors.New("order date is required")
	ErrLinePriceNegative    = errors.New("order line price must be non-negative")

	// Ошибки idempotency-ключей.
	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key reused with different request")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")

	// ErrOutboxPublish: ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ValidationError собирает все нарушенные инварианты сущности.
// errors.Is(err, ErrInvalidArgument) для неё всегда истинно.
type ValidationError struct {
	Problems []error
}

// NewValidationError возвращает nil, если замечаний нет.
func NewValidationError(problems []error) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return strings.Join(lo.Map(e.Problems, func(p error, _ int) string { return p.Error() }), "; ")
}

// Is относит ошибку валидации к классу ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Unwrap отдаёт отдельные нарушения для errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// IsNotFound проверяет, относится ли ошибка к отсутствию сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrArticleNotFound) ||
		errors.Is(err, ErrOrderLineNotFound)
}

// IsInvalidArgument проверяет, относится ли ошибка к некорректному входу.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsIdempotencyConflict проверяет, что ключ уже занят.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) || errors.Is(err, ErrIdempotencyHashMismatch)
}
