package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

const entityOrder = "order"

// OrderService: заказы вместе с позициями и сверка позиций при обновлении.
type OrderService struct {
	repo domain.OrderRepository
	deps
}

// NewOrderService конструирует сервис заказов.
func NewOrderService(repo domain.OrderRepository, opts ...Option) *OrderService {
	return &OrderService{repo: repo, deps: newDeps("order-service", opts)}
}

// ListOrders возвращает все заказы с позициями.
func (s *OrderService) ListOrders(ctx context.Context) (_ []dto.OrderDto, err error) {
	defer func(started time.Time) { s.observe(entityOrder, "list", started, err) }(time.Now())

	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromOrders(orders), nil
}

// GetOrder возвращает None, если заказа нет.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (_ mo.Option[dto.OrderDto], err error) {
	defer func(started time.Time) { s.observe(entityOrder, "get", started, err) }(time.Now())

	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return mo.None[dto.OrderDto](), nil
	}
	if err != nil {
		return mo.None[dto.OrderDto](), err
	}
	return mo.Some(dto.FromOrder(order)), nil
}

// CreateOrder сохраняет заказ с позициями. Номер заказа формируется из текущего
// времени, пустая дата заменяется сегодняшней.
func (s *OrderService) CreateOrder(ctx context.Context, in *dto.OrderDto) (_ dto.OrderDto, err error) {
	defer func(started time.Time) { s.observe(entityOrder, "create", started, err) }(time.Now())

	if in == nil {
		return dto.OrderDto{}, domain.ErrInvalidArgument
	}

	now := s.now()
	order := dto.ToOrder(*in)
	order.OrderNumber = domain.NewOrderNumber(now)
	if order.OrderDate.IsZero() {
		order.OrderDate = domain.DateOnly(now)
	}
	if err := order.Validate(); err != nil {
		return dto.OrderDto{}, err
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return dto.OrderDto{}, err
	}

	s.emit(ctx, domain.EventOrderCreated, created)
	s.logger.WithFields(log.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"lines":        len(created.Lines),
	}).Info("order created")
	return dto.FromOrder(created), nil
}

// UpdateOrder перезаписывает имя клиента и дату заказа (дата обязательна) и приводит позиции
// к входящему набору: отсутствующие удаляются, совпавшие по ID обновляются
// без смены ID, остальные добавляются как новые. Номер заказа не меняется.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, in *dto.OrderDto) (err error) {
	defer func(started time.Time) { s.observe(entityOrder, "update", started, err) }(time.Now())

	if in == nil {
		return domain.ErrInvalidArgument
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	order.CustomerName = in.CustomerName
	order.OrderDate = domain.DateOnly(in.OrderDate.Time)
	changes := domain.ReconcileLines(&order, dto.ToOrderLines(in.OrderLines, dto.KeepLineID))

	if order.OrderDate.IsZero() {
		return domain.NewValidationError([]error{domain.ErrOrderDateRequired})
	}
	if err := order.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, order, changes); err != nil {
		return err
	}

	s.metrics.RecordLineChanges(changes)
	s.emit(ctx, domain.EventOrderUpdated, order)
	s.logger.WithFields(log.Fields{
		"order_id":      order.ID,
		"lines_removed": len(changes.Removed),
		"lines_updated": len(changes.Updated),
		"lines_added":   len(changes.Added),
	}).Info("order updated")
	return nil
}

// DeleteOrder удаляет заказ вместе с позициями. Если заказа нет, возвращается false без ошибки.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (_ bool, err error) {
	defer func(started time.Time) { s.observe(entityOrder, "delete", started, err) }(time.Now())

	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return false, err
	}

	s.emit(ctx, domain.EventOrderDeleted, order)
	s.logger.WithField("order_id", order.ID).Info("order deleted")
	return true, nil
}
