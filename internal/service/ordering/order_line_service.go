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

const entityOrderLine = "order_line"

// OrderLineService: CRUD отдельных позиций заказов.
type OrderLineService struct {
	repo domain.OrderLineRepository
	deps
}

// NewOrderLineService конструирует сервис позиций.
func NewOrderLineService(repo domain.OrderLineRepository, opts ...Option) *OrderLineService {
	return &OrderLineService{repo: repo, deps: newDeps("order-line-service", opts)}
}

// ListOrderLines возвращает все позиции всех заказов.
func (s *OrderLineService) ListOrderLines(ctx context.Context) (_ []dto.OrderLineDto, err error) {
	defer func(started time.Time) { s.observe(entityOrderLine, "list", started, err) }(time.Now())

	lines, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromOrderLines(lines), nil
}

// GetOrderLine возвращает None, если позиции нет.
func (s *OrderLineService) GetOrderLine(ctx context.Context, id int64) (_ mo.Option[dto.OrderLineDto], err error) {
	defer func(started time.Time) { s.observe(entityOrderLine, "get", started, err) }(time.Now())

	line, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderLineNotFound) {
		return mo.None[dto.OrderLineDto](), nil
	}
	if err != nil {
		return mo.None[dto.OrderLineDto](), err
	}
	return mo.Some(dto.FromOrderLine(line)), nil
}

// CreateOrderLine сохраняет позицию; ID из входа игнорируется.
func (s *OrderLineService) CreateOrderLine(ctx context.Context, in *dto.OrderLineDto) (_ dto.OrderLineDto, err error) {
	defer func(started time.Time) { s.observe(entityOrderLine, "create", started, err) }(time.Now())

	if in == nil {
		return dto.OrderLineDto{}, domain.ErrInvalidArgument
	}

	line := dto.ToOrderLine(*in, dto.DropLineID)
	if err := line.Validate(); err != nil {
		return dto.OrderLineDto{}, err
	}

	created, err := s.repo.Create(ctx, line)
	if err != nil {
		return dto.OrderLineDto{}, err
	}

	s.logger.WithField("order_line_id", created.ID).Info("order line created")
	return dto.FromOrderLine(created), nil
}

// UpdateOrderLine перезаписывает поля позиции id. ID в теле должен совпадать с id.
func (s *OrderLineService) UpdateOrderLine(ctx context.Context, id int64, in *dto.OrderLineDto) (err error) {
	defer func(started time.Time) { s.observe(entityOrderLine, "update", started, err) }(time.Now())

	if in == nil {
		return domain.ErrInvalidArgument
	}
	if in.OrderLineID != id {
		return domain.ErrOrderLineIDMismatch
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	dto.ApplyOrderLine(&existing, *in)
	if err := existing.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{"order_line_id": id}).Info("order line updated")
	return nil
}

// DeleteOrderLine удаляет позицию или возвращает ErrOrderLineNotFound.
func (s *OrderLineService) DeleteOrderLine(ctx context.Context, id int64) (err error) {
	defer func(started time.Time) { s.observe(entityOrderLine, "delete", started, err) }(time.Now())

	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("order_line_id", id).Info("order line deleted")
	return nil
}
