package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

type orderLineRepository struct {
	db *DB
}

// NewOrderLineRepository создаёт SQL-реализацию OrderLineRepository.
func NewOrderLineRepository(db *DB) domain.OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) List(ctx context.Context) ([]domain.OrderLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.db.selectLines(ctx, r.db.db, nil)
}

func (r *orderLineRepository) Get(ctx context.Context, id int64) (domain.OrderLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row, err := r.db.queryRow(ctx, r.db.db, r.db.sb.Select(lineColumns...).From("order_lines").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.OrderLine{}, err
	}

	line, err := scanLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderLine{}, domain.ErrOrderLineNotFound
		}
		return domain.OrderLine{}, fmt.Errorf("select order line: %w", err)
	}
	return line, nil
}

func (r *orderLineRepository) Create(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id, err := r.db.insertLine(ctx, r.db.db, line)
	if err != nil {
		return domain.OrderLine{}, err
	}
	line.ID = id
	return line, nil
}

func (r *orderLineRepository) Update(ctx context.Context, line domain.OrderLine) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Update("order_lines").
		SetMap(lineValues(line)).
		Where(sq.Eq{"id": line.ID}))
	if err != nil {
		return r.db.refErr(err, "update order line")
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderLineNotFound
	}
	return nil
}

func (r *orderLineRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Delete("order_lines").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete order line: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderLineNotFound
	}
	return nil
}

var _ domain.OrderLineRepository = (*orderLineRepository)(nil)
