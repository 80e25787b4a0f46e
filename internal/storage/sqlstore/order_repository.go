package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

var (
	orderColumns = []string{"id", "order_number", "customer_name", "order_date"}
	lineColumns  = []string{"id", "order_id", "article_id", "product_name", "quantity", "price_minor"}
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository создаёт SQL-реализацию OrderRepository.
func NewOrderRepository(db *DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.query(ctx, r.db.db, r.db.sb.Select(orderColumns...).From("orders").OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	lines, err := r.db.selectLines(ctx, r.db.db, sq.NotEq{"order_id": nil})
	if err != nil {
		return nil, err
	}
	byOrder := lo.GroupBy(lines, func(l domain.OrderLine) int64 { return *l.OrderID })

	for i := range orders {
		if grouped, ok := byOrder[orders[i].ID]; ok {
			orders[i].Lines = grouped
		}
	}
	return orders, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row, err := r.db.queryRow(ctx, r.db.db, r.db.sb.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Order{}, err
	}

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	order.Lines, err = r.db.selectLines(ctx, r.db.db, sq.Eq{"order_id": id})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := r.db.insertReturningID(ctx, tx, r.db.sb.Insert("orders").
			SetMap(map[string]any{
				"order_number":  order.OrderNumber,
				"customer_name": order.CustomerName,
				"order_date":    r.db.timeArg(order.OrderDate),
			}))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.ID = id

		for i := range order.Lines {
			order.Lines[i].OrderID = &order.ID
			lineID, err := r.db.insertLine(ctx, tx, order.Lines[i])
			if err != nil {
				return err
			}
			order.Lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if order.Lines == nil {
		order.Lines = []domain.OrderLine{}
	}
	return order, nil
}

// Update применяет изменения заказа целиком или не применяет вовсе.
func (r *orderRepository) Update(ctx context.Context, order domain.Order, changes domain.LineChanges) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := r.db.exec(ctx, tx, r.db.sb.Update("orders").
			SetMap(map[string]any{
				"customer_name": order.CustomerName,
				"order_date":    r.db.timeArg(order.OrderDate),
			}).
			Where(sq.Eq{"id": order.ID}))
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrOrderNotFound
		}

		for _, line := range changes.Removed {
			if _, err := r.db.exec(ctx, tx, r.db.sb.Delete("order_lines").
				Where(sq.Eq{"id": line.ID, "order_id": order.ID})); err != nil {
				return fmt.Errorf("delete order line %d: %w", line.ID, err)
			}
		}

		for _, line := range changes.Updated {
			line.OrderID = &order.ID
			res, err := r.db.exec(ctx, tx, r.db.sb.Update("order_lines").
				SetMap(lineValues(line)).
				Where(sq.Eq{"id": line.ID, "order_id": order.ID}))
			if err != nil {
				return r.db.refErr(err, fmt.Sprintf("update order line %d", line.ID))
			}
			n, err := affected(res)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrOrderLineNotFound
			}
		}

		for _, line := range changes.Added {
			line.OrderID = &order.ID
			if _, err := r.db.insertLine(ctx, tx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete удаляет заказ; позиции удаляются внешним ключом ON DELETE CASCADE.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Delete("orders").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, scanTime{dst: &o.OrderDate}); err != nil {
		return domain.Order{}, err
	}
	o.Lines = []domain.OrderLine{}
	return o, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func scanLine(row rowScanner) (domain.OrderLine, error) {
	var (
		l         domain.OrderLine
		orderID   sql.NullInt64
		articleID sql.NullInt64
	)
	if err := row.Scan(&l.ID, &orderID, &articleID, &l.ProductName, &l.Quantity, &l.PriceMinor); err != nil {
		return domain.OrderLine{}, err
	}
	l.OrderID = refFromNull(orderID)
	l.ArticleID = refFromNull(articleID)
	return l, nil
}

// selectLines возвращает позиции по условию, упорядоченные по ID.
func (d *DB) selectLines(ctx context.Context, q querier, where sq.Sqlizer) ([]domain.OrderLine, error) {
	b := d.sb.Select(lineColumns...).From("order_lines").OrderBy("id")
	if where != nil {
		b = b.Where(where)
	}

	rows, err := d.query(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order line rows: %w", err)
	}
	return lines, nil
}

func (d *DB) insertLine(ctx context.Context, q querier, line domain.OrderLine) (int64, error) {
	id, err := d.insertReturningID(ctx, q, d.sb.Insert("order_lines").SetMap(lineValues(line)))
	if err != nil {
		return 0, d.refErr(err, "insert order line")
	}
	return id, nil
}

func lineValues(line domain.OrderLine) map[string]any {
	return map[string]any{
		"order_id":     line.OrderID,
		"article_id":   line.ArticleID,
		"product_name": line.ProductName,
		"quantity":     line.Quantity,
		"price_minor":  line.PriceMinor,
	}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
