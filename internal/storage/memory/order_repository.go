package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

// orderRepositoryInMemory: простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

// List возвращает все заказы с позициями в порядке ID.
func (r *orderRepositoryInMemory) List(_ context.Context) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.store.orders))
	for _, row := range r.store.orders {
		result = append(result, r.store.orderLocked(row))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id int64) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.store.orderLocked(row), nil
}

// Create сохраняет заказ и его позиции атомарно: при битой ссылке ничего не записывается.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, line := range order.Lines {
		line.OrderID = nil
		if err := r.store.checkRefsLocked(line); err != nil {
			return domain.Order{}, err
		}
	}

	r.store.nextOrderID++
	row := orderRow{
		id:           r.store.nextOrderID,
		orderNumber:  order.OrderNumber,
		customerName: order.CustomerName,
		orderDate:    order.OrderDate,
	}
	r.store.orders[row.id] = row

	for _, line := range order.Lines {
		orderID := row.id
		line.OrderID = &orderID
		r.store.insertLineLocked(line)
	}

	return r.store.orderLocked(row), nil
}

// Update применяет скалярные изменения и changes как одну операцию.
func (r *orderRepositoryInMemory) Update(_ context.Context, order domain.Order, changes domain.LineChanges) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}

	// Сначала проверки, затем запись: частично применённых изменений не бывает.
	for _, line := range changes.Updated {
		current, exists := r.store.lines[line.ID]
		if !exists || current.OrderID == nil || *current.OrderID != order.ID {
			return domain.ErrOrderLineNotFound
		}
		if err := r.store.checkRefsLocked(domain.OrderLine{ArticleID: line.ArticleID}); err != nil {
			return err
		}
	}
	for _, line := range changes.Added {
		if err := r.store.checkRefsLocked(domain.OrderLine{ArticleID: line.ArticleID}); err != nil {
			return err
		}
	}

	row.customerName = order.CustomerName
	row.orderDate = order.OrderDate
	r.store.orders[order.ID] = row

	for _, line := range changes.Removed {
		current, exists := r.store.lines[line.ID]
		if exists && current.OrderID != nil && *current.OrderID == order.ID {
			delete(r.store.lines, line.ID)
		}
	}
	for _, line := range changes.Updated {
		orderID := order.ID
		line.OrderID = &orderID
		r.store.lines[line.ID] = cloneLine(line)
	}
	for _, line := range changes.Added {
		orderID := order.ID
		line.OrderID = &orderID
		r.store.insertLineLocked(line)
	}

	return nil
}

// Delete удаляет заказ и каскадно все его позиции.
func (r *orderRepositoryInMemory) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.store.orders, id)

	for lineID, line := range r.store.lines {
		if line.OrderID != nil && *line.OrderID == id {
			delete(r.store.lines, lineID)
		}
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
