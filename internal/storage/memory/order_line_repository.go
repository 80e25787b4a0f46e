package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

type orderLineRepositoryInMemory struct {
	store *Store
}

// NewOrderLineRepository возвращает in-memory репозиторий позиций поверх store.
func NewOrderLineRepository(store *Store) domain.OrderLineRepository {
	return &orderLineRepositoryInMemory{store: store}
}

func (r *orderLineRepositoryInMemory) List(_ context.Context) ([]domain.OrderLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.OrderLine, 0, len(r.store.lines))
	for _, line := range r.store.lines {
		result = append(result, cloneLine(line))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *orderLineRepositoryInMemory) Get(_ context.Context, id int64) (domain.OrderLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	line, ok := r.store.lines[id]
	if !ok {
		return domain.OrderLine{}, domain.ErrOrderLineNotFound
	}
	return cloneLine(line), nil
}

func (r *orderLineRepositoryInMemory) Create(_ context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkRefsLocked(line); err != nil {
		return domain.OrderLine{}, err
	}
	return r.store.insertLineLocked(line), nil
}

func (r *orderLineRepositoryInMemory) Update(_ context.Context, line domain.OrderLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.lines[line.ID]; !ok {
		return domain.ErrOrderLineNotFound
	}
	if err := r.store.checkRefsLocked(line); err != nil {
		return err
	}
	r.store.lines[line.ID] = cloneLine(line)
	return nil
}

func (r *orderLineRepositoryInMemory) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.lines[id]; !ok {
		return domain.ErrOrderLineNotFound
	}
	delete(r.store.lines, id)
	return nil
}

var _ domain.OrderLineRepository = (*orderLineRepositoryInMemory)(nil)
