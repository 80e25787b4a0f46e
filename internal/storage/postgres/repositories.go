package postgres

import (
	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/storage/sqlstore"
)

// NewArticleRepository создаёт PostgreSQL-реализацию ArticleRepository.
func NewArticleRepository(store *Store) domain.ArticleRepository {
	return sqlstore.NewArticleRepository(store.sql)
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return sqlstore.NewOrderRepository(store.sql)
}

// NewOrderLineRepository создаёт PostgreSQL-реализацию OrderLineRepository.
func NewOrderLineRepository(store *Store) domain.OrderLineRepository {
	return sqlstore.NewOrderLineRepository(store.sql)
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return sqlstore.NewOutboxRepository(store.sql)
}

// NewIdempotencyRepository создаёт PostgreSQL-реализацию IdempotencyRepository.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return sqlstore.NewIdempotencyRepository(store.sql)
}
