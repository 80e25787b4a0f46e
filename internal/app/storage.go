package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/health"
	"github.com/vladislavdragonenkov/orderline/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderline/internal/storage/postgres"
	"github.com/vladislavdragonenkov/orderline/internal/storage/seed"
	"github.com/vladislavdragonenkov/orderline/internal/storage/sqlite"
)

// repositories: всё, что приложению нужно от хранилища.
type repositories struct {
	articles    domain.ArticleRepository
	orders      domain.OrderRepository
	orderLines  domain.OrderLineRepository
	outbox      domain.OutboxRepository
	idempotency domain.IdempotencyRepository

	// pinger nil у memory: проверять нечего.
	pinger  health.Pinger
	closeFn func() error
}

func (r *repositories) close(logger *log.Entry) {
	if r == nil || r.closeFn == nil {
		return
	}
	if err := r.closeFn(); err != nil {
		logger.WithError(err).Warn("close storage failed")
	}
}

func openStorage(ctx context.Context, cfg Config, logger *log.Entry) (*repositories, error) {
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil || !cfg.Seed {
		return repos, err
	}

	applied, err := seed.Apply(ctx, repos.articles, repos.orders, time.Now())
	if err != nil {
		repos.close(logger)
		return nil, fmt.Errorf("seed storage: %w", err)
	}
	logger.WithField("applied", applied).Info("seed data checked")
	return repos, nil
}

func openRepositories(ctx context.Context, cfg Config, logger *log.Entry) (*repositories, error) {
	entry := logger.WithField("storage", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		store := memory.NewStore()
		entry.Info("using in-memory storage")
		return &repositories{
			articles:    memory.NewArticleRepository(store),
			orders:      memory.NewOrderRepository(store),
			orderLines:  memory.NewOrderLineRepository(store),
			outbox:      memory.NewOutboxRepository(),
			idempotency: memory.NewIdempotencyRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is required for postgres storage")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			entry.Info("postgres schema is up to date")
		}
		return &repositories{
			articles:    postgres.NewArticleRepository(store),
			orders:      postgres.NewOrderRepository(store),
			orderLines:  postgres.NewOrderLineRepository(store),
			outbox:      postgres.NewOutboxRepository(store),
			idempotency: postgres.NewIdempotencyRepository(store),
			pinger:      store,
			closeFn:     store.Close,
		}, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		entry.WithField("path", cfg.SQLitePath).Info("using sqlite storage")
		return &repositories{
			articles:    sqlite.NewArticleRepository(store),
			orders:      sqlite.NewOrderRepository(store),
			orderLines:  sqlite.NewOrderLineRepository(store),
			outbox:      sqlite.NewOutboxRepository(store),
			idempotency: sqlite.NewIdempotencyRepository(store),
			pinger:      store,
			closeFn:     store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
