// Package sqlite подключает SQL-репозитории к встраиваемой SQLite (modernc.org/sqlite, без CGO).
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/storage/sqlstore"
)

const (
	driverName         = "sqlite"
	migrationsGlob     = "sql/migrations/*.sql"
	defaultPingTimeout = 5 * time.Second
	migrationTableDDL  = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at INTEGER NOT NULL
)`
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

var errNotInitialized = errors.New("sqlite store is not initialized")

// Dialect: правила SQLite для sqlstore. Время хранится в INTEGER как unix-наносекунды.
var Dialect = sqlstore.Dialect{
	Name:        "sqlite",
	Placeholder: sq.Question,
	IsUniqueViolation: func(err error) bool {
		return isConstraint(err, "UNIQUE constraint failed",
			sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
	},
	IsForeignKeyViolation: func(err error) bool {
		return isConstraint(err, "FOREIGN KEY constraint failed", sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
	},
	EncodeTime: sqlstore.EncodeUnixNano,
}

// isConstraint сверяет расширенный код ошибки; текст нужен, когда драйвер отдал только базовый SQLITE_CONSTRAINT.
func isConstraint(err error, text string, codes ...int) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, code := range codes {
		if sqliteErr.Code() == code {
			return true
		}
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), text)
}

// Store оборачивает подключение к файлу SQLite.
type Store struct {
	db  *sql.DB
	sql *sqlstore.DB
}

// Open открывает базу по пути path (":memory:" для временной) и применяет схему.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Одно подключение: единственный писатель, и ":memory:" не распадается на разные базы.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, sql: sqlstore.New(db, Dialect)}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate применяет недостающие up-миграции.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}

	migrations, err := sqlstore.LoadMigrations(migrationsFS, migrationsGlob)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.Version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		if err := s.applyUp(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyUp(ctx context.Context, m sqlstore.Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (up %d): %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute up migration %d_%s: %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, time.Now().UTC().UnixNano(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record up migration %d_%s: %w", m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit up migration %d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

// DB возвращает raw SQL DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewArticleRepository создаёт SQLite-реализацию ArticleRepository.
func NewArticleRepository(store *Store) domain.ArticleRepository {
	return sqlstore.NewArticleRepository(store.sql)
}

// NewOrderRepository создаёт SQLite-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return sqlstore.NewOrderRepository(store.sql)
}

// NewOrderLineRepository создаёт SQLite-реализацию OrderLineRepository.
func NewOrderLineRepository(store *Store) domain.OrderLineRepository {
	return sqlstore.NewOrderLineRepository(store.sql)
}

// NewOutboxRepository создаёт SQLite-реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return sqlstore.NewOutboxRepository(store.sql)
}

// NewIdempotencyRepository создаёт SQLite-реализацию IdempotencyRepository.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return sqlstore.NewIdempotencyRepository(store.sql)
}
