// Package sqlstore содержит SQL-репозитории, общие для PostgreSQL и SQLite.
// Запросы строятся через squirrel; диалект задаёт плейсхолдеры, кодирование
// времени и распознавание ошибок ограничений.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

const opTimeout = 5 * time.Second

// Dialect описывает различия драйверов.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	// IsUniqueViolation распознаёт нарушение PRIMARY KEY/UNIQUE.
	IsUniqueViolation func(error) bool
	// IsForeignKeyViolation распознаёт нарушение внешнего ключа.
	IsForeignKeyViolation func(error) bool
	// EncodeTime приводит время к значению, которое драйвер умеет сохранять.
	// nil означает "передать time.Time как есть".
	EncodeTime func(time.Time) any
}

// querier: общее подмножество *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB связывает подключение с диалектом.
type DB struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// New создаёт обёртку над открытым подключением.
func New(db *sql.DB, dialect Dialect) *DB {
	placeholder := dialect.Placeholder
	if placeholder == nil {
		placeholder = sq.Question
	}
	return &DB{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// withTx выполняет fn в транзакции; любая ошибка откатывает всё.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (d *DB) exec(ctx context.Context, q querier, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.ExecContext(ctx, query, args...)
}

func (d *DB) query(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.QueryContext(ctx, query, args...)
}

func (d *DB) queryRow(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

// insertReturningID выполняет INSERT ... RETURNING id.
func (d *DB) insertReturningID(ctx context.Context, q querier, b sq.InsertBuilder) (int64, error) {
	row, err := d.queryRow(ctx, q, b.Suffix("RETURNING id"))
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// refErr переводит нарушение внешнего ключа в ErrUnknownReference, остальное оборачивает.
func (d *DB) refErr(err error, action string) error {
	if d.dialect.IsForeignKeyViolation != nil && d.dialect.IsForeignKeyViolation(err) {
		return domain.ErrUnknownReference
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (d *DB) isUniqueViolation(err error) bool {
	return d.dialect.IsUniqueViolation != nil && d.dialect.IsUniqueViolation(err)
}

func (d *DB) timeArg(t time.Time) any {
	if d.dialect.EncodeTime == nil {
		return t
	}
	return d.dialect.EncodeTime(t)
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
