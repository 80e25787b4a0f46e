package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

type idempotencyRepository struct {
	db *DB
}

// NewIdempotencyRepository создаёт SQL-реализацию IdempotencyRepository.
func NewIdempotencyRepository(db *DB) domain.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)

	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(domain.DefaultIdempotencyTTL)
	}
	record := domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Вторая попытка нужна, когда ключ занят просроченной записью.
	for attempt := 0; attempt < 2; attempt++ {
		err := r.insert(ctx, record)
		if err == nil {
			return record, nil
		}
		if !r.db.isUniqueViolation(err) {
			return domain.IdempotencyRecord{}, fmt.Errorf("create idempotency record: %w", err)
		}

		existing, getErr := r.Get(ctx, key)
		if errors.Is(getErr, domain.ErrIdempotencyKeyNotFound) {
			continue
		}
		if getErr != nil {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
		}
		if existing.Expired(now) {
			if err := r.deleteExpiredKey(ctx, key, now); err != nil {
				return domain.IdempotencyRecord{}, err
			}
			continue
		}
		if existing.RequestHash != requestHash {
			return existing, domain.ErrIdempotencyHashMismatch
		}
		return existing, domain.ErrIdempotencyKeyAlreadyExists
	}

	return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
}

func (r *idempotencyRepository) insert(ctx context.Context, record domain.IdempotencyRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.exec(ctx, r.db.db, r.db.sb.Insert("idempotency_keys").
		Columns("key", "request_hash", "response_body", "http_status", "status", "ttl_at", "created_at", "updated_at").
		Values(
			record.Key,
			record.RequestHash,
			nil,
			nil,
			string(record.Status),
			r.db.timeArg(record.TTLAt),
			r.db.timeArg(record.CreatedAt),
			r.db.timeArg(record.UpdatedAt),
		))
	return err
}

func (r *idempotencyRepository) deleteExpiredKey(ctx context.Context, key string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.exec(ctx, r.db.db, r.db.sb.Delete("idempotency_keys").
		Where(sq.Eq{"key": key}).
		Where(sq.LtOrEq{"ttl_at": r.db.timeArg(now)}))
	if err != nil {
		return fmt.Errorf("delete expired idempotency key: %w", err)
	}
	return nil
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row, err := r.db.queryRow(ctx, r.db.db, r.db.sb.
		Select("key", "request_hash", "response_body", "http_status", "status", "ttl_at", "created_at", "updated_at").
		From("idempotency_keys").
		Where(sq.Eq{"key": key}))
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	var (
		record       domain.IdempotencyRecord
		statusRaw    string
		responseBody []byte
		httpStatus   sql.NullInt64
	)
	err = row.Scan(
		&record.Key,
		&record.RequestHash,
		&responseBody,
		&httpStatus,
		&statusRaw,
		scanTime{dst: &record.TTLAt},
		scanTime{dst: &record.CreatedAt},
		scanTime{dst: &record.UpdatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
		}
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency record: %w", err)
	}

	record.Status = domain.IdempotencyStatus(statusRaw)
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid idempotency status %q for key %s", statusRaw, key)
	}
	record.ResponseBody = append([]byte(nil), responseBody...)
	if httpStatus.Valid {
		record.HTTPStatus = int(httpStatus.Int64)
	}

	return record, nil
}

func (r *idempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (r *idempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.markStatus(ctx, key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	expired := sq.LtOrEq{"ttl_at": r.db.timeArg(before)}
	del := r.db.sb.Delete("idempotency_keys")
	if limit > 0 {
		sub := r.db.sb.Select("key").
			From("idempotency_keys").
			Where(expired).
			OrderBy("ttl_at ASC").
			Limit(uint64(limit))
		// Подзапрос собирается без плейсхолдеров, нумерацию выполнит внешний DELETE.
		subSQL, subArgs, err := sub.PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return 0, fmt.Errorf("build expired keys query: %w", err)
		}
		del = del.Where("key IN ("+subSQL+")", subArgs...)
	} else {
		del = del.Where(expired)
	}

	res, err := r.db.exec(ctx, r.db.db, del)
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency records: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *idempotencyRepository) markStatus(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Update("idempotency_keys").
		SetMap(map[string]any{
			"response_body": responseBody,
			"http_status":   httpStatus,
			"status":        string(status),
			"updated_at":    r.db.timeArg(time.Now().UTC()),
		}).
		Where(sq.Eq{"key": key}))
	if err != nil {
		return fmt.Errorf("mark idempotency key status: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}
	return nil
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
