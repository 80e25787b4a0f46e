package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/orderline/internal/app"
)

const (
	envHTTPAddr                    = "ORDERLINE_HTTP_ADDR"
	envMetricsAddr                 = "ORDERLINE_METRICS_ADDR"
	envGRPCAddr                    = "ORDERLINE_GRPC_ADDR"
	envStorageDriver               = "ORDERLINE_STORAGE_DRIVER"
	envPostgresDSN                 = "ORDERLINE_POSTGRES_DSN"
	envPostgresAutoMigrate         = "ORDERLINE_POSTGRES_AUTO_MIGRATE"
	envSQLitePath                  = "ORDERLINE_SQLITE_PATH"
	envSeed                        = "ORDERLINE_SEED"
	envCORSOrigin                  = "ORDERLINE_CORS_ORIGIN"
	envKafkaBrokers                = "ORDERLINE_KAFKA_BROKERS"
	envOutboxPollInterval          = "ORDERLINE_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "ORDERLINE_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "ORDERLINE_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "ORDERLINE_OUTBOX_RETRY_DELAY"
	envIdempotencyCleanupInterval  = "ORDERLINE_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "ORDERLINE_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envLogLevel                    = "ORDERLINE_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// readConfigFromEnv накладывает переменные окружения на app.DefaultConfig.
// Некорректное значение не валит запуск: остаётся значение по умолчанию и
// возвращается предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	// Адреса и драйвер пустыми не бывают; GRPC пустой означает «выключен».
	nonEmpty := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}
	positiveInt := func(key string, dst *int) {
		raw, ok := lookup(key)
		if !ok {
			return
		}
		v, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = v
	}
	duration := func(key string, dst *time.Duration, valid func(time.Duration) bool, rule string) {
		raw, ok := lookup(key)
		if !ok {
			return
		}
		v, err := parseDuration(raw, valid, rule)
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = v
	}

	nonEmpty(envHTTPAddr, &cfg.HTTPAddr)
	nonEmpty(envMetricsAddr, &cfg.MetricsAddr)
	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envPostgresDSN, &cfg.PostgresDSN)
	nonEmpty(envSQLitePath, &cfg.SQLitePath)
	str(envCORSOrigin, &cfg.CORSOrigin)

	if raw, ok := lookup(envStorageDriver); ok {
		switch driver := app.StorageDriver(strings.ToLower(strings.TrimSpace(raw))); driver {
		case app.StorageDriverMemory, app.StorageDriverPostgres, app.StorageDriverSQLite:
			cfg.StorageDriver = driver
		default:
			warn(envStorageDriver, raw, errors.New("use memory|postgres|sqlite"))
		}
	}

	if raw, ok := lookup(envPostgresAutoMigrate); ok {
		v, err := parseBool(raw)
		if err != nil {
			warn(envPostgresAutoMigrate, raw, err)
		} else {
			cfg.PostgresAutoMigrate = v
		}
	}

	if raw, ok := lookup(envSeed); ok {
		v, err := parseBool(raw)
		if err != nil {
			warn(envSeed, raw, err)
		} else {
			cfg.Seed = v
		}
	}

	if raw, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = splitList(raw)
	}

	positive := func(v time.Duration) bool { return v > 0 }
	duration(envOutboxPollInterval, &cfg.OutboxPollInterval, positive, "must be > 0")
	positiveInt(envOutboxBatchSize, &cfg.OutboxBatchSize)
	positiveInt(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts)
	duration(envOutboxRetryDelay, &cfg.OutboxRetryDelay, func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	duration(envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval, positive, "must be > 0")
	positiveInt(envIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize)

	return cfg, warnings
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, errors.New("not a boolean")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("not a duration")
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}
