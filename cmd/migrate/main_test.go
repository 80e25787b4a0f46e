package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	version int64
	applied int
	err     error
}

func (f *fakeMigrator) MigrateUp(_ context.Context, steps int) error {
	f.calls = append(f.calls, "up")
	if f.err != nil {
		return f.err
	}
	f.version, f.applied = 1, 1
	return nil
}

func (f *fakeMigrator) MigrateDown(_ context.Context, steps int) error {
	f.calls = append(f.calls, "down")
	f.version, f.applied = 0, 0
	return f.err
}

func (f *fakeMigrator) MigrationStatus(context.Context) (int64, int, error) {
	f.calls = append(f.calls, "status")
	return f.version, f.applied, nil
}

func noEnv(string) string { return "" }

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-direction", " DOWN ", "-steps", "2"}, func(key string) string {
		if key == envPostgresDSN {
			return " postgres://localhost/orderline "
		}
		return ""
	}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, options{direction: "down", steps: 2, dsn: "postgres://localhost/orderline"}, opts)

	opts, err = parseArgs([]string{"-dsn=postgres://flag/orderline"}, noEnv, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "up", opts.direction)
	require.Equal(t, "postgres://flag/orderline", opts.dsn)
}

func TestParseArgs_Errors(t *testing.T) {
	_, err := parseArgs([]string{"-direction=status"}, noEnv, io.Discard)
	require.ErrorIs(t, err, errUsage)
	require.ErrorContains(t, err, envPostgresDSN)

	_, err = parseArgs([]string{"-direction=sideways", "-dsn=x"}, noEnv, io.Discard)
	require.ErrorIs(t, err, errUsage)
	require.ErrorContains(t, err, "unsupported direction")

	_, err = parseArgs([]string{"-steps=many"}, noEnv, io.Discard)
	require.Error(t, err)
}

func TestMigrate_Directions(t *testing.T) {
	ctx := context.Background()

	store := &fakeMigrator{}
	var out bytes.Buffer
	require.NoError(t, migrate(ctx, store, options{direction: "up"}, &out))
	require.Equal(t, "migrate up ok: version=1 applied=1\n", out.String())

	out.Reset()
	require.NoError(t, migrate(ctx, store, options{direction: "status"}, &out))
	require.Equal(t, "migration status: version=1 applied=1\n", out.String())

	out.Reset()
	require.NoError(t, migrate(ctx, store, options{direction: "down", steps: 1}, &out))
	require.Equal(t, "migrate down ok: version=0 applied=0\n", out.String())

	require.Equal(t, []string{"up", "status", "status", "down", "status"}, store.calls)
}

func TestMigrate_Failure(t *testing.T) {
	store := &fakeMigrator{err: errors.New("lock timeout")}
	err := migrate(context.Background(), store, options{direction: "up"}, io.Discard)
	require.EqualError(t, err, "migrate up failed: lock timeout")
	require.Equal(t, []string{"up"}, store.calls)
}

func TestRun_AgainstPostgres(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("ORDERLINE_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("ORDERLINE_POSTGRES_TEST_DSN is not set")
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{"-direction=up", "-dsn=" + dsn}, noEnv, &out, io.Discard)
	if err != nil && strings.Contains(err.Error(), "open postgres store") {
		t.Skipf("postgres is not available: %v", err)
	}
	require.NoError(t, err)
	require.Contains(t, out.String(), "migrate up ok")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-direction=status", "-dsn=" + dsn}, noEnv, &out, io.Discard))
	require.Contains(t, out.String(), "migration status")
}
