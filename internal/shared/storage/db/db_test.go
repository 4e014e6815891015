package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var errPingRefused = errors.New("connection refused")

func withMockDriver(t *testing.T, dsn string) func() {
	t.Helper()
	mockDB, _, err := sqlmock.NewWithDSN(dsn)
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := openDB
	openDB = func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlmock", dsn)
	}
	return func() {
		openDB = prev
		mockDB.Close()
	}
}

func resetSingleton() {
	singletonMu.Lock()
	singletonDB = nil
	singletonMu.Unlock()
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultOptions(ProfileServer))
	if !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
	}
}

func TestDefaultOptionsPerProfile(t *testing.T) {
	if got := DefaultOptions(ProfileLambda).MaxOpenConns; got != 2 {
		t.Fatalf("lambda MaxOpenConns = %d", got)
	}
	if got := DefaultOptions(ProfileMigrate).MaxOpenConns; got != 1 {
		t.Fatalf("migrate MaxOpenConns = %d", got)
	}
	if DefaultOptions("unknown") != DefaultOptions(ProfileServer) {
		t.Fatalf("unknown profile should fall back to server sizing")
	}
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	restore := withMockDriver(t, "singleton-same")
	defer restore()
	resetSingleton()
	defer resetSingleton()

	db1, err := GetSingleton(context.Background(), "ignored", DefaultOptions(ProfileLambda))
	if err != nil {
		t.Fatalf("GetSingleton first: %v", err)
	}
	db2, err := GetSingleton(context.Background(), "ignored", DefaultOptions(ProfileLambda))
	if err != nil {
		t.Fatalf("GetSingleton second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected singleton pointers to match")
	}
}

func TestLoadOptionsAppliesOverrides(t *testing.T) {
	restore := withMockDriver(t, "options-env")
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")
	t.Setenv("DB_PING_ATTEMPTS", "2")

	opts := LoadOptions(ProfileServer)
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if stats := db.Stats(); stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 || opts.PingAttempts != 2 {
		t.Fatalf("unexpected overrides %+v", opts)
	}
	if opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("unexpected lifetimes %s %s", opts.ConnMaxLifetime, opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestLoadOptionsIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")
	opts := LoadOptions(ProfileMigrate)
	if opts.MaxOpenConns != 1 || opts.PingTimeout != 5*time.Second {
		t.Fatalf("expected defaults to survive, got %+v", opts)
	}
}

func TestConnectRetriesPing(t *testing.T) {
	dsn := "ping-retry"
	mockDB, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()
	prevOpen, prevSleep := openDB, sleep
	openDB = func(_, _ string) (*sql.DB, error) { return mockDB, nil }
	var slept []time.Duration
	sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	defer func() { openDB, sleep = prevOpen, prevSleep }()

	mock.ExpectPing().WillReturnError(errPingRefused)
	mock.ExpectPing()

	opts := Options{MaxOpenConns: 1, PingAttempts: 3, PingBackoff: time.Second}
	if _, err := Connect(context.Background(), "ignored", opts); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected one 1s backoff, got %v", slept)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectGivesUpAfterAttempts(t *testing.T) {
	dsn := "ping-give-up"
	mockDB, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()
	prevOpen, prevSleep := openDB, sleep
	openDB = func(_, _ string) (*sql.DB, error) { return mockDB, nil }
	sleep = func(context.Context, time.Duration) error { return nil }
	defer func() { openDB, sleep = prevOpen, prevSleep }()

	mock.ExpectPing().WillReturnError(errPingRefused)
	mock.ExpectPing().WillReturnError(errPingRefused)

	_, err = Connect(context.Background(), "ignored", Options{PingAttempts: 2})
	if !errors.Is(err, errPingRefused) {
		t.Fatalf("expected refused ping after retries, got %v", err)
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	restore := withMockDriver(t, "singleton-retry")
	defer restore()
	resetSingleton()
	defer resetSingleton()

	var calls int32
	working := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		return working(name, dsn)
	}

	if _, err := GetSingleton(context.Background(), "ignored", DefaultOptions(ProfileLambda)); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db2, err := GetSingleton(context.Background(), "ignored", DefaultOptions(ProfileLambda))
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db2 == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestMigrateNilDatabaseIsNoop(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected nil db to be a no-op, got %v", err)
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	database, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()
	if err := Migrate(context.Background(), database, "sideways"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	want := []string{"00001_documents.sql", "00002_assessments.sql", "00003_consents.sql"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Fatalf("migration %d = %s, want %s", i, e.Name(), want[i])
		}
	}
}
