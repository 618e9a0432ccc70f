package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/garrettladley/fitmetrics/internal/migrations"
	"github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3_fitmetrics"

var registerOnce sync.Once

// registerDriver installs a sqlite3 driver whose connections enforce foreign keys.
func registerDriver() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec(
				"PRAGMA foreign_keys = ON;"+
					"PRAGMA temp_store = memory;", nil); err != nil {
				return fmt.Errorf("exec connection pragmas: %w", err)
			}
			return nil
		},
	})
}

// Open connects to the SQLite database at path and applies pending migrations.
// A path of ":memory:" yields a private in-memory database on a single connection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	registerOnce.Do(registerDriver)

	inMemory := strings.Contains(path, ":memory:")
	dsn := path
	if !inMemory {
		dsn = path + "?" + strings.Join([]string{
			"_journal_mode=wal",
			"_busy_timeout=5000",
			"_synchronous=normal",
		}, "&")
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers; one connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrations.Apply(ctx, sqlDB, logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return sqlDB, nil
}
