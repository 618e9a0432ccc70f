package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/garrettladley/fitmetrics/internal/db"
)

// Writer forwards log output to t.Log until the test finishes.
type Writer struct {
	t    *testing.T
	mu   sync.Mutex
	done bool
}

func NewWriter(t *testing.T) io.Writer {
	w := &Writer{t: t}
	t.Cleanup(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return len(p), nil
	}
	if output := strings.TrimSuffix(string(p), "\n"); output != "" {
		w.t.Log(output)
	}
	return len(p), nil
}

// NewLogger returns a debug level logger writing to the test log.
func NewLogger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(NewWriter(t), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// OpenDB opens a migrated in-memory database closed at test cleanup.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}
