package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// NewPostgres builds a Repository over a database/sql handle backed by pgx,
// such as one returned by stdlib.OpenDBFromPool.
func NewPostgres(db DBTX) *Repository {
	return New(&rebindDB{db: db})
}

// rebindDB rewrites ? placeholders into postgres positional parameters.
type rebindDB struct {
	db DBTX
}

func (r *rebindDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, rebind(query), args...)
}

func (r *rebindDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, rebind(query), args...)
}

func (r *rebindDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, rebind(query), args...)
}

func rebind(query string) string {
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 16)
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
