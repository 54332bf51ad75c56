// Package store is the read-only access layer over the published gold
// tables. All agent queries, named or generated, run through it.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// Engine wraps the database handle. The DSN pins the session to
// read-only transactions, so the guard is not the only line of
// defense.
type Engine struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewEngine opens a connection pool against the given DSN.
func NewEngine(dsn string) (*Engine, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionError(err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Engine{
		db:     db,
		logger: observability.NewLogger("store"),
	}, nil
}

// NewEngineFromDB wraps an existing handle (used by tests).
func NewEngineFromDB(db *sql.DB) *Engine {
	return &Engine{
		db:     db,
		logger: observability.NewLogger("store"),
	}
}

// Ping verifies connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close releases the pool.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Execute runs one statement and materializes the result as column
// names plus generic rows. Satisfies the guard's executor contract.
func (e *Engine) Execute(ctx context.Context, query string) ([]string, [][]interface{}, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query)
	observability.RecordDBMetrics("execute", time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}
