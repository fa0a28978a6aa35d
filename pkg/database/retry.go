package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// busyMarkers are substrings both SQLite drivers use for SQLITE_BUSY (5) and
// SQLITE_LOCKED (6).
var busyMarkers = []string{
	"database is locked",
	"database table is locked",
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"(5)",
	"(6)",
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range busyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// backoff retries SQLITE_BUSY failures with exponential delay and jitter.
type backoff struct {
	retries int
	base    time.Duration
	max     time.Duration
}

func newBackoff(retries int) backoff {
	return backoff{retries: retries, base: 50 * time.Millisecond, max: 2 * time.Second}
}

func (b backoff) delay(attempt int) time.Duration {
	d := b.base << attempt
	if d <= 0 || d > b.max {
		return b.max
	}
	return d + rand.N(d/4+1)
}

// withRetry runs fn until it succeeds, fails with a non-busy error, runs out
// of retries or ctx is done.
func withRetry[T any](ctx context.Context, b backoff, fn func() (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil || !isBusyError(err) || attempt >= b.retries {
			return v, err
		}

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// connector opens driver connections, applies the per-connection pragmas and
// wraps them with busy retries.
type connector struct {
	driver.Connector
	backoff backoff
	setup   []string
}

func newConnector(inner driver.Connector, retries int, busyTimeout time.Duration) *connector {
	return &connector{
		Connector: inner,
		backoff:   newBackoff(retries),
		setup: []string{
			// ON DELETE CASCADE from users needs this on every connection.
			"PRAGMA foreign_keys = ON",
			fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		},
	}
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	if execer, ok := conn.(driver.ExecerContext); ok {
		for _, stmt := range c.setup {
			if _, err := execer.ExecContext(ctx, stmt, nil); err != nil {
				conn.Close()
				return nil, err
			}
		}
	}

	return &retryConn{Conn: conn, backoff: c.backoff}, nil
}

type retryConn struct {
	driver.Conn
	backoff backoff
}

func (c *retryConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *retryConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &retryStmt{Stmt: stmt, backoff: c.backoff}, nil
}

func (c *retryConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *retryConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return withRetry(ctx, c.backoff, func() (driver.Tx, error) {
		if b, ok := c.Conn.(driver.ConnBeginTx); ok {
			return b.BeginTx(ctx, opts)
		}
		return c.Conn.Begin() //nolint:staticcheck // fallback for drivers without BeginTx
	})
}

func (c *retryConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return withRetry(ctx, c.backoff, func() (driver.Result, error) {
		return execer.ExecContext(ctx, query, args)
	})
}

func (c *retryConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return withRetry(ctx, c.backoff, func() (driver.Rows, error) {
		return queryer.QueryContext(ctx, query, args)
	})
}

func (c *retryConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *retryConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *retryConn) IsValid() bool {
	if v, ok := c.Conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

type retryStmt struct {
	driver.Stmt
	backoff backoff
}

func (s *retryStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), named(args))
}

func (s *retryStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), named(args))
}

func (s *retryStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return withRetry(ctx, s.backoff, func() (driver.Result, error) {
		if e, ok := s.Stmt.(driver.StmtExecContext); ok {
			return e.ExecContext(ctx, args)
		}
		return s.Stmt.Exec(values(args)) //nolint:staticcheck // fallback for drivers without ExecContext
	})
}

func (s *retryStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return withRetry(ctx, s.backoff, func() (driver.Rows, error) {
		if q, ok := s.Stmt.(driver.StmtQueryContext); ok {
			return q.QueryContext(ctx, args)
		}
		return s.Stmt.Query(values(args)) //nolint:staticcheck // fallback for drivers without QueryContext
	})
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func values(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, arg := range args {
		out[i] = arg.Value
	}
	return out
}
