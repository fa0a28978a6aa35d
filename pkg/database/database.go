package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type queryLogger struct {
	log logger.Logger
}

func (*queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (q *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil {
		data["error"] = event.Err.Error()
	}
	q.log.Debug(event.Query, data)
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint. Both
// mattn/go-sqlite3 and modernc.org/sqlite include the same phrase.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// New opens the SQLite database at cfg.DatabaseFilePath.
func New(cfg *config.Config) (*bun.DB, error) {
	inner, err := openConnector(sqliteshim.Driver(), cfg.DatabaseFilePath)
	if err != nil {
		return nil, err
	}

	sqldb := sql.OpenDB(newConnector(inner, cfg.DatabaseMaxRetries, cfg.DatabaseBusyTimeout))
	// One connection serializes writers and keeps ":memory:" databases from
	// splitting per connection.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if cfg.DatabaseDebug {
		db.AddQueryHook(&queryLogger{logger.NewWithLevel("debug")})
	}

	if err := ping(db, cfg.DatabaseConnectRetryCount, cfg.DatabaseConnectRetryDelay); err != nil {
		return nil, err
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	return db, nil
}

// openConnector uses the driver's own connector when it has one. Neither
// SQLite driver does, so the DSN is opened per connection instead.
func openConnector(drv driver.Driver, dsn string) (driver.Connector, error) {
	if dc, ok := drv.(driver.DriverContext); ok {
		c, err := dc.OpenConnector(dsn)
		return c, errors.WithStack(err)
	}
	return &dsnConnector{drv: drv, dsn: dsn}, nil
}

type dsnConnector struct {
	drv driver.Driver
	dsn string
}

func (c *dsnConnector) Connect(_ context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c *dsnConnector) Driver() driver.Driver {
	return c.drv
}

func ping(db *bun.DB, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		if _, err = db.Exec("SELECT 1"); err == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return errors.Wrap(err, "database unreachable")
}
