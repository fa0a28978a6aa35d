package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		// No foreign key on catalog_id: progress may exist for unsaved books.
		_, err := db.Exec(`
			CREATE TABLE reading_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				catalog_id TEXT NOT NULL,
				current_page INTEGER NOT NULL DEFAULT 1,
				last_read TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, catalog_id)
			)
`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS reading_progress")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
