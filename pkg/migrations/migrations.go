package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds every schema change, registered by the init functions of
// the timestamped files in this package.
var Migrations = migrate.NewMigrations()

func newMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return migrator, nil
}

// BringUpToDate applies all pending migrations as one group. The returned
// group has ID 0 when there was nothing to apply.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	group, err := migrator.Migrate(ctx)
	return group, errors.WithStack(err)
}

// Pending returns the names of migrations that have not been applied yet.
func Pending(ctx context.Context, db *bun.DB) ([]string, error) {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return nil, err
	}
	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	names := []string{}
	for _, m := range ms.Unapplied() {
		names = append(names, m.Name)
	}
	return names, nil
}
