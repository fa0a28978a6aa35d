package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/database"
	"github.com/techshelf/techshelf/pkg/migrations"
	"github.com/techshelf/techshelf/pkg/users"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the techshelf database schema",
		Commands: []*cli.Command{
			migrateCommand(db),
			rollbackCommand(db),
			statusCommand(db),
			createCommand(db),
			createUserCommand(db),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func migrateCommand(db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending migrations",
		Action: func(c *cli.Context) error {
			group, err := migrations.BringUpToDate(c.Context, db)
			if err != nil {
				return err
			}
			if group.ID == 0 {
				fmt.Println("Schema is up to date")
				return nil
			}
			fmt.Printf("Migrated to %s\n", group)
			return nil
		},
	}
}

func rollbackCommand(db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:  "rollback",
		Usage: "roll back the last migration group",
		Action: func(c *cli.Context) error {
			group, err := migrate.NewMigrator(db, migrations.Migrations).Rollback(c.Context)
			if err != nil {
				return errors.WithStack(err)
			}
			if group.ID == 0 {
				fmt.Println("Nothing to roll back")
				return nil
			}
			fmt.Printf("Rolled back %s\n", group)
			return nil
		},
	}
}

func statusCommand(db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "list applied and pending migrations",
		Action: func(c *cli.Context) error {
			migrator := migrate.NewMigrator(db, migrations.Migrations)
			if err := migrator.Init(c.Context); err != nil {
				return errors.WithStack(err)
			}
			ms, err := migrator.MigrationsWithStatus(c.Context)
			if err != nil {
				return errors.WithStack(err)
			}
			for _, m := range ms {
				state := "pending"
				if m.IsApplied() {
					state = fmt.Sprintf("applied (group %d)", m.GroupID)
				}
				fmt.Printf("%-50s %s\n", m.Name, state)
			}
			return nil
		},
	}
}

func createCommand(db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "scaffold a new Go migration",
		ArgsUsage: "<words describing the change>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("a migration name is required")
			}
			name := strings.Join(c.Args().Slice(), "_")
			mf, err := migrate.NewMigrator(db, migrations.Migrations).CreateGoMigration(
				c.Context,
				name,
				migrate.WithGoTemplate(migrationTemplate),
			)
			if err != nil {
				return errors.WithStack(err)
			}
			fmt.Printf("Created %s\n", mf.Path)
			return nil
		},
	}
}

// createUserCommand registers an account from the shell, running pending
// migrations first so it works against a fresh database file.
func createUserCommand(db *bun.DB) *cli.Command {
	return &cli.Command{
		Name:  "createuser",
		Usage: "register a user account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"TECHSHELF_PASSWORD"}},
			&cli.StringFlag{Name: "first-name"},
			&cli.StringFlag{Name: "last-name"},
			&cli.StringFlag{Name: "email"},
		},
		Action: func(c *cli.Context) error {
			if len(c.String("password")) < users.MinPasswordLength {
				return errors.Errorf("password must be at least %d characters", users.MinPasswordLength)
			}
			if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
				return err
			}

			opts := users.RegisterOptions{
				Username:  c.String("username"),
				FirstName: c.String("first-name"),
				LastName:  c.String("last-name"),
				Password:  c.String("password"),
			}
			if email := c.String("email"); email != "" {
				opts.Email = &email
			}

			user, err := users.NewService(db).Register(c.Context, opts)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
