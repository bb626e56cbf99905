package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/db"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// DefaultDir is where the goose SQL migrations live relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

const dialect = "postgres"

// Run executes a goose command (up, down, status, ...) against the given
// connection. Goose prints its own status output to stdout.
func Run(ctx context.Context, conn *sql.DB, dir, command string, args ...string) error {
	if conn == nil {
		return fmt.Errorf("sql connection is required")
	}
	if dir == "" {
		return fmt.Errorf("migrations dir is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, conn, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at target,
// which must be a goose timestamp version (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, conn *sql.DB, dir, target string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	want, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid target version %q: %w", target, err)
	}
	have, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch {
	case have == want:
		return nil
	case have < want:
		if err := goose.UpToContext(ctx, conn, dir, want); err != nil {
			return fmt.Errorf("goose up-to %d: %w", want, err)
		}
	default:
		if err := goose.DownToContext(ctx, conn, dir, want); err != nil {
			return fmt.Errorf("goose down-to %d: %w", want, err)
		}
	}
	return nil
}

// MaybeRunDev applies pending migrations on startup, but only in the dev
// environment with the auto-migrate flag set. Production schemas move
// through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	conn, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql connection: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "applying migrations (dev auto-run)")
	if err := Run(ctx, conn, DefaultDir, "up"); err != nil {
		return fmt.Errorf("auto-run goose up: %w", err)
	}
	logg.Info(ctx, "migrations up to date")
	return nil
}
