package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"task_manager/internal/logger"
	"task_manager/internal/migrations"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgxpool.Pool used to apply migrations.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MigrationNames lists the embedded migration files in apply order.
func MigrationNames() ([]string, error) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every embedded migration. Statements are idempotent, so
// running it against an up-to-date schema is a no-op.
func Migrate(ctx context.Context, db Execer) error {
	names, err := MigrationNames()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	for _, name := range names {
		b, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Debug("migration applied", "name", name)
	}
	return nil
}
