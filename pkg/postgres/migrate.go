package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

// RunMigrations applies every pending up migration found at path inside fsys
// using the provided Data Source Name (DSN). It reports whether anything was applied;
// an already up-to-date database is not an error. Cancelling ctx stops the run
// after the migration in progress completes.
func RunMigrations(ctx context.Context, fsys fs.FS, path string, dsn string) (bool, error) {
	const op = "postgres.RunMigrations"

	src, err := iofs.New(fsys, path)
	if err != nil {
		return false, fmt.Errorf("%s: failed to open migrations source: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return false, fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	done := make(chan error, 1)
	go func() {
		done <- m.Up()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		m.GracefulStop <- true
		<-done
		return false, fmt.Errorf("%s: migrations interrupted: %w", op, ctx.Err())
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return true, nil
}
