package postgres

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/shortlink/migrations"

	pg "github.com/vadimbarashkov/shortlink/pkg/postgres"
)

// Migrator creates or upgrades the shortened_urls schema from the embedded
// migrations. Running it repeatedly is safe.
type Migrator struct {
	dsn string
}

func NewMigrator(dsn string) *Migrator {
	return &Migrator{dsn: dsn}
}

// Migrate reports whether any migration was applied.
func (m *Migrator) Migrate(ctx context.Context) (bool, error) {
	const op = "adapter.repository.postgres.Migrator.Migrate"

	applied, err := pg.RunMigrations(ctx, migrations.FS, ".", m.dsn)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return applied, nil
}
