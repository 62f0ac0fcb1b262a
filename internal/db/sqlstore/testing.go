package sqlstore

import (
	"github.com/avdrh/abtest/internal/migrations"
	lsql "github.com/avdrh/abtest/pkg/sql"
	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
	ltest "github.com/avdrh/abtest/pkg/test"
)

// NewTestingDatabase returns a store over a migrated temporary sqlite file.
func NewTestingDatabase(t ltest.T) *Database {
	t.Helper()
	cfg, err := lsql.NewTestingConfig(t)
	if err != nil {
		t.Fatalf("failed to create testing config: %s", err)
	}

	migration, err := lmigration.NewMigration(cfg, migrations.Sets())
	if err != nil {
		t.Fatalf("failed to prepare migrations: %s", err)
	}
	if err := migration.Run(nil); err != nil {
		t.Fatalf("failed to run migrations: %s", err)
	}
	if err := migration.Close(); err != nil {
		t.Fatalf("failed to close migrations: %s", err)
	}

	instance, err := lsql.NewInstance(cfg)
	if err != nil {
		t.Fatalf("failed to connect: %s", err)
	}
	t.Cleanup(func() { _ = instance.Close() })
	return NewDatabase(instance)
}
