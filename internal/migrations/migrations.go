package migrations

import (
	postgresmigrations "github.com/avdrh/abtest/internal/migrations/postgres"
	sqlitemigrations "github.com/avdrh/abtest/internal/migrations/sqlite"
	lsql "github.com/avdrh/abtest/pkg/sql"
	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
)

// Sets maps every supported engine to its migrations. Both sqlite drivers share one schema.
func Sets() map[string]lmigration.MigrationSet {
	return map[string]lmigration.MigrationSet{
		lsql.EngineSqlite:   sqlitemigrations.Set,
		lsql.EngineSqlite3:  sqlitemigrations.Set,
		lsql.EnginePostgres: postgresmigrations.Set,
	}
}
