//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/avdrh/abtest/internal/config"
	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/db/sqlstore"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/internal/migrations"
	"github.com/avdrh/abtest/internal/reconcilers"
	"github.com/avdrh/abtest/internal/reconcilers/results"
	"github.com/avdrh/abtest/internal/restapi"
	"github.com/avdrh/abtest/internal/server"
	"github.com/avdrh/abtest/internal/telemetry"
	"github.com/avdrh/abtest/pkg/app/builders"
	lsql "github.com/avdrh/abtest/pkg/sql"
	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
)

// wire up the dependencies.
func InitializeDependencies() (*dependencies, error) {
	wire.Build(builders.Builders, config.NewConfigFromEnv,
		sqlstore.NewDatabase, wire.Bind(new(db.Database), new(*sqlstore.Database)), NewMigration,
		telemetry.NewMetrics, experiments.NewEngine, restapi.NewAPI,
		server.NewApiServer, server.NewSwaggerDocument, server.NewHttpServers, server.NewRequestObserver,
		results.NewConfigFromEnv, results.NewReconciler, reconcilers.NewReconcilerSet,
		newDependencies)
	return &dependencies{}, nil
}

func InitializeMigration() (*lmigration.Migration, error) {
	wire.Build(lsql.NewConfigFromEnv, migrations.Sets, lmigration.NewMigration)
	return &lmigration.Migration{}, nil
}
