package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/avdrh/abtest/internal/config"
	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/migrations"
	"github.com/avdrh/abtest/internal/reconcilers"
	"github.com/avdrh/abtest/pkg/app"
	sbhttpserver "github.com/avdrh/abtest/pkg/serverbase/http/server"
	lsql "github.com/avdrh/abtest/pkg/sql"
	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
)

type dependencies struct {
	cfg         *config.Config
	app         *app.Instance
	svc         *sbhttpserver.Instance
	servers     []sbhttpserver.Server
	sql         *lsql.Instance
	database    db.Database
	migration   *lmigration.Migration
	reconcilers *reconcilers.ReconcilerSet
}

// NewMigration prepares the schema migration, or nothing when MIGRATE is off.
func NewMigration(appCfg *config.Config, cfg *lsql.Config) (*lmigration.Migration, error) {
	if appCfg.Migrate {
		return lmigration.NewMigration(cfg, migrations.Sets())
	}
	return nil, nil
}

func newDependencies(app *app.Instance, cfg *config.Config, svc *sbhttpserver.Instance,
	servers []sbhttpserver.Server, sql *lsql.Instance, database db.Database,
	migration *lmigration.Migration, reconcilers *reconcilers.ReconcilerSet) *dependencies {
	return &dependencies{
		cfg:         cfg,
		app:         app,
		svc:         svc,
		servers:     servers,
		sql:         sql,
		database:    database,
		migration:   migration,
		reconcilers: reconcilers,
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the experiment API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	deps, err := InitializeDependencies()
	if err != nil {
		return errors.Wrap(err, "failed to initialize app")
	}
	deps.app.AddCloser(deps.sql)

	if deps.migration != nil {
		if err := deps.migration.Run(deps.cfg.MigrationVersion); err != nil {
			return errors.Wrap(err, "failed to migrate database")
		}
		if err := deps.migration.Close(); err != nil {
			log.Warnf("failed to close migration: %s", err)
		}
	}

	if err := deps.svc.Register(sbhttpserver.NewMultiServer(deps.servers)); err != nil {
		return err
	}
	if err := deps.svc.Serve(); err != nil {
		return err
	}

	deps.reconcilers.Start()
	defer deps.reconcilers.Finish()

	log.WithFields(log.Fields{
		"pod":       deps.cfg.Name,
		"namespace": deps.cfg.Namespace,
	}).Info("experiment service started")

	// Wait for the server to finish
	return deps.app.WaitForFinish()
}
