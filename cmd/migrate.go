package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	lmigration "github.com/avdrh/abtest/pkg/sql/migration"
)

func newMigrateCommand() *cobra.Command {
	var version uint
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			var desired *uint
			if cmd.Flags().Changed("version") {
				desired = &version
			}
			return migrate(desired)
		},
	}
	cmd.Flags().UintVar(&version, "version", 0, "target schema version, latest when unset")
	return cmd
}

func migrate(version *uint) error {
	migration, err := InitializeMigration()
	if err != nil {
		return errors.Wrap(err, "failed to prepare migration")
	}
	defer func(m *lmigration.Migration) {
		if err := m.Close(); err != nil {
			log.Warnf("failed to close migration: %s", err)
		}
	}(migration)

	if err := migration.Run(version); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	current, dirty, err := migration.Version()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"version": current,
		"dirty":   dirty,
		"status":  migration.Status(),
	}).Info("database migrated")
	return nil
}
