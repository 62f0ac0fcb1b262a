package lmigration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	lsql "github.com/avdrh/abtest/pkg/sql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	bindata "github.com/golang-migrate/migrate/v4/source/go_bindata"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type MigrationStatus string

var (
	StatusNotStarted = MigrationStatus("NotStarted")
	StatusRunning    = MigrationStatus("Running")
	StatusDone       = MigrationStatus("Done")
	StatusFailed     = MigrationStatus("Failed")
	StatusCancelled  = MigrationStatus("Cancelled")
)

type Migration struct {
	DB       *sql.DB
	cfg      *lsql.Config
	migrate  *migrate.Migrate
	database database.Driver
	source   source.Driver
	set      MigrationSet
	status   MigrationStatus
}

type MigrationSet struct {
	AssetNames func() []string
	Asset      func(name string) ([]byte, error)
}

// FromFS builds a set from the *.sql files at the root of fsys.
func FromFS(fsys fs.FS) MigrationSet {
	return MigrationSet{
		AssetNames: func() []string {
			names, err := fs.Glob(fsys, "*.sql")
			if err != nil {
				return nil
			}
			sort.Strings(names)
			return names
		},
		Asset: func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, name)
		},
	}
}

type MigrationLogger struct {
}

func (m MigrationLogger) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	log.Print(msg)
}

func (m MigrationLogger) Verbose() bool {
	return log.IsLevelEnabled(log.DebugLevel)
}

func NewMigration(cfg *lsql.Config, sets map[string]MigrationSet) (*Migration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine := strings.ToLower(cfg.Engine)
	set, ok := sets[engine]
	if !ok {
		return nil, fmt.Errorf("migration set not found for DB engine: set name: %s", engine)
	}

	resource := bindata.Resource(set.AssetNames(),
		func(name string) ([]byte, error) {
			return set.Asset(name)
		},
	)

	source, err := bindata.WithInstance(resource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.DriverName(), cfg.FullAddress())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	var driver database.Driver
	switch engine {
	case lsql.EngineSqlite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case lsql.EngineSqlite3:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case lsql.EnginePostgres:
		driver, err = pgx.WithInstance(db, &pgx.Config{})
	default:
		err = fmt.Errorf("unknown engine \"%s\"", cfg.Engine)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	mig, err := migrate.NewWithInstance("go-bindata", source, cfg.DatabaseName, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mig.Log = MigrationLogger{}

	return &Migration{
		DB:       db,
		cfg:      cfg,
		migrate:  mig,
		source:   source,
		set:      set,
		database: driver,
		status:   StatusNotStarted,
	}, nil
}

func (m *Migration) Status() MigrationStatus {
	return m.status
}

// LatestVersion assumes that migrations come in pairs (up and down).
func (m *Migration) LatestVersion() uint {
	return uint(len(m.set.AssetNames()) / 2)
}

func (m *Migration) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return version, dirty, errors.WithStack(err)
}

// Run migrates to desiredVersion, or to the latest version when nil.
func (m *Migration) Run(desiredVersion *uint) error {
	if desiredVersion == nil {
		latestVersion := m.LatestVersion()
		desiredVersion = &latestVersion
	}
	m.status = StatusRunning

	version, dirty, err := m.migrate.Version()

	if err != nil && err != migrate.ErrNilVersion {
		m.status = StatusFailed
		return errors.WithStack(err)
	}

	if dirty {
		log.Warnf("database is dirty at version %d, recovering", version)
		if version > 1 {
			if err := m.migrate.Force(int(version) - 1); err != nil {
				m.status = StatusFailed
				return errors.WithStack(err)
			}
		} else {
			if err := m.migrate.Drop(); err != nil {
				m.status = StatusFailed
				return errors.WithStack(err)
			}
			m.migrate, err = migrate.NewWithInstance("go-bindata", m.source, m.cfg.DatabaseName, m.database)
			if err != nil {
				m.status = StatusFailed
				return errors.WithStack(err)
			}
		}
	}

	done := make(chan bool)
	errs := make(chan error, 1)
	cancelled := make(chan bool, 1)

	// Watch for stops
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigint)
		select {
		case <-done:
			return
		case <-sigint:
			cancelled <- true
			m.migrate.GracefulStop <- true
		}
	}()

	go func() {
		if err := m.migrate.Migrate(*desiredVersion); err != nil && err != migrate.ErrNoChange {
			errs <- errors.WithStack(err)
		}
		close(errs)
		close(done)
	}()

	err = <-errs
	switch {
	case len(cancelled) > 0:
		m.status = StatusCancelled
	case err != nil:
		m.status = StatusFailed
	default:
		m.status = StatusDone
	}
	return err
}

func (m *Migration) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return sourceErr
	}
	return dbErr
}
