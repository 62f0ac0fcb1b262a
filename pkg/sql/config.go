package lsql

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	lconfig "github.com/avdrh/abtest/pkg/config"
	"github.com/spf13/afero"
)

const (
	EngineSqlite   = "sqlite"
	EngineSqlite3  = "sqlite3"
	EnginePostgres = "postgres"
)

type Config struct {
	ConfigSecrets

	Engine         string        `env:"SQL_DB_ENGINE"`
	DatabaseName   string        `env:"SQL_DB_NAME" envDefault:"abtest"`
	Address        string        `env:"SQL_DB_ADDRESS" envDefault:""`
	Options        string        `env:"SQL_DB_OPTIONS" envDefault:""`
	MaxLifetime    time.Duration `env:"SQL_DB_MAX_LIFETIME" envDefault:"30m"`
	MaxIdleConns   int           `env:"SQL_DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxOpenConns   int           `env:"SQL_DB_MAX_OPEN_CONNS" envDefault:"20"`
	ConnectRetries uint          `env:"SQL_DB_CONNECT_RETRIES" envDefault:"5"`
	ConnectBackoff time.Duration `env:"SQL_DB_CONNECT_BACKOFF" envDefault:"1s"`
	ConfigLocation string        `env:"SQL_DB_CONFIG_LOCATION"`
}

type ConfigSecrets struct {
	Username string `env:"SQL_DB_USERNAME" json:"username"`
	Password string `env:"SQL_DB_PASSWORD" json:"password"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ConfigLocation != "" {
		err = cfg.loadFile()
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no connection pool can serve. An in-memory sqlite database is private to
// one connection, so the pool and the migration would each see a different empty schema.
func (cfg *Config) Validate() error {
	if cfg.DriverName() == "" {
		return fmt.Errorf("%w: SQL_DB_ENGINE=%q", ErrDatabaseEngineNotSupported, cfg.Engine)
	}
	if cfg.Address == "" {
		return ErrMissingAddress
	}
	if cfg.IsSqlite() && strings.Contains(cfg.Address, ":memory:") {
		return ErrInMemorySqlite
	}
	return nil
}

// DriverName is the database/sql driver registered for the engine.
func (cfg *Config) DriverName() string {
	switch strings.ToLower(cfg.Engine) {
	case EngineSqlite:
		return "sqlite"
	case EngineSqlite3:
		return "sqlite3"
	case EnginePostgres:
		return "pgx"
	default:
		return ""
	}
}

func (cfg *Config) IsSqlite() bool {
	engine := strings.ToLower(cfg.Engine)
	return engine == EngineSqlite || engine == EngineSqlite3
}

func (cfg *Config) FullAddress() string {
	switch strings.ToLower(cfg.Engine) {
	case EnginePostgres:
		address := fmt.Sprintf("postgres://%s:%s@%s/%s",
			cfg.Username,
			cfg.Password,
			cfg.Address,
			cfg.DatabaseName)
		if cfg.Options != "" {
			address += "?" + cfg.Options
		}
		return address
	case EngineSqlite, EngineSqlite3:
		return cfg.Address + "?" + cfg.sqliteOptions()
	default:
		return ""
	}
}

func (cfg *Config) loadFile() error {
	return lconfig.LoadStaticYamlConfig(cfg.ConfigLocation, afero.NewOsFs(), &cfg.ConfigSecrets)
}

const sqliteBusyTimeout = "5000"

// sqliteOptions adds the locking defaults concurrent writers rely on: a busy timeout so a locked database is
// waited on instead of failing, and immediate transactions so a transaction never has to upgrade a read lock.
// Values already present in Options win.
func (cfg *Config) sqliteOptions() string {
	values, err := url.ParseQuery(cfg.Options)
	if err != nil {
		return cfg.Options
	}
	if strings.ToLower(cfg.Engine) == EngineSqlite3 {
		setDefault(values, "_busy_timeout", sqliteBusyTimeout)
		setDefault(values, "_foreign_keys", "1")
	} else {
		setPragmaDefault(values, "busy_timeout", "busy_timeout("+sqliteBusyTimeout+")")
		setPragmaDefault(values, "foreign_keys", "foreign_keys(1)")
	}
	setDefault(values, "_txlock", "immediate")
	return values.Encode()
}

func setDefault(values url.Values, key, value string) {
	if values.Get(key) == "" {
		values.Set(key, value)
	}
}

func setPragmaDefault(values url.Values, name, pragma string) {
	for _, existing := range values["_pragma"] {
		if strings.HasPrefix(strings.ToLower(existing), name) {
			return
		}
	}
	values.Add("_pragma", pragma)
}
