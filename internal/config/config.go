package config

import (
	"net/http"

	"github.com/pkg/errors"

	lconfig "github.com/avdrh/abtest/pkg/config"
)

type Config struct {
	lconfig.PodInfo
	Migrate          bool  `env:"MIGRATE" envDefault:"true"`
	MigrationVersion *uint `env:"MIGRATION_VERSION"`
	// The upstream auth proxy sets AdminRoleHeader; admin endpoints require it to equal AdminRoleValue.
	AdminRoleHeader string `env:"ADMIN_ROLE_HEADER" envDefault:"X-Remote-User-Role"`
	AdminRoleValue  string `env:"ADMIN_ROLE_VALUE" envDefault:"admin"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AdminRoleHeader == "" || cfg.AdminRoleValue == "" {
		return nil, errors.New("ADMIN_ROLE_HEADER and ADMIN_ROLE_VALUE must not be empty")
	}
	cfg.AdminRoleHeader = http.CanonicalHeaderKey(cfg.AdminRoleHeader)
	return &cfg, nil
}
