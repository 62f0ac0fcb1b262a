package results

import (
	"fmt"
	"time"

	lconfig "github.com/avdrh/abtest/pkg/config"
	"github.com/avdrh/abtest/pkg/reconciler"
)

type Config struct {
	Enabled         bool          `env:"RESULTS_RECONCILER_ENABLED" envDefault:"false"`
	ResyncFrequency time.Duration `env:"RESULTS_RECONCILER_RESYNC_FREQUENCY" envDefault:"1m"`
	ResyncMaxItems  int           `env:"RESULTS_RECONCILER_RESYNC_MAX_ITEMS" envDefault:"100"`
	MaxWorkers      int           `env:"RESULTS_RECONCILER_MAX_WORKERS" envDefault:"1"`
	RunMaxItems     int           `env:"RESULTS_RECONCILER_RUN_MAX_ITEMS" envDefault:"10"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	err = validateConfig(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidResyncMaxItems = fmt.Errorf("invalid resync max items")

func validateConfig(config *Config) error {
	if config.ResyncFrequency < 1*time.Second {
		return reconciler.ErrInvalidResyncFrequency
	}
	if config.MaxWorkers < 1 {
		return reconciler.ErrInvalidMaxWorkers
	}
	if config.RunMaxItems < 1 {
		return reconciler.ErrInvalidRunMaxItems
	}
	if config.ResyncMaxItems < 1 {
		return ErrInvalidResyncMaxItems
	}
	return nil
}
