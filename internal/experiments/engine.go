package experiments

import (
	"math/rand/v2"
	"time"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/telemetry"
	ltime "github.com/avdrh/abtest/pkg/time"
	"github.com/pkg/errors"
)

var (
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidModule      = errors.New("invalid target module")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrConflict           = errors.New("conflicting experiment state")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Engine assigns subjects to layout variants, drives the experiment lifecycle and computes comparative
// metrics. It keeps no state between calls; everything lives in the database.
type Engine struct {
	db      db.Database
	watch   ltime.Watch
	metrics *telemetry.Metrics
	// intn draws a uniform integer in [0, n).
	intn func(n int) int
}

func NewEngine(database db.Database, watch ltime.Watch, metrics *telemetry.Metrics) *Engine {
	return &Engine{
		db:      database,
		watch:   watch,
		metrics: metrics,
		intn:    rand.IntN,
	}
}

func (e *Engine) now() time.Time {
	return e.watch.Now().UTC()
}

// storageError maps store failures onto the engine sentinels.
func storageError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return errors.Wrap(ErrExperimentNotFound, msg)
	case errors.Is(err, db.ErrConflict):
		return errors.Wrapf(ErrConflict, "%s: %s", msg, err)
	default:
		return errors.Wrapf(ErrStorageUnavailable, "%s: %s", msg, err)
	}
}
