package results

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/pkg/app"
	"github.com/avdrh/abtest/pkg/reconciler"
)

// Reconciler keeps the results snapshot of every active experiment current.
type Reconciler struct {
	config *Config
	db     db.Database
	engine *experiments.Engine
}

func NewReconciler(config *Config, database db.Database, engine *experiments.Engine) *Reconciler {
	return &Reconciler{
		config: config,
		db:     database,
		engine: engine,
	}
}

func (r *Reconciler) Name() string {
	return "results-reconciler"
}

func (r *Reconciler) Reboot(_ context.Context) {}

// Resync queues the active experiments, up to ResyncMaxItems of them.
func (r *Reconciler) Resync(ctx context.Context, queue *reconciler.ReconcileQueue[int64]) {
	if !r.config.Enabled {
		return
	}
	log.Debugln("beginning results reconciler resync")

	ids, err := r.db.Experiments().ListExperimentIdsByStatus(ctx, db.StatusActive, int64(r.config.ResyncMaxItems))
	if err != nil {
		log.Warnf("failed to list active experiments: %s", err)
		return
	}
	if len(ids) > 0 {
		log.Debugf("queueing %d experiments for results snapshot", len(ids))
	}
	for _, id := range ids {
		queue.Add(id)
	}
}

// Reconcile snapshots the metrics of each experiment. Failed snapshots are retried by the queue.
func (r *Reconciler) Reconcile(ctx context.Context, items []reconciler.ReconcileItem[int64]) {
	log.Debugf("reconciling results of %d experiments", len(items))
	for _, item := range items {
		result, err := r.engine.SaveResults(ctx, item.ID)
		if err != nil {
			log.WithField("experiment_id", item.ID).Warnf("failed to save results: %s", err)
		} else {
			log.WithFields(log.Fields{
				"experiment_id": item.ID,
				"winner":        result.Winner,
				"confidence":    result.Confidence,
			}).Debug("saved results")
		}
		item.Callback(err)
	}
}

func NewReconcilerManager(app *app.Instance, cfg *Config, rec *Reconciler) (*reconciler.Manager[int64], error) {
	log.Println("results reconciler initializing")
	reconcilerConfig, err := reconciler.NewConfig(cfg.ResyncFrequency, cfg.MaxWorkers, cfg.RunMaxItems)
	if err != nil {
		return nil, err
	}
	return reconciler.NewManager[int64](app.Context(), reconcilerConfig, rec), nil
}
