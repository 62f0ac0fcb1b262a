package reconcilers

import (
	"github.com/avdrh/abtest/internal/reconcilers/results"
	"github.com/avdrh/abtest/pkg/app"
	"github.com/avdrh/abtest/pkg/reconciler"
)

// ReconcilerSet owns the background reconcilers of the service.
type ReconcilerSet struct {
	ResultsReconciler *results.Reconciler

	resultsManager *reconciler.Manager[int64]
}

func NewReconcilerSet(app *app.Instance, resultsCfg *results.Config, resultsReconciler *results.Reconciler) (*ReconcilerSet, error) {
	resultsManager, err := results.NewReconcilerManager(app, resultsCfg, resultsReconciler)
	if err != nil {
		return nil, err
	}

	return &ReconcilerSet{
		ResultsReconciler: resultsReconciler,
		resultsManager:    resultsManager,
	}, nil
}

func (r *ReconcilerSet) Start() {
	r.resultsManager.Start()
}

func (r *ReconcilerSet) Finish() {
	r.resultsManager.Finish()
}
