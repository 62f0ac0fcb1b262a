package experiments

import (
	"context"
	"fmt"

	"github.com/avdrh/abtest/internal/db"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTrafficPercentage = 100
	defaultTrafficWeight     = 50
)

var transitions = map[db.ExperimentStatus][]db.ExperimentStatus{
	db.StatusDraft:     {db.StatusActive},
	db.StatusActive:    {db.StatusActive, db.StatusPaused, db.StatusCompleted},
	db.StatusPaused:    {db.StatusActive, db.StatusPaused, db.StatusCompleted},
	db.StatusCompleted: {},
}

// CanTransition reports whether an experiment in status from may move to status to.
func CanTransition(from, to db.ExperimentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type CreateRequest struct {
	Name         string
	Description  string
	TargetModule db.TargetModule
	CreatedBy    int64
}

type Created struct {
	ExperimentId       int64
	ControlVariantId   int64
	TreatmentVariantId int64
}

// CreateExperiment stores a draft experiment with a 50/50 control and treatment pair. Either all three rows
// are written or none are.
func (e *Engine) CreateExperiment(ctx context.Context, req CreateRequest) (*Created, error) {
	if !req.TargetModule.Valid() {
		return nil, errors.Wrapf(ErrInvalidModule, "%q", req.TargetModule)
	}
	if req.Name == "" {
		req.Name = fmt.Sprintf("Layout experiment: %s", req.TargetModule)
	}
	if req.Description == "" {
		req.Description = "Classic single-page layout versus one question per card"
	}

	now := e.now()
	created := &Created{}
	err := e.db.Transaction(ctx, func(ctx context.Context, tx db.Database) error {
		var err error
		created.ExperimentId, err = tx.Experiments().CreateExperiment(ctx, &db.Experiment{
			Name:              req.Name,
			Description:       req.Description,
			TargetModule:      req.TargetModule,
			TrafficPercentage: defaultTrafficPercentage,
			StartDate:         now,
			CreatedBy:         req.CreatedBy,
			Status:            db.StatusDraft,
			CreatedAt:         now,
		})
		if err != nil {
			return err
		}
		created.ControlVariantId, err = tx.Variants().CreateVariant(ctx, &db.Variant{
			ExperimentId:  created.ExperimentId,
			Name:          "Control (A)",
			Description:   "Current layout",
			IsControl:     true,
			TrafficWeight: defaultTrafficWeight,
			Config:        BaselineLayout(),
		})
		if err != nil {
			return err
		}
		created.TreatmentVariantId, err = tx.Variants().CreateVariant(ctx, &db.Variant{
			ExperimentId:  created.ExperimentId,
			Name:          "Cards (B)",
			Description:   "One question per card with progress and tooltips",
			IsControl:     false,
			TrafficWeight: defaultTrafficWeight,
			Config:        AlternateLayout(),
		})
		return err
	})
	if err != nil {
		return nil, storageError(err, "failed to create experiment")
	}

	log.WithFields(log.Fields{
		"experiment_id": created.ExperimentId,
		"module":        req.TargetModule,
		"created_by":    req.CreatedBy,
	}).Info("created experiment")
	return created, nil
}

// GetExperiment returns the stored experiment row without computing metrics.
func (e *Engine) GetExperiment(ctx context.Context, id int64) (*db.Experiment, error) {
	experiment, err := e.db.Experiments().GetExperiment(ctx, id)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("experiment %d", id))
	}
	return experiment, nil
}

// GetActiveExperimentForModule returns the most recently created active experiment of module.
func (e *Engine) GetActiveExperimentForModule(ctx context.Context, module db.TargetModule) (*db.Experiment, error) {
	if !module.Valid() {
		return nil, errors.Wrapf(ErrInvalidModule, "%q", module)
	}
	experiment, err := e.db.Experiments().GetActiveExperimentForModule(ctx, module)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("no active experiment for module %s", module))
	}
	return experiment, nil
}

// ActivateExperiment pauses whatever else is active in the experiment's module and activates it, in one
// transaction.
func (e *Engine) ActivateExperiment(ctx context.Context, id int64) error {
	var (
		experiment *db.Experiment
		paused     int64
	)
	err := e.db.Transaction(ctx, func(ctx context.Context, tx db.Database) error {
		var err error
		experiment, err = e.transitionable(ctx, tx, id, db.StatusActive)
		if err != nil {
			return err
		}
		paused, err = tx.Experiments().PauseActiveExperiments(ctx, experiment.TargetModule, id)
		if err != nil {
			return err
		}
		return tx.Experiments().UpdateStatus(ctx, id, db.StatusActive)
	})
	if err != nil {
		return lifecycleError(err, id)
	}

	e.metrics.RecordTransition(string(experiment.Status), string(db.StatusActive))
	for i := int64(0); i < paused; i++ {
		e.metrics.RecordTransition(string(db.StatusActive), string(db.StatusPaused))
	}
	e.metrics.SetActiveExperiment(string(experiment.TargetModule), id)
	log.WithFields(log.Fields{
		"experiment_id": id,
		"module":        experiment.TargetModule,
		"paused_others": paused,
	}).Info("activated experiment")
	return nil
}

func (e *Engine) PauseExperiment(ctx context.Context, id int64) error {
	var experiment *db.Experiment
	err := e.db.Transaction(ctx, func(ctx context.Context, tx db.Database) error {
		var err error
		experiment, err = e.transitionable(ctx, tx, id, db.StatusPaused)
		if err != nil {
			return err
		}
		return tx.Experiments().UpdateStatus(ctx, id, db.StatusPaused)
	})
	if err != nil {
		return lifecycleError(err, id)
	}

	e.metrics.RecordTransition(string(experiment.Status), string(db.StatusPaused))
	if experiment.Status == db.StatusActive {
		e.metrics.SetActiveExperiment(string(experiment.TargetModule), 0)
	}
	log.WithField("experiment_id", id).Info("paused experiment")
	return nil
}

// CompleteExperiment ends the experiment and records the advisory winner, which is not checked against
// the computed metrics.
func (e *Engine) CompleteExperiment(ctx context.Context, id int64, winnerVariantId *int64) error {
	var experiment *db.Experiment
	err := e.db.Transaction(ctx, func(ctx context.Context, tx db.Database) error {
		var err error
		experiment, err = e.transitionable(ctx, tx, id, db.StatusCompleted)
		if err != nil {
			return err
		}
		return tx.Experiments().CompleteExperiment(ctx, id, e.now(), winnerVariantId)
	})
	if err != nil {
		return lifecycleError(err, id)
	}

	e.metrics.RecordTransition(string(experiment.Status), string(db.StatusCompleted))
	if experiment.Status == db.StatusActive {
		e.metrics.SetActiveExperiment(string(experiment.TargetModule), 0)
	}
	log.WithFields(log.Fields{
		"experiment_id":     id,
		"winner_variant_id": winnerVariantId,
	}).Info("completed experiment")
	return nil
}

func (e *Engine) transitionable(ctx context.Context, tx db.Database, id int64, to db.ExperimentStatus) (*db.Experiment, error) {
	experiment, err := tx.Experiments().GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(experiment.Status, to) {
		return nil, errors.Wrapf(ErrInvalidTransition, "experiment %d is %s, cannot become %s", id, experiment.Status, to)
	}
	return experiment, nil
}

func lifecycleError(err error, id int64) error {
	if errors.Is(err, ErrInvalidTransition) {
		return err
	}
	return storageError(err, fmt.Sprintf("experiment %d", id))
}
