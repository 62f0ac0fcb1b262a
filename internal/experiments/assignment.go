package experiments

import (
	"context"

	"github.com/avdrh/abtest/internal/db"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	failOpenStorage   = "storage"
	failOpenNoVariant = "no_variants"
	failOpenNoWeight  = "no_weight"
	failOpenInactive  = "no_active_experiment"
)

// Exposure is the layout a subject should see. Outside an experiment it carries the baseline layout and no
// ids.
type Exposure struct {
	ExperimentId *int64
	VariantId    *int64
	Config       db.LayoutConfig
	InExperiment bool
}

func baselineExposure() *Exposure {
	return &Exposure{Config: BaselineLayout()}
}

// LayoutForSubject resolves the active experiment of module and the subject's variant within it. Only an
// unknown module is an error; storage failures and a module without an active experiment serve the baseline.
func (e *Engine) LayoutForSubject(ctx context.Context, module db.TargetModule, subjectId int64) (*Exposure, error) {
	experiment, err := e.GetActiveExperimentForModule(ctx, module)
	switch {
	case errors.Is(err, ErrInvalidModule):
		return nil, err
	case errors.Is(err, ErrExperimentNotFound):
		e.metrics.RecordFailOpen(failOpenInactive)
		return baselineExposure(), nil
	case err != nil:
		return e.failOpen(failOpenStorage, 0, subjectId, err), nil
	}

	exposure, variant := e.variantForSubject(ctx, experiment.Id, subjectId)
	if exposure.InExperiment {
		e.metrics.RecordExposure(string(module), variantRole(variant), variant.firstExposure)
	}
	return exposure, nil
}

// GetVariantConfigForSubject returns the layout of the variant bound to (experimentId, subjectId), binding one
// by weighted draw on first exposure. It never fails: anything that prevents a binding serves the baseline.
func (e *Engine) GetVariantConfigForSubject(ctx context.Context, experimentId int64, subjectId int64) *Exposure {
	exposure, _ := e.variantForSubject(ctx, experimentId, subjectId)
	return exposure
}

type servedVariant struct {
	*db.Variant
	firstExposure bool
}

func variantRole(v servedVariant) string {
	if v.Variant != nil && v.IsControl {
		return "control"
	}
	return "treatment"
}

func (e *Engine) variantForSubject(ctx context.Context, experimentId int64, subjectId int64) (*Exposure, servedVariant) {
	assignment, err := e.db.Assignments().GetAssignment(ctx, experimentId, subjectId)
	if err == nil {
		variant, err := e.db.Variants().GetVariant(ctx, assignment.VariantId)
		if err != nil {
			return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
		}
		return exposureFor(variant), servedVariant{Variant: variant}
	}
	if !errors.Is(err, db.ErrNotFound) {
		return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
	}

	variants, err := e.db.Variants().ListVariants(ctx, experimentId)
	if err != nil {
		return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
	}
	if len(variants) == 0 {
		return e.failOpen(failOpenNoVariant, experimentId, subjectId, nil), servedVariant{}
	}
	chosen := pickVariant(variants, e.intn)
	if chosen == nil {
		return e.failOpen(failOpenNoWeight, experimentId, subjectId, nil), servedVariant{}
	}

	inserted, err := e.db.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{
		ExperimentId: experimentId,
		VariantId:    chosen.Id,
		SubjectId:    subjectId,
		AssignedAt:   e.now(),
	})
	if err != nil {
		return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
	}
	if inserted {
		log.WithFields(log.Fields{
			"experiment_id": experimentId,
			"subject_id":    subjectId,
			"variant_id":    chosen.Id,
		}).Debug("assigned subject")
		return exposureFor(chosen), servedVariant{Variant: chosen, firstExposure: true}
	}

	// Another request bound the subject first; its row wins.
	assignment, err = e.db.Assignments().GetAssignment(ctx, experimentId, subjectId)
	if err != nil {
		return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
	}
	for _, variant := range variants {
		if variant.Id == assignment.VariantId {
			return exposureFor(variant), servedVariant{Variant: variant}
		}
	}
	variant, err := e.db.Variants().GetVariant(ctx, assignment.VariantId)
	if err != nil {
		return e.failOpen(failOpenStorage, experimentId, subjectId, err), servedVariant{}
	}
	return exposureFor(variant), servedVariant{Variant: variant}
}

// pickVariant walks the cumulative weights and returns the first variant whose running total exceeds a
// uniform draw in [0, total). Variants without a positive weight are never picked.
func pickVariant(variants []*db.Variant, intn func(int) int) *db.Variant {
	total := 0
	for _, variant := range variants {
		if variant.TrafficWeight > 0 {
			total += variant.TrafficWeight
		}
	}
	if total <= 0 {
		return nil
	}

	draw := intn(total)
	cumulative := 0
	for _, variant := range variants {
		if variant.TrafficWeight <= 0 {
			continue
		}
		cumulative += variant.TrafficWeight
		if draw < cumulative {
			return variant
		}
	}
	return nil
}

func exposureFor(variant *db.Variant) *Exposure {
	experimentId := variant.ExperimentId
	variantId := variant.Id
	return &Exposure{
		ExperimentId: &experimentId,
		VariantId:    &variantId,
		Config:       variant.Config,
		InExperiment: true,
	}
}

func (e *Engine) failOpen(reason string, experimentId int64, subjectId int64, err error) *Exposure {
	fields := log.Fields{
		"experiment_id": experimentId,
		"subject_id":    subjectId,
		"reason":        reason,
	}
	if err != nil {
		fields["error"] = err
	}
	log.WithFields(fields).Warn("serving baseline layout")
	e.metrics.RecordFailOpen(reason)
	return baselineExposure()
}

// RecordCompletion marks the subject's assignment completed with its response time. It never creates an
// assignment and reports false when there is none or the write fails. Repeated calls overwrite the time.
func (e *Engine) RecordCompletion(ctx context.Context, experimentId int64, subjectId int64, responseTimeSeconds int64) bool {
	ok, err := e.db.Assignments().CompleteAssignment(ctx, experimentId, subjectId, responseTimeSeconds, e.now())
	if err != nil {
		log.WithFields(log.Fields{
			"experiment_id": experimentId,
			"subject_id":    subjectId,
		}).Warnf("failed to record completion: %s", err)
		ok = false
	}
	e.metrics.RecordCompletion(ok)
	return ok
}

type EventInput struct {
	Type       db.EventType
	Value      *float64
	Label      *string
	PageUrl    *string
	StepNumber *int64
	SessionId  *string
}

// RecordEvent stores a metric event against the variant the subject is assigned to. A subject without an
// assignment is not recorded. Only a malformed event is an error.
func (e *Engine) RecordEvent(ctx context.Context, experimentId int64, subjectId int64, input EventInput) (bool, error) {
	if !input.Type.Valid() {
		return false, errors.Wrapf(ErrInvalidEvent, "unknown metric type %q", input.Type)
	}
	if input.StepNumber != nil && *input.StepNumber < 1 {
		return false, errors.Wrapf(ErrInvalidEvent, "step number %d", *input.StepNumber)
	}

	logger := log.WithFields(log.Fields{
		"experiment_id": experimentId,
		"subject_id":    subjectId,
		"metric_type":   input.Type,
	})
	assignment, err := e.db.Assignments().GetAssignment(ctx, experimentId, subjectId)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Warnf("failed to look up assignment: %s", err)
		}
		e.metrics.RecordEvent(string(input.Type), false)
		return false, nil
	}

	_, err = e.db.Events().CreateEvent(ctx, &db.Event{
		ExperimentId: experimentId,
		VariantId:    assignment.VariantId,
		SubjectId:    subjectId,
		Type:         input.Type,
		Value:        input.Value,
		Label:        input.Label,
		PageUrl:      input.PageUrl,
		StepNumber:   input.StepNumber,
		SessionId:    input.SessionId,
		CreatedAt:    e.now(),
	})
	if err != nil {
		logger.Warnf("failed to record event: %s", err)
		e.metrics.RecordEvent(string(input.Type), false)
		return false, nil
	}
	e.metrics.RecordEvent(string(input.Type), true)
	return true, nil
}
