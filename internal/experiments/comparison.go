package experiments

import (
	"context"
	"fmt"
	"math"

	"github.com/avdrh/abtest/internal/db"
	log "github.com/sirupsen/logrus"
)

const trackedSteps = 5

type VariantComparison struct {
	VariantMetrics
	AvgTimeOnPage         int64
	AvgTaskCompletionTime int64
	// AvgSatisfaction keeps one decimal.
	AvgSatisfaction float64
	// ErrorRate is errors per hundred subjects.
	ErrorRate int64
	// StepCompletionRates maps steps 1 to 5 to the percentage of subjects that reported completing them.
	StepCompletionRates map[int64]int64
}

type Comparison struct {
	Experiment *db.Experiment
	Control    VariantComparison
	Treatment  VariantComparison
	// Lifts are whole percentages relative to the control; 0 when the control value is 0.
	ConversionLift   int64
	TimeLift         int64
	SatisfactionLift int64
	Winner           Winner
	Confidence       int64
	Recommendation   string
}

func newVariantComparison(m VariantMetrics, stats *db.EventStats) VariantComparison {
	c := VariantComparison{
		VariantMetrics:      m,
		StepCompletionRates: make(map[int64]int64, trackedSteps),
	}
	for step := int64(1); step <= trackedSteps; step++ {
		c.StepCompletionRates[step] = 0
	}
	if stats == nil {
		return c
	}
	c.AvgTimeOnPage = round(stats.AvgTimeOnPage)
	c.AvgTaskCompletionTime = round(stats.AvgTaskCompletionTime)
	c.AvgSatisfaction = math.Floor(stats.AvgSatisfaction*10+0.5) / 10
	if m.SampleSize > 0 {
		c.ErrorRate = round(stats.TotalErrors / float64(m.SampleSize) * 100)
	}
	for step := int64(1); step <= trackedSteps; step++ {
		c.StepCompletionRates[step] = percentage(stats.StepCompletions[step], m.SampleSize)
	}
	return c
}

// lift is the relative gain of better over base in whole percent, 0 when base is not positive.
func lift(base, better float64) int64 {
	if base <= 0 {
		return 0
	}
	return round((better - base) / base * 100)
}

// timeLift compares average task completion times and is positive when the treatment completes faster.
func timeLift(control, treatment float64) int64 {
	if control <= 0 {
		return 0
	}
	return round((control - treatment) / control * 100)
}

func recommendation(winner Winner, confidence int64, totalSamples int64) string {
	switch winner {
	case WinnerControl:
		return "Variant A (control) performs better overall. Consider keeping the current layout."
	case WinnerTreatment:
		return "Variant B performs better. Consider rolling out the new layout."
	case WinnerTie:
		return "No meaningful difference between the variants. Weigh other factors before deciding."
	}
	if totalSamples < minimumSamples {
		return "Not enough data for a conclusion. Keep collecting data."
	}
	return fmt.Sprintf("Confidence of %d%% is still low. Keep collecting data.", confidence)
}

// CompareVariants extends the metrics with event-derived figures, lifts of the treatment over the control
// and a recommendation.
func (e *Engine) CompareVariants(ctx context.Context, id int64) (*Comparison, error) {
	experiment, err := e.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics, _ := e.calculate(ctx, id)

	byVariant := make(map[int64]*db.EventStats)
	stats, err := e.db.Events().ListEventStats(ctx, id)
	if err != nil {
		log.WithField("experiment_id", id).Warnf("failed to aggregate events: %s", err)
	}
	for _, s := range stats {
		byVariant[s.VariantId] = s
	}

	control := newVariantComparison(metrics.Control, byVariant[metrics.Control.VariantId])
	treatment := newVariantComparison(metrics.Treatment, byVariant[metrics.Treatment.VariantId])
	return &Comparison{
		Experiment:       experiment,
		Control:          control,
		Treatment:        treatment,
		ConversionLift:   lift(float64(control.ConversionRate), float64(treatment.ConversionRate)),
		TimeLift:         timeLift(float64(control.AvgTaskCompletionTime), float64(treatment.AvgTaskCompletionTime)),
		SatisfactionLift: lift(control.AvgSatisfaction, treatment.AvgSatisfaction),
		Winner:           metrics.Winner,
		Confidence:       metrics.Confidence,
		Recommendation:   recommendation(metrics.Winner, metrics.Confidence, control.SampleSize+treatment.SampleSize),
	}, nil
}

// SaveResults snapshots the current metrics of an experiment into its results row.
func (e *Engine) SaveResults(ctx context.Context, id int64) (*db.Result, error) {
	experiment, err := e.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics := e.CalculateVariantMetrics(ctx, experiment.Id)

	result := &db.Result{
		ExperimentId:        experiment.Id,
		VariantASampleSize:  metrics.Control.SampleSize,
		VariantBSampleSize:  metrics.Treatment.SampleSize,
		VariantAConversion:  float64(metrics.Control.ConversionRate),
		VariantBConversion:  float64(metrics.Treatment.ConversionRate),
		VariantAAvgTime:     metrics.Control.AvgResponseTimeSeconds,
		VariantBAvgTime:     metrics.Treatment.AvgResponseTimeSeconds,
		VariantADropoffRate: float64(metrics.Control.DropoffRate),
		VariantBDropoffRate: float64(metrics.Treatment.DropoffRate),
		Winner:              string(metrics.Winner),
		Confidence:          metrics.Confidence,
		IsSignificant:       metrics.Confidence >= significantAt,
		UpdatedAt:           e.now(),
	}
	if err := e.db.Results().UpsertResult(ctx, result); err != nil {
		return nil, storageError(err, fmt.Sprintf("failed to save results of experiment %d", id))
	}
	e.metrics.RecordResultSaved(result.Winner)
	return e.GetResults(ctx, id)
}

func (e *Engine) GetResults(ctx context.Context, id int64) (*db.Result, error) {
	result, err := e.db.Results().GetResult(ctx, id)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("no results for experiment %d", id))
	}
	return result, nil
}
