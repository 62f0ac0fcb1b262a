package experiments

import (
	"context"
	"math"

	"github.com/avdrh/abtest/internal/db"
	log "github.com/sirupsen/logrus"
)

type Winner string

const (
	WinnerControl      Winner = "A"
	WinnerTreatment    Winner = "B"
	WinnerTie          Winner = "tie"
	WinnerInsufficient Winner = "insufficient_data"
)

const (
	minimumSamples      = 30
	maximumConfidence   = 95
	significantAt       = 80
	winningMarginFactor = 1.05
)

type VariantMetrics struct {
	VariantId   int64
	VariantName string
	IsControl   bool
	SampleSize  int64
	Completions int64
	// ConversionRate and DropoffRate are whole percentages.
	ConversionRate         int64
	AvgResponseTimeSeconds float64
	DropoffRate            int64
}

// Metrics compares the control and treatment of one experiment. Confidence is a heuristic score between 0 and
// 95 derived from the conversion gap and sample size; it is not a significance test.
type Metrics struct {
	Control    VariantMetrics
	Treatment  VariantMetrics
	Winner     Winner
	Confidence int64
}

func emptyMetrics() *Metrics {
	return &Metrics{Winner: WinnerInsufficient}
}

// round rounds half up, matching the rounding the dashboards were calibrated with.
func round(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

func percentage(part, whole int64) int64 {
	if whole <= 0 {
		return 0
	}
	return round(float64(part) / float64(whole) * 100)
}

func newVariantMetrics(variant *db.Variant, stats *db.VariantStats) VariantMetrics {
	m := VariantMetrics{
		VariantId:   variant.Id,
		VariantName: variant.Name,
		IsControl:   variant.IsControl,
	}
	if stats == nil {
		return m
	}
	m.SampleSize = stats.SampleSize
	m.Completions = stats.Completions
	m.ConversionRate = percentage(stats.Completions, stats.SampleSize)
	m.DropoffRate = percentage(stats.SampleSize-stats.Completions, stats.SampleSize)
	if stats.AvgResponseTimeSeconds != nil {
		m.AvgResponseTimeSeconds = *stats.AvgResponseTimeSeconds
	}
	return m
}

// decide applies the minimum-sample gate, the confidence heuristic and the 5% margin rule.
func decide(control, treatment VariantMetrics) (Winner, int64) {
	total := control.SampleSize + treatment.SampleSize
	if total < minimumSamples {
		return WinnerInsufficient, 0
	}

	diff := math.Abs(float64(control.ConversionRate - treatment.ConversionRate))
	confidence := min(maximumConfidence, round(diff*2+float64(total)/10))
	if confidence < significantAt {
		return WinnerInsufficient, confidence
	}

	switch {
	case float64(treatment.ConversionRate) > float64(control.ConversionRate)*winningMarginFactor:
		return WinnerTreatment, confidence
	case float64(control.ConversionRate) > float64(treatment.ConversionRate)*winningMarginFactor:
		return WinnerControl, confidence
	default:
		return WinnerTie, confidence
	}
}

func splitVariants(variants []*db.Variant) (control *db.Variant, treatment *db.Variant) {
	for _, variant := range variants {
		if variant.IsControl && control == nil {
			control = variant
		}
		if !variant.IsControl && treatment == nil {
			treatment = variant
		}
	}
	return control, treatment
}

// CalculateVariantMetrics computes the comparison for an experiment. Missing variants or storage failures
// yield empty metrics with an insufficient_data verdict.
func (e *Engine) CalculateVariantMetrics(ctx context.Context, experimentId int64) *Metrics {
	metrics, _ := e.calculate(ctx, experimentId)
	return metrics
}

func (e *Engine) calculate(ctx context.Context, experimentId int64) (*Metrics, []*db.Variant) {
	logger := log.WithField("experiment_id", experimentId)
	variants, err := e.db.Variants().ListVariants(ctx, experimentId)
	if err != nil {
		logger.Warnf("failed to list variants: %s", err)
		return emptyMetrics(), nil
	}
	control, treatment := splitVariants(variants)
	if control == nil || treatment == nil {
		return emptyMetrics(), variants
	}

	stats, err := e.db.Assignments().ListVariantStats(ctx, experimentId)
	if err != nil {
		logger.Warnf("failed to aggregate assignments: %s", err)
		return emptyMetrics(), variants
	}
	byVariant := make(map[int64]*db.VariantStats, len(stats))
	for _, s := range stats {
		byVariant[s.VariantId] = s
	}

	metrics := &Metrics{
		Control:   newVariantMetrics(control, byVariant[control.Id]),
		Treatment: newVariantMetrics(treatment, byVariant[treatment.Id]),
	}
	metrics.Winner, metrics.Confidence = decide(metrics.Control, metrics.Treatment)
	return metrics, variants
}

type Summary struct {
	db.ExperimentSummary
	ConversionRate int64
}

// ListExperiments returns every experiment, newest first, with participation counts. A storage failure
// yields an empty list.
func (e *Engine) ListExperiments(ctx context.Context) []*Summary {
	summaries, err := e.db.Experiments().ListExperimentSummaries(ctx)
	if err != nil {
		log.Warnf("failed to list experiments: %s", err)
		return []*Summary{}
	}
	response := make([]*Summary, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, &Summary{
			ExperimentSummary: *s,
			ConversionRate:    percentage(s.Completions, s.Participants),
		})
	}
	return response
}

type Details struct {
	Experiment *db.Experiment
	Variants   []*db.Variant
	Metrics    *Metrics
}

func (e *Engine) GetExperimentDetails(ctx context.Context, id int64) (*Details, error) {
	experiment, err := e.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics, variants := e.calculate(ctx, id)
	if variants == nil {
		variants = []*db.Variant{}
	}
	return &Details{
		Experiment: experiment,
		Variants:   variants,
		Metrics:    metrics,
	}, nil
}
