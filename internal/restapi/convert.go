package restapi

import (
	"strconv"

	"github.com/go-openapi/strfmt"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/models"
)

func toExperiment(e *db.Experiment) *models.Experiment {
	m := &models.Experiment{
		ID:                e.Id,
		Name:              e.Name,
		Description:       e.Description,
		TargetModule:      string(e.TargetModule),
		TrafficPercentage: int64(e.TrafficPercentage),
		StartDate:         strfmt.DateTime(e.StartDate),
		CreatedBy:         e.CreatedBy,
		Status:            string(e.Status),
		WinnerVariantID:   e.WinnerVariantId,
		CreatedAt:         strfmt.DateTime(e.CreatedAt),
	}
	if e.EndDate != nil {
		end := strfmt.DateTime(*e.EndDate)
		m.EndDate = &end
	}
	return m
}

func toVariant(v *db.Variant) *models.Variant {
	return &models.Variant{
		ID:            v.Id,
		ExperimentID:  v.ExperimentId,
		Name:          v.Name,
		Description:   v.Description,
		IsControl:     v.IsControl,
		TrafficWeight: int64(v.TrafficWeight),
		Config:        v.Config,
	}
}

func toVariantMetrics(m experiments.VariantMetrics) *models.VariantMetrics {
	return &models.VariantMetrics{
		VariantID:       m.VariantId,
		VariantName:     m.VariantName,
		IsControl:       m.IsControl,
		SampleSize:      m.SampleSize,
		Completions:     m.Completions,
		ConversionRate:  m.ConversionRate,
		AvgResponseTime: m.AvgResponseTimeSeconds,
		DropoffRate:     m.DropoffRate,
	}
}

func toMetrics(m *experiments.Metrics) *models.ExperimentMetrics {
	return &models.ExperimentMetrics{
		Control:               toVariantMetrics(m.Control),
		Treatment:             toVariantMetrics(m.Treatment),
		Winner:                string(m.Winner),
		Confidence:            m.Confidence,
		ConfidenceIsHeuristic: true,
	}
}

func toVariantComparison(c experiments.VariantComparison) *models.VariantComparison {
	steps := make(map[string]int64, len(c.StepCompletionRates))
	for step, rate := range c.StepCompletionRates {
		steps[strconv.FormatInt(step, 10)] = rate
	}
	return &models.VariantComparison{
		VariantMetrics:        *toVariantMetrics(c.VariantMetrics),
		AvgTimeOnPage:         c.AvgTimeOnPage,
		AvgTaskCompletionTime: c.AvgTaskCompletionTime,
		AvgSatisfaction:       c.AvgSatisfaction,
		ErrorRate:             c.ErrorRate,
		StepCompletionRates:   steps,
	}
}

func toComparison(c *experiments.Comparison) *models.Comparison {
	return &models.Comparison{
		Experiment:            toExperiment(c.Experiment),
		Control:               toVariantComparison(c.Control),
		Treatment:             toVariantComparison(c.Treatment),
		ConversionLift:        c.ConversionLift,
		TimeLift:              c.TimeLift,
		SatisfactionLift:      c.SatisfactionLift,
		Winner:                string(c.Winner),
		Confidence:            c.Confidence,
		ConfidenceIsHeuristic: true,
		Recommendation:        c.Recommendation,
	}
}

func toResults(r *db.Result) *models.ExperimentResults {
	return &models.ExperimentResults{
		ExperimentID:        r.ExperimentId,
		VariantASampleSize:  r.VariantASampleSize,
		VariantBSampleSize:  r.VariantBSampleSize,
		VariantAConversion:  r.VariantAConversion,
		VariantBConversion:  r.VariantBConversion,
		VariantAAvgTime:     r.VariantAAvgTime,
		VariantBAvgTime:     r.VariantBAvgTime,
		VariantADropoffRate: r.VariantADropoffRate,
		VariantBDropoffRate: r.VariantBDropoffRate,
		Winner:              r.Winner,
		Confidence:          r.Confidence,
		IsSignificant:       r.IsSignificant,
		UpdatedAt:           strfmt.DateTime(r.UpdatedAt),
	}
}

func toLayout(e *experiments.Exposure) *models.LayoutAssignment {
	return &models.LayoutAssignment{
		ExperimentID:   e.ExperimentId,
		VariantID:      e.VariantId,
		Config:         e.Config,
		IsInExperiment: e.InExperiment,
	}
}
