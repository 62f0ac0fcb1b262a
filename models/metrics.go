package models

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

type VariantMetrics struct {
	VariantID       int64   `json:"variant_id"`
	VariantName     string  `json:"variant_name"`
	IsControl       bool    `json:"is_control"`
	SampleSize      int64   `json:"sample_size"`
	Completions     int64   `json:"completions"`
	ConversionRate  int64   `json:"conversion_rate"`
	AvgResponseTime float64 `json:"avg_response_time"`
	DropoffRate     int64   `json:"dropoff_rate"`
}

// ExperimentMetrics compares control (A) and treatment (B). Confidence is a heuristic score, not a
// statistical test, which ConfidenceIsHeuristic states for API consumers.
type ExperimentMetrics struct {
	Control               *VariantMetrics `json:"control"`
	Treatment             *VariantMetrics `json:"treatment"`
	Winner                string          `json:"winner"`
	Confidence            int64           `json:"confidence"`
	ConfidenceIsHeuristic bool            `json:"confidence_is_heuristic"`
}

func (m *ExperimentMetrics) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

type VariantComparison struct {
	VariantMetrics
	AvgTimeOnPage         int64   `json:"avg_time_on_page"`
	AvgTaskCompletionTime int64   `json:"avg_task_completion_time"`
	AvgSatisfaction       float64 `json:"avg_satisfaction"`
	ErrorRate             int64   `json:"error_rate"`
	// Keyed by step number, "1" to "5".
	StepCompletionRates map[string]int64 `json:"step_completion_rates"`
}

type Comparison struct {
	Experiment            *Experiment        `json:"experiment"`
	Control               *VariantComparison `json:"control"`
	Treatment             *VariantComparison `json:"treatment"`
	ConversionLift        int64              `json:"conversion_lift"`
	TimeLift              int64              `json:"time_lift"`
	SatisfactionLift      int64              `json:"satisfaction_lift"`
	Winner                string             `json:"winner"`
	Confidence            int64              `json:"confidence"`
	ConfidenceIsHeuristic bool               `json:"confidence_is_heuristic"`
	Recommendation        string             `json:"recommendation"`
}

type ExperimentResults struct {
	ExperimentID        int64           `json:"experiment_id"`
	VariantASampleSize  int64           `json:"variant_a_sample_size"`
	VariantBSampleSize  int64           `json:"variant_b_sample_size"`
	VariantAConversion  float64         `json:"variant_a_conversion"`
	VariantBConversion  float64         `json:"variant_b_conversion"`
	VariantAAvgTime     float64         `json:"variant_a_avg_time"`
	VariantBAvgTime     float64         `json:"variant_b_avg_time"`
	VariantADropoffRate float64         `json:"variant_a_dropoff_rate"`
	VariantBDropoffRate float64         `json:"variant_b_dropoff_rate"`
	Winner              string          `json:"winner"`
	Confidence          int64           `json:"confidence"`
	IsSignificant       bool            `json:"is_significant"`
	UpdatedAt           strfmt.DateTime `json:"updated_at"`
}
