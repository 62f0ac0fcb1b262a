package models

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// CreateExperimentRequest is the body of POST /experiments.
type CreateExperimentRequest struct {
	// Required. One of pir, competencias, desempenho, pdi.
	TargetModule *string `json:"target_module"`
	Name         string  `json:"name,omitempty"`
	Description  string  `json:"description,omitempty"`
	// Required. Id of the administrator creating the experiment.
	CreatedBy *int64 `json:"created_by"`
}

func (m *CreateExperimentRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("target_module", "body", m.TargetModule); err != nil {
		res = append(res, err)
	} else if err := validate.EnumCase("target_module", "body", *m.TargetModule, TargetModuleEnum, true); err != nil {
		res = append(res, err)
	}
	if err := validate.MaxLength("name", "body", m.Name, 255); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("created_by", "body", m.CreatedBy); err != nil {
		res = append(res, err)
	} else if err := validate.MinimumInt("created_by", "body", *m.CreatedBy, 1, false); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *CreateExperimentRequest) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *CreateExperimentRequest) UnmarshalBinary(b []byte) error {
	var res CreateExperimentRequest
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

type CreateExperimentResponse struct {
	ExperimentID       int64 `json:"experiment_id"`
	ControlVariantID   int64 `json:"control_variant_id"`
	TreatmentVariantID int64 `json:"treatment_variant_id"`
}

// CompleteExperimentRequest is the optional body of POST /experiments/{id}/complete.
type CompleteExperimentRequest struct {
	WinnerVariantID *int64 `json:"winner_variant_id,omitempty"`
}

func (m *CompleteExperimentRequest) Validate(formats strfmt.Registry) error {
	if m.WinnerVariantID == nil {
		return nil
	}
	if err := validate.MinimumInt("winner_variant_id", "body", *m.WinnerVariantID, 1, false); err != nil {
		return errors.CompositeValidationError(err)
	}
	return nil
}

type Experiment struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	TargetModule      string           `json:"target_module"`
	TrafficPercentage int64            `json:"traffic_percentage"`
	StartDate         strfmt.DateTime  `json:"start_date"`
	EndDate           *strfmt.DateTime `json:"end_date,omitempty"`
	CreatedBy         int64            `json:"created_by"`
	Status            string           `json:"status"`
	WinnerVariantID   *int64           `json:"winner_variant_id,omitempty"`
	CreatedAt         strfmt.DateTime  `json:"created_at"`
}

type ExperimentSummary struct {
	Experiment
	VariantCount   int64 `json:"variant_count"`
	Participants   int64 `json:"participants"`
	Completions    int64 `json:"completions"`
	ConversionRate int64 `json:"conversion_rate"`
}

type Variant struct {
	ID            int64       `json:"id"`
	ExperimentID  int64       `json:"experiment_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	IsControl     bool        `json:"is_control"`
	TrafficWeight int64       `json:"traffic_weight"`
	Config        interface{} `json:"config"`
}

type ExperimentDetails struct {
	Experiment *Experiment        `json:"experiment"`
	Variants   []*Variant         `json:"variants"`
	Metrics    *ExperimentMetrics `json:"metrics"`
}
