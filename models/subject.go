package models

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// LayoutParams are the query parameters of GET /layout.
type LayoutParams struct {
	TargetModule string `schema:"target_module"`
	SubjectID    int64  `schema:"subject_id"`
}

func (m *LayoutParams) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("target_module", "query", m.TargetModule); err != nil {
		res = append(res, err)
	} else if err := validate.EnumCase("target_module", "query", m.TargetModule, TargetModuleEnum, true); err != nil {
		res = append(res, err)
	}
	if err := validate.MinimumInt("subject_id", "query", m.SubjectID, 1, false); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// LayoutAssignment is the layout a subject should render. Outside an experiment the ids are absent and
// the config is the baseline layout.
type LayoutAssignment struct {
	ExperimentID   *int64      `json:"experiment_id"`
	VariantID      *int64      `json:"variant_id"`
	Config         interface{} `json:"config"`
	IsInExperiment bool        `json:"is_in_experiment"`
}

// CompletionRequest is the body of POST /experiments/{id}/completions.
type CompletionRequest struct {
	SubjectID           *int64 `json:"subject_id"`
	ResponseTimeSeconds *int64 `json:"response_time_seconds"`
}

func (m *CompletionRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("subject_id", "body", m.SubjectID); err != nil {
		res = append(res, err)
	} else if err := validate.MinimumInt("subject_id", "body", *m.SubjectID, 1, false); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("response_time_seconds", "body", m.ResponseTimeSeconds); err != nil {
		res = append(res, err)
	} else if err := validate.MinimumInt("response_time_seconds", "body", *m.ResponseTimeSeconds, 0, false); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// EventRequest is the body of POST /experiments/{id}/events.
type EventRequest struct {
	SubjectID   *int64   `json:"subject_id"`
	MetricType  *string  `json:"metric_type"`
	MetricValue *float64 `json:"metric_value,omitempty"`
	MetricLabel *string  `json:"metric_label,omitempty"`
	PageURL     *string  `json:"page_url,omitempty"`
	StepNumber  *int64   `json:"step_number,omitempty"`
	SessionID   *string  `json:"session_id,omitempty"`
}

func (m *EventRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("subject_id", "body", m.SubjectID); err != nil {
		res = append(res, err)
	} else if err := validate.MinimumInt("subject_id", "body", *m.SubjectID, 1, false); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("metric_type", "body", m.MetricType); err != nil {
		res = append(res, err)
	} else if err := validate.EnumCase("metric_type", "body", *m.MetricType, MetricTypeEnum, true); err != nil {
		res = append(res, err)
	}
	if m.StepNumber != nil {
		if err := validate.MinimumInt("step_number", "body", *m.StepNumber, 1, false); err != nil {
			res = append(res, err)
		}
	}
	if m.PageURL != nil && *m.PageURL != "" {
		if err := validate.FormatOf("page_url", "body", "uri", *m.PageURL, formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *EventRequest) UnmarshalBinary(b []byte) error {
	var res EventRequest
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// Recorded answers writes that may legitimately not happen, such as a completion for an unassigned subject.
type Recorded struct {
	Recorded bool `json:"recorded"`
}
