package restapi

import (
	"context"
	"net/http"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/models"
	lhttp "github.com/avdrh/abtest/pkg/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func (a *API) CreateExperiment(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	var body models.CreateExperimentRequest
	if err := a.readBody(request, &body, false); err != nil {
		return 0, nil, err
	}
	created, err := a.engine.CreateExperiment(request.Context(), experiments.CreateRequest{
		Name:         body.Name,
		Description:  body.Description,
		TargetModule: db.TargetModule(*body.TargetModule),
		CreatedBy:    *body.CreatedBy,
	})
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusCreated, &models.CreateExperimentResponse{
		ExperimentID:       created.ExperimentId,
		ControlVariantID:   created.ControlVariantId,
		TreatmentVariantID: created.TreatmentVariantId,
	}, nil
}

func (a *API) ListExperiments(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	summaries := a.engine.ListExperiments(request.Context())
	payload := make([]*models.ExperimentSummary, 0, len(summaries))
	for _, s := range summaries {
		payload = append(payload, &models.ExperimentSummary{
			Experiment:     *toExperiment(&s.Experiment),
			VariantCount:   s.VariantCount,
			Participants:   s.Participants,
			Completions:    s.Completions,
			ConversionRate: s.ConversionRate,
		})
	}
	return http.StatusOK, payload, nil
}

func (a *API) GetExperimentDetails(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	details, err := a.engine.GetExperimentDetails(request.Context(), id)
	if err != nil {
		return 0, nil, apiError(err)
	}
	variants := make([]*models.Variant, 0, len(details.Variants))
	for _, v := range details.Variants {
		variants = append(variants, toVariant(v))
	}
	return http.StatusOK, &models.ExperimentDetails{
		Experiment: toExperiment(details.Experiment),
		Variants:   variants,
		Metrics:    toMetrics(details.Metrics),
	}, nil
}

// GetExperimentMetrics answers 200 with an insufficient_data verdict even for unknown experiments.
func (a *API) GetExperimentMetrics(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	return http.StatusOK, toMetrics(a.engine.CalculateVariantMetrics(request.Context(), id)), nil
}

func (a *API) GetComparison(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	comparison, err := a.engine.CompareVariants(request.Context(), id)
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, toComparison(comparison), nil
}

func (a *API) ActivateExperiment(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	return a.transition(request, a.engine.ActivateExperiment)
}

func (a *API) PauseExperiment(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	return a.transition(request, a.engine.PauseExperiment)
}

func (a *API) CompleteExperiment(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	var body models.CompleteExperimentRequest
	if err := a.readBody(request, &body, true); err != nil {
		return 0, nil, err
	}
	return a.transition(request, func(ctx context.Context, id int64) error {
		return a.engine.CompleteExperiment(ctx, id, body.WinnerVariantID)
	})
}

// transition applies a lifecycle change and answers with the experiment as stored afterwards.
func (a *API) transition(request *sbhttpbase.Request, apply func(ctx context.Context, id int64) error) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	if err := apply(request.Context(), id); err != nil {
		return 0, nil, apiError(err)
	}
	experiment, err := a.engine.GetExperiment(request.Context(), id)
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, toExperiment(experiment), nil
}
