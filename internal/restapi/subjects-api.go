package restapi

import (
	"net/http"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/models"
	lhttp "github.com/avdrh/abtest/pkg/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// GetLayout serves the layout of the subject in the module's active experiment, or the baseline.
func (a *API) GetLayout(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	var params models.LayoutParams
	if err := a.query.Decode(&params, request.Request.URL.Query()); err != nil {
		return 0, nil, lhttp.NewBadRequest("invalid query: " + err.Error())
	}
	if err := params.Validate(a.formats); err != nil {
		return 0, nil, lhttp.FromError(err)
	}
	exposure, err := a.engine.LayoutForSubject(request.Context(), db.TargetModule(params.TargetModule), params.SubjectID)
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, toLayout(exposure), nil
}

func (a *API) RecordCompletion(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	var body models.CompletionRequest
	if err := a.readBody(request, &body, false); err != nil {
		return 0, nil, err
	}
	recorded := a.engine.RecordCompletion(request.Context(), id, *body.SubjectID, *body.ResponseTimeSeconds)
	return http.StatusOK, &models.Recorded{Recorded: recorded}, nil
}

func (a *API) RecordEvent(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	var body models.EventRequest
	if err := a.readBody(request, &body, false); err != nil {
		return 0, nil, err
	}
	recorded, err := a.engine.RecordEvent(request.Context(), id, *body.SubjectID, experiments.EventInput{
		Type:       db.EventType(*body.MetricType),
		Value:      body.MetricValue,
		Label:      body.MetricLabel,
		PageUrl:    body.PageURL,
		StepNumber: body.StepNumber,
		SessionId:  body.SessionID,
	})
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, &models.Recorded{Recorded: recorded}, nil
}
