package restapi

import (
	"net/http"

	lhttp "github.com/avdrh/abtest/pkg/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func (a *API) SaveResults(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	result, err := a.engine.SaveResults(request.Context(), id)
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, toResults(result), nil
}

func (a *API) GetResults(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError) {
	id, httpErr := experimentId(request)
	if httpErr != nil {
		return 0, nil, httpErr
	}
	result, err := a.engine.GetResults(request.Context(), id)
	if err != nil {
		return 0, nil, apiError(err)
	}
	return http.StatusOK, toResults(result), nil
}
