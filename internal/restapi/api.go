package restapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/avdrh/abtest/internal/config"
	"github.com/avdrh/abtest/internal/experiments"
	lhttp "github.com/avdrh/abtest/pkg/http"
	"github.com/avdrh/abtest/pkg/http/interceptors"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	sbhttpserver "github.com/avdrh/abtest/pkg/serverbase/http/server"
)

const BasePath = "/api/v1"

// API exposes the experiment engine over HTTP.
type API struct {
	engine   *experiments.Engine
	cfg      *config.Config
	formats  strfmt.Registry
	consumer runtime.Consumer
	query    *schema.Decoder
}

func NewAPI(engine *experiments.Engine, cfg *config.Config) *API {
	query := schema.NewDecoder()
	query.IgnoreUnknownKeys(true)
	return &API{
		engine:   engine,
		cfg:      cfg,
		formats:  strfmt.Default,
		consumer: runtime.JSONConsumer(),
		query:    query,
	}
}

type handlerFunc func(request *sbhttpbase.Request) (int, interface{}, *lhttp.HttpError)

// Handlers lists every route of the API. Admin routes pass through the role check first.
func (a *API) Handlers() []sbhttpserver.HandleDescription {
	admin := []sbhttpbase.RegistrableMiddleware{a.requireAdmin()}
	noStore := []sbhttpbase.RegistrableMiddleware{interceptors.InjectHeadersInterceptor(http.Header{
		"Cache-Control": {"no-store"},
	})}

	routes := []struct {
		method, path string
		handler      handlerFunc
		middleware   []sbhttpbase.RegistrableMiddleware
	}{
		{http.MethodPost, "/experiments", a.CreateExperiment, admin},
		{http.MethodGet, "/experiments", a.ListExperiments, admin},
		{http.MethodGet, "/experiments/:id", a.GetExperimentDetails, admin},
		{http.MethodGet, "/experiments/:id/metrics", a.GetExperimentMetrics, admin},
		{http.MethodGet, "/experiments/:id/comparison", a.GetComparison, admin},
		{http.MethodPost, "/experiments/:id/activate", a.ActivateExperiment, admin},
		{http.MethodPost, "/experiments/:id/pause", a.PauseExperiment, admin},
		{http.MethodPost, "/experiments/:id/complete", a.CompleteExperiment, admin},
		{http.MethodPost, "/experiments/:id/results", a.SaveResults, admin},
		{http.MethodGet, "/experiments/:id/results", a.GetResults, admin},
		{http.MethodPost, "/experiments/:id/completions", a.RecordCompletion, nil},
		{http.MethodPost, "/experiments/:id/events", a.RecordEvent, nil},
		{http.MethodGet, "/layout", a.GetLayout, noStore},
	}

	handlers := make([]sbhttpserver.HandleDescription, 0, len(routes))
	for _, route := range routes {
		handlers = append(handlers, sbhttpserver.HandleDescription{
			Path:       BasePath + route.path,
			Method:     route.method,
			Handler:    respond(route.handler),
			Middleware: route.middleware,
		})
	}
	return handlers
}

func respond(handler handlerFunc) sbhttpbase.HandleFunc {
	return func(request *sbhttpbase.Request) {
		code, payload, httpErr := handler(request)
		if httpErr != nil {
			sbhttp.ReturnHttpError(request.Writer, httpErr)
			return
		}
		if err := sbhttp.WriteJson(request.Writer, code, payload); err != nil {
			log.Warnf("failed to write response of %s %s: %s", request.Request.Method, request.PathPattern, err)
		}
	}
}

// apiError maps engine failures onto HTTP statuses. Storage failures keep their cause in the log only.
func apiError(err error) *lhttp.HttpError {
	switch {
	case errors.Is(err, experiments.ErrExperimentNotFound):
		return lhttp.NewNotFound(err.Error())
	case errors.Is(err, experiments.ErrInvalidModule), errors.Is(err, experiments.ErrInvalidEvent):
		return lhttp.NewBadRequest(err.Error())
	case errors.Is(err, experiments.ErrInvalidTransition), errors.Is(err, experiments.ErrConflict):
		return lhttp.NewConflict(err.Error())
	default:
		return &lhttp.HttpError{Code: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
}

func experimentId(request *sbhttpbase.Request) (int64, *lhttp.HttpError) {
	id, err := strconv.ParseInt(request.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, lhttp.NewBadRequest("experiment id must be a positive integer")
	}
	return id, nil
}

type validatable interface {
	Validate(formats strfmt.Registry) error
}

// readBody decodes the JSON body into v and validates it. An empty body is accepted only when optional is set.
func (a *API) readBody(request *sbhttpbase.Request, v validatable, optional bool) *lhttp.HttpError {
	err := a.consumer.Consume(request.Request.Body, v)
	switch {
	case errors.Is(err, io.EOF) && optional:
		return nil
	case errors.Is(err, io.EOF):
		return lhttp.NewBadRequest("request body is required")
	case err != nil:
		return lhttp.NewBadRequest("malformed JSON body: " + err.Error())
	}
	if err := v.Validate(a.formats); err != nil {
		return lhttp.FromError(err)
	}
	return nil
}
