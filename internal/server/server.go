package server

import (
	"context"
	_ "embed"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/restapi"
	"github.com/avdrh/abtest/internal/telemetry"
	"github.com/avdrh/abtest/pkg/http/interceptors"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	sbhttpserver "github.com/avdrh/abtest/pkg/serverbase/http/server"
	sbswagger "github.com/avdrh/abtest/pkg/serverbase/http/swagger"
)

//go:embed swagger.yaml
var swaggerYAML []byte

func NewSwaggerDocument() (*sbswagger.Document, error) {
	return sbswagger.Load(swaggerYAML)
}

// ApiServer serves the experiment API and the Prometheus endpoint.
type ApiServer struct {
	api *restapi.API
	db  db.Database
}

func NewApiServer(api *restapi.API, database db.Database) *ApiServer {
	return &ApiServer{
		api: api,
		db:  database,
	}
}

// Ready fails if we cannot ping the database in a reasonable time
func (s *ApiServer) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}

// Live doesn't do any check. Just answering the request is enough evidence we're alive
func (s *ApiServer) Live(ctx context.Context) error {
	return nil
}

func (s *ApiServer) Shutdown() error {
	return nil
}

func (s *ApiServer) GetHandlers() []sbhttpserver.HandleDescription {
	return append(s.api.Handlers(), sbhttpserver.HandleDescription{
		Path:    "/metrics",
		Method:  http.MethodGet,
		Handler: sbhttpbase.HandleStd(promhttp.Handler()),
	})
}

func NewHttpServers(apiServer *ApiServer, doc *sbswagger.Document) []sbhttpserver.Server {
	return []sbhttpserver.Server{
		sbswagger.New(doc),
		apiServer,
	}
}

// NewRequestObserver feeds served requests into the HTTP metrics.
func NewRequestObserver(metrics *telemetry.Metrics) interceptors.RequestObserver {
	return func(method, route string, code int, elapsed time.Duration) {
		metrics.RecordHTTPRequest(method, route, strconv.Itoa(code), elapsed.Seconds())
	}
}
