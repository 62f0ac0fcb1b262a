package sbhttpserver

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func statusHandler(name string, check func(ctx context.Context) error) sbhttpbase.HandleFunc {
	return func(request *sbhttpbase.Request) {
		if err := check(request.Context()); err != nil {
			log.Printf("%s request failed - %s", name, err)
			sbhttp.ReturnError(request.Writer, http.StatusServiceUnavailable, err.Error(), err)
			return
		}
		_ = sbhttp.WriteJson(request.Writer, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (instance *Instance) registerStatusHandlers(server Server) {
	instance.RegisterHandler(&HandleDescription{
		Path:    "/_status/live",
		Method:  "GET",
		Handler: statusHandler("liveness", server.Live),
	})
	instance.RegisterHandler(&HandleDescription{
		Path:    "/_status/ready",
		Method:  "GET",
		Handler: statusHandler("ready", server.Ready),
	})
}
