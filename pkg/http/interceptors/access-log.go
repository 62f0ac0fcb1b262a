package interceptors

import (
	"time"

	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	log "github.com/sirupsen/logrus"
)

// RequestObserver receives one call per finished request, labelled with the registered route.
type RequestObserver func(method, route string, code int, elapsed time.Duration)

type accessLog struct {
	disableLog bool
	observer   RequestObserver
}

// HttpServerAccessLogInterceptor logs every request at debug level and reports it to observer.
func HttpServerAccessLogInterceptor(disableLog bool, observer RequestObserver) sbhttpbase.RegistrableMiddleware {
	return &accessLog{disableLog: disableLog, observer: observer}
}

func (a *accessLog) Register(path, method string) sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		start := time.Now()
		w := &wrappers.CustomizableResponseWriter{Response: request.Writer}
		next(request.WithWriter(w))
		elapsed := time.Since(start)

		route := path
		if route == "" {
			route = request.PathPattern
		}
		if !a.disableLog {
			log.WithFields(log.Fields{
				"method":   request.Request.Method,
				"route":    route,
				"uri":      request.Request.RequestURI,
				"code":     w.Status(),
				"bytes":    w.Written,
				"duration": elapsed,
			}).Debug("served request")
		}
		if a.observer != nil {
			a.observer(request.Request.Method, route, w.Status(), elapsed)
		}
	}
}
