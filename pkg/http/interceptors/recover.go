package interceptors

import (
	"net/http"
	"runtime/debug"

	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	log "github.com/sirupsen/logrus"
)

func HttpServerRecoverInterceptor() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"method": request.Request.Method,
					"path":   request.PathPattern,
				}).Errorf("handler panicked: %v\n%s", r, debug.Stack())
				sbhttp.ReturnError(request.Writer, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next(request)
	}
}
