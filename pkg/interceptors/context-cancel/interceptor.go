package context_cancel

import (
	"context"
	"errors"
	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// StatusClientClosedRequest replaces the status of responses whose client gave up first.
const StatusClientClosedRequest = 499

type Interceptor struct{}

func (interceptor Interceptor) ToHTTP() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		wrapper := wrappers.CustomizableResponseWriter{
			Response: request.Writer,
			OnWriteHeader: func(w *wrappers.CustomizableResponseWriter, code int) {
				if err := request.Request.Context().Err(); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						code = StatusClientClosedRequest
					}
				}
				w.Response.WriteHeader(code)
			},
		}

		next(request.WithWriter(&wrapper))
	}
}
