package interceptors

import (
	"net/http"
	"strings"

	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// HttpServerDefaultContentTypeInterceptor sets the content type on responses whose handler left it empty.
func HttpServerDefaultContentTypeInterceptor(t string) sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		w := &wrappers.CustomizableResponseWriter{
			Response: request.Writer,
			OnWriteHeader: func(w *wrappers.CustomizableResponseWriter, code int) {
				if w.Response.Header().Get("Content-Type") == "" {
					w.Response.Header().Set("Content-Type", t)
				}
				w.Response.WriteHeader(code)
			},
		}
		next(request.WithWriter(w))
	}
}

// InjectHeadersInterceptor overrides the given headers on every response. Underscores in names become dashes.
func InjectHeadersInterceptor(headers http.Header) sbhttpbase.MiddlewareFunc {
	normalized := make(http.Header, len(headers))
	for k, v := range headers {
		normalized[strings.ReplaceAll(k, "_", "-")] = v
	}
	headers = normalized

	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		w := &wrappers.CustomizableResponseWriter{
			Response: request.Writer,
			OnWriteHeader: func(w *wrappers.CustomizableResponseWriter, code int) {
				for k, vals := range headers {
					w.Response.Header().Del(k)
					for _, v := range vals {
						w.Response.Header().Add(k, v)
					}
				}
				w.Response.WriteHeader(code)
			},
		}
		next(request.WithWriter(w))
	}
}
