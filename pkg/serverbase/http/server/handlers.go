package sbhttpserver

import (
	"net/http"
	"strings"

	"github.com/dimfeld/httptreemux"
	log "github.com/sirupsen/logrus"

	"github.com/avdrh/abtest/pkg/http/interceptors"
	context_cancel "github.com/avdrh/abtest/pkg/interceptors/context-cancel"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func (instance *Instance) registerHandlers(server Server) error {
	instance.router.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
		sbhttp.ReturnError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path, nil)
	}
	for _, handle := range server.GetHandlers() {
		if handle.NotFound {
			log.Printf("registering not found handler")
		} else {
			log.Printf("registering handler %s %s", handle.Method, handle.Path)
		}
		instance.registerHandler(handle)
	}
	return nil
}

func (instance *Instance) middlewares(handle HandleDescription) []sbhttpbase.MiddlewareFunc {
	path, method := handle.Path, handle.Method
	if handle.NotFound {
		path, method = "*", "*"
	}

	registrable := GetBaseInterceptors(instance.interceptors, instance.limiter, instance.config.maxBodySize)
	registrable = append(registrable, handle.Middleware...)

	middleware := make([]sbhttpbase.MiddlewareFunc, 0, len(registrable)+4)
	for _, m := range registrable {
		middleware = append(middleware, m.Register(path, method))
	}
	return append(middleware,
		interceptors.HttpServerDefaultContentTypeInterceptor("application/json"),
		exhaustRequest,
		context_cancel.Interceptor{}.ToHTTP(),
		interceptors.HttpServerRecoverInterceptor(),
	)
}

func (instance *Instance) registerHandler(handle HandleDescription) {
	handler := ComposeMiddleware(instance.middlewares(handle), handle.Handler)
	instance.RegisterHandler(&HandleDescription{
		NotFound: handle.NotFound,
		Path:     handle.Path,
		Method:   handle.Method,
		Handler:  handler,
	})
}

func handleWrapper(pathPattern string, handler sbhttpbase.HandleFunc) httptreemux.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		handler(&sbhttpbase.Request{
			PathPattern: pathPattern,
			Writer:      w,
			Request:     r,
			Params:      params,
		})
	}
}

// RegisterHandler mounts a handler as is, without the base middlewares. Paths without a trailing slash
// are mounted with one too.
func (instance *Instance) RegisterHandler(handle *HandleDescription) {
	if handle.NotFound {
		handler := handle.Handler
		instance.router.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
			handler(&sbhttpbase.Request{PathPattern: "*", Writer: w, Request: r})
		}
		return
	}

	if handle.Method == "*" {
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			instance.RegisterHandler(&HandleDescription{
				Path:    handle.Path,
				Method:  method,
				Handler: handle.Handler,
			})
		}
		return
	}

	instance.router.Handle(handle.Method, handle.Path, handleWrapper(handle.Path, handle.Handler))
	if !strings.HasSuffix(handle.Path, "/") && !strings.Contains(handle.Path, "*") {
		instance.router.Handle(handle.Method, handle.Path+"/", handleWrapper(handle.Path, handle.Handler))
	}
}

func ComposeMiddleware(funcs []sbhttpbase.MiddlewareFunc, base sbhttpbase.HandleFunc) sbhttpbase.HandleFunc {
	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		if f == nil {
			continue
		}
		oldBase := base
		base = func(request *sbhttpbase.Request) {
			f(request, oldBase)
		}
	}

	return base
}
