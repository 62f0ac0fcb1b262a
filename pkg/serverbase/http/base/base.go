package sbhttpbase

import (
	"context"
	"io"
	"net/http"
)

type HandleFunc func(request *Request)

func HandleStdFunc(fn func(w http.ResponseWriter, r *http.Request)) HandleFunc {
	return func(request *Request) {
		fn(request.Writer, request.Request)
	}
}

func HandleStd(handler http.Handler) HandleFunc {
	return func(request *Request) {
		handler.ServeHTTP(request.Writer, request.Request)
	}
}

type MiddlewareFunc func(request *Request, next HandleFunc)

func (fn MiddlewareFunc) Register(path, method string) MiddlewareFunc {
	return fn
}

var _ RegistrableMiddleware = MiddlewareFunc(nil)

// RegistrableMiddleware builds a middleware for one route, so it can label what it observes.
type RegistrableMiddleware interface {
	Register(path, method string) MiddlewareFunc
}

// Request is what flows through the middleware chain. PathPattern is the route as registered, with
// Params holding its bound segments.
type Request struct {
	PathPattern string
	Writer      http.ResponseWriter
	Request     *http.Request
	Params      map[string]string
}

func (r *Request) Context() context.Context {
	return r.Request.Context()
}

func (r *Request) Param(name string) string {
	return r.Params[name]
}

func (r *Request) WithWriter(w http.ResponseWriter) *Request {
	newRequest := *r
	newRequest.Writer = w
	return &newRequest
}

func (r *Request) WithContext(ctx context.Context) *Request {
	newRequest := *r
	newRequest.Request = r.Request.WithContext(ctx)
	return &newRequest
}

func (r *Request) WithBody(body io.ReadCloser) *Request {
	newRequest := *r
	reqCopy := *r.Request
	reqCopy.Body = body
	newRequest.Request = &reqCopy
	return &newRequest
}
