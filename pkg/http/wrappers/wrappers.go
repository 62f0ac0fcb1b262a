package wrappers

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Request swaps the body reader while still closing the original body.
type Request struct {
	Original io.ReadCloser
	Reader   io.Reader
}

func (r *Request) Read(p []byte) (int, error) {
	return r.Reader.Read(p)
}

func (r *Request) Close() error {
	if err := r.Original.Close(); err != nil {
		return err
	}
	if reader, ok := r.Reader.(io.ReadCloser); ok {
		return reader.Close()
	}
	return nil
}

// CustomizableResponseWriter records the status code and lets interceptors hook header and body writes.
// Unset hooks fall through to Writer, then Response.
type CustomizableResponseWriter struct {
	Response      http.ResponseWriter
	Writer        io.Writer
	Code          int
	Written       int64
	OnWriteHeader func(w *CustomizableResponseWriter, code int)
	OnWrite       func(w *CustomizableResponseWriter, p []byte) (int, error)
}

func (w *CustomizableResponseWriter) Header() http.Header {
	if w.Response != nil {
		return w.Response.Header()
	}
	return http.Header{}
}

func (w *CustomizableResponseWriter) Write(p []byte) (n int, err error) {
	defer func() { w.Written += int64(n) }()
	if w.OnWrite != nil {
		return w.OnWrite(w, p)
	}
	if w.Code == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if w.Writer != nil {
		return w.Writer.Write(p)
	}
	if w.Response != nil {
		return w.Response.Write(p)
	}
	return 0, errors.New("no writer defined")
}

func (w *CustomizableResponseWriter) WriteHeader(code int) {
	if w.Code != 0 {
		return
	}
	w.Code = code
	if w.OnWriteHeader != nil {
		w.OnWriteHeader(w, code)
		return
	}
	if w.Response != nil {
		w.Response.WriteHeader(code)
	}
}

// Status is the code written so far, 200 when the handler wrote a body without one.
func (w *CustomizableResponseWriter) Status() int {
	if w.Code == 0 {
		return http.StatusOK
	}
	return w.Code
}
