package sbhttptest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"

	"pgregory.net/rapid"

	lhttptest "github.com/avdrh/abtest/pkg/http/test"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func RequestGenerator(recorder *httptest.ResponseRecorder) *rapid.Generator[*sbhttpbase.Request] {
	return rapid.Custom(func(t *rapid.T) *sbhttpbase.Request {
		body := rapid.SliceOf(rapid.Byte()).Draw(t, "body")
		return requestGeneratorHelper(t, recorder, bytes.NewBuffer(body))
	})
}

func RequestWithBodyGenerator(recorder *httptest.ResponseRecorder, body io.Reader) *rapid.Generator[*sbhttpbase.Request] {
	return rapid.Custom(func(t *rapid.T) *sbhttpbase.Request {
		return requestGeneratorHelper(t, recorder, body)
	})
}

func requestGeneratorHelper(t *rapid.T, recorder *httptest.ResponseRecorder, body io.Reader) *sbhttpbase.Request {
	request := &sbhttpbase.Request{
		PathPattern: rapid.StringMatching(`(/[a-z:]+)+`).Draw(t, "path"),
		Writer:      recorder,
		Request: httptest.NewRequest(
			lhttptest.MethodGenerator().Draw(t, "method"),
			lhttptest.UrlGenerator().Draw(t, "target"),
			body,
		),
		Params: rapid.MapOf(rapid.StringMatching(`[a-z]+`), rapid.String()).Draw(t, "params"),
	}
	request.Request.Header = lhttptest.HeadersGenerator().Draw(t, "header")
	return request
}

// HandlerGenerator draws a handler that drains the request and answers with a random code, headers and body.
func HandlerGenerator() *rapid.Generator[sbhttpbase.HandleFunc] {
	return rapid.Custom(func(t *rapid.T) sbhttpbase.HandleFunc {
		code := lhttptest.CodeGenerator().Draw(t, "code")
		headers := lhttptest.HeadersGenerator().Draw(t, "headers")
		body := rapid.SliceOf(rapid.Byte()).Draw(t, "body")

		return func(request *sbhttpbase.Request) {
			_, _ = io.Copy(io.Discard, request.Request.Body)
			_ = request.Request.Body.Close()

			writer := request.Writer
			for k, vals := range headers {
				writer.Header().Del(k)
				for _, v := range vals {
					writer.Header().Add(k, v)
				}
			}
			writer.WriteHeader(code)
			_, _ = writer.Write(body)
		}
	})
}

// OkHandler answers 200 with body after draining the request.
func OkHandler(body []byte) sbhttpbase.HandleFunc {
	return func(request *sbhttpbase.Request) {
		_, _ = io.Copy(io.Discard, request.Request.Body)
		request.Writer.WriteHeader(http.StatusOK)
		_, _ = request.Writer.Write(body)
	}
}
