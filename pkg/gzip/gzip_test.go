package lgzip

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func compress(t require.TestingT, data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOf(rapid.Byte()).Draw(t, "payload")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/experiments/1/events", bytes.NewReader(compress(t, payload)))
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("Accept-Encoding", "deflate, gzip;q=0.8")
		recorder := httptest.NewRecorder()

		echo := func(request *sbhttpbase.Request) {
			data, err := io.ReadAll(request.Request.Body)
			assert.NoError(t, err)
			request.Writer.WriteHeader(http.StatusOK)
			_, err = request.Writer.Write(data)
			assert.NoError(t, err)
		}
		HttpServerDecompressRequestInterceptor()(&sbhttpbase.Request{Writer: recorder, Request: req}, func(request *sbhttpbase.Request) {
			HttpServerCompressResponseInterceptor()(request, echo)
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(recorder.Body)
		if err != nil {
			t.Fatalf("response is not gzip: %s", err)
		}
		data, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, len(payload), len(data))
		assert.True(t, bytes.Equal(payload, data))
	})
}

func TestPlainRequestsPassThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/layout", nil)
	recorder := httptest.NewRecorder()
	HttpServerCompressResponseInterceptor()(&sbhttpbase.Request{Writer: recorder, Request: req}, func(request *sbhttpbase.Request) {
		request.Writer.WriteHeader(http.StatusOK)
		_, _ = request.Writer.Write([]byte("{}"))
	})
	assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	assert.Equal(t, "{}", recorder.Body.String())
}

func TestCorruptRequestIsRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/experiments", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()
	called := false
	HttpServerDecompressRequestInterceptor()(&sbhttpbase.Request{Writer: recorder, Request: req}, func(*sbhttpbase.Request) {
		called = true
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAcceptsGzip(t *testing.T) {
	assert.True(t, acceptsGzip([]string{"gzip"}))
	assert.True(t, acceptsGzip([]string{"br", "deflate, GZIP"}))
	assert.False(t, acceptsGzip([]string{"gzip;q=0"}))
	assert.False(t, acceptsGzip(nil))
}
