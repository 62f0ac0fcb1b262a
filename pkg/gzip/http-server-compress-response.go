package lgzip

import (
	"bufio"
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

var gzipWriterPool = &sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(io.Discard)
	},
}

var bufferedWriterPool = &sync.Pool{
	New: func() interface{} {
		return bufio.NewWriter(io.Discard)
	},
}

func acceptsGzip(values []string) bool {
	for _, value := range values {
		for _, encoding := range strings.Split(value, ",") {
			// Drop any quality parameter, "gzip;q=0" included.
			name, params, _ := strings.Cut(strings.TrimSpace(encoding), ";")
			if strings.EqualFold(strings.TrimSpace(name), "gzip") {
				return strings.ReplaceAll(params, " ", "") != "q=0"
			}
		}
	}
	return false
}

// HttpServerCompressResponseInterceptor gzips the response body when the client accepts it.
func HttpServerCompressResponseInterceptor() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		if !acceptsGzip(request.Request.Header.Values("Accept-Encoding")) {
			next(request)
			return
		}

		// Don't pass the information downstream to avoid double encoding
		request.Request.Header.Del("Accept-Encoding")

		bufferedWriter := bufferedWriterPool.Get().(*bufio.Writer)
		defer bufferedWriterPool.Put(bufferedWriter)
		bufferedWriter.Reset(request.Writer)
		defer bufferedWriter.Flush()

		gzipWriter := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(gzipWriter)
		gzipWriter.Reset(bufferedWriter)
		defer gzipWriter.Close()

		request.Writer.Header().Set("Content-Encoding", "gzip")
		request.Writer.Header().Add("Vary", "Accept-Encoding")
		request.Writer.Header().Del("Content-Length")

		next(request.WithWriter(&wrappers.CustomizableResponseWriter{
			Response: request.Writer,
			Writer:   gzipWriter,
		}))
	}
}
