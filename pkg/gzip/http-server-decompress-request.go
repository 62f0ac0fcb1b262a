package lgzip

import (
	"bufio"
	"compress/gzip"
	"net/http"
	"sync"

	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

var gzipReaderPool = &sync.Pool{
	New: func() interface{} {
		return &gzip.Reader{}
	},
}

var bufferedReaderPool = &sync.Pool{
	New: func() interface{} {
		return bufio.NewReader(nil)
	},
}

// HttpServerDecompressRequestInterceptor transparently inflates gzip encoded request bodies.
func HttpServerDecompressRequestInterceptor() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		if request.Request.Header.Get("Content-Encoding") != "gzip" {
			next(request)
			return
		}

		bufferedReader := bufferedReaderPool.Get().(*bufio.Reader)
		defer bufferedReaderPool.Put(bufferedReader)
		bufferedReader.Reset(request.Request.Body)

		gzipReader := gzipReaderPool.Get().(*gzip.Reader)
		defer gzipReaderPool.Put(gzipReader)
		if err := gzipReader.Reset(bufferedReader); err != nil {
			sbhttp.ReturnError(request.Writer, http.StatusBadRequest, "failed to decompress request", err)
			return
		}

		request.Request.Header.Del("Content-Encoding")
		request.Request.ContentLength = -1
		next(request.WithBody(&wrappers.Request{
			Original: request.Request.Body,
			Reader:   gzipReader,
		}))
	}
}
