package sbhttpserver

import (
	lconfig "github.com/avdrh/abtest/pkg/config"
	lgzip "github.com/avdrh/abtest/pkg/gzip"
	"github.com/avdrh/abtest/pkg/http/interceptors"
	interceptors_inflight "github.com/avdrh/abtest/pkg/interceptors/in-flight"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	"k8s.io/apimachinery/pkg/api/resource"
)

type BaseInterceptorsConfig struct {
	DisableGzipRequestDecompression bool `env:"SERVER_HTTP_DISABLE_GZIP_REQUEST"`
	DisableGzipResponseCompression  bool `env:"SERVER_HTTP_DISABLE_GZIP_RESPONSE"`
	DisableRequestLog               bool `env:"SERVER_HTTP_DISABLE_REQUEST_LOG"`
	DisableLimiter                  bool
	Observer                        interceptors.RequestObserver
}

var baseDefault BaseInterceptorsConfig

func init() {
	lconfig.MustParse(&baseDefault)
}

// GetBaseInterceptors returns the outermost middlewares, applied to every registered route before its own.
func GetBaseInterceptors(cfg BaseInterceptorsConfig, limiter *interceptors_inflight.Interceptor, maxBodySize resource.Quantity) []sbhttpbase.RegistrableMiddleware {
	ret := []sbhttpbase.RegistrableMiddleware{
		interceptors.HttpServerAccessLogInterceptor(cfg.DisableRequestLog, cfg.Observer),
	}

	if !cfg.DisableLimiter && limiter != nil {
		ret = append(ret, limiter.ToHTTP())
	}

	if !cfg.DisableGzipRequestDecompression {
		ret = append(ret, lgzip.HttpServerDecompressRequestInterceptor())
	}

	ret = append(ret, interceptors.HttpServerLimitSizeInterceptor(maxBodySize))

	if !cfg.DisableGzipResponseCompression {
		ret = append(ret, lgzip.HttpServerCompressResponseInterceptor())
	}
	return ret
}
