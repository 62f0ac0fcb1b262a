package interceptors_inflight

import (
	"context"
	lconfig "github.com/avdrh/abtest/pkg/config"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	"golang.org/x/sync/semaphore"
	"net/http"
)

// Config bounds how many requests the server handles at once. Blocking requests queue for a slot until their
// context ends; non-blocking ones are turned away with 429.
type Config struct {
	// Zero size means disabled and let everything through
	Size     uint64 `env:"INTERCEPTOR_LIMIT_INFLIGHT_SIZE" envDefault:"0"`
	Blocking bool   `env:"INTERCEPTOR_LIMIT_INFLIGHT_BLOCKING" envDefault:"true"`
}

func NewConfigFromEnv() (Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

type Interceptor struct {
	cfg Config
	sem *semaphore.Weighted
}

func NewInterceptor(cfg Config) *Interceptor {
	return &Interceptor{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.Size)),
	}
}

type checkResult struct {
	allowed bool
	err     error
	done    func()
}

func (interceptor *Interceptor) check(ctx context.Context) checkResult {
	result := checkResult{
		done: func() {},
	}
	if interceptor.cfg.Size > 0 {
		if !interceptor.cfg.Blocking {
			if !interceptor.sem.TryAcquire(1) {
				return result
			}
		} else {
			if err := interceptor.sem.Acquire(ctx, 1); err != nil {
				result.err = err
				return result
			}
		}
		result.done = func() {
			interceptor.sem.Release(1)
		}
	}
	result.allowed = true
	return result
}

func (interceptor *Interceptor) ToHTTP() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		result := interceptor.check(request.Request.Context())
		defer result.done()
		if result.err != nil {
			// The client went away while queued.
			sbhttp.ReturnError(request.Writer, http.StatusServiceUnavailable, "request abandoned while waiting", result.err)
			return
		}
		if !result.allowed {
			sbhttp.ReturnError(request.Writer, http.StatusTooManyRequests, "too many requests in flight", nil)
			return
		}
		next(request)
	}
}
