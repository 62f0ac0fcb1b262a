package sbhttpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dimfeld/httptreemux"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/avdrh/abtest/pkg/app"
	lconfig "github.com/avdrh/abtest/pkg/config"
	"github.com/avdrh/abtest/pkg/http/interceptors"
	interceptors_inflight "github.com/avdrh/abtest/pkg/interceptors/in-flight"
)

type Config struct {
	Port              int           `env:"SERVER_HTTP_PORT" envDefault:"3000"`
	ReadTimeout       time.Duration `env:"SERVER_HTTP_READ_TIMEOUT"  envDefault:"60s"`
	ReadHeaderTimeout time.Duration `env:"SERVER_HTTP_READ_HEADER_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"SERVER_HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout       time.Duration `env:"SERVER_HTTP_IDLE_TIMEOUT" envDefault:"60s"` // Close idle connections after 60s
	MaxHeaderBytes    int           `env:"SERVER_HTTP_MAX_HEADER_BYTES"`
	MaxBodySize       string        `env:"SERVER_HTTP_MAX_BODY_SIZE" envDefault:"1Mi"`
	DisableProfiling  bool          `env:"SERVER_HTTP_DISABLE_PROFILING"`

	maxBodySize resource.Quantity
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.parse(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) parse() error {
	if cfg.MaxBodySize == "" {
		return nil
	}
	qty, err := resource.ParseQuantity(cfg.MaxBodySize)
	if err != nil {
		return errors.Wrapf(err, "invalid SERVER_HTTP_MAX_BODY_SIZE %q", cfg.MaxBodySize)
	}
	cfg.maxBodySize = qty
	return nil
}

type Instance struct {
	app          *app.Instance
	router       *httptreemux.TreeMux
	server       *http.Server
	config       *Config
	interceptors BaseInterceptorsConfig
	limiter      *interceptors_inflight.Interceptor
}

func NewInstance(cfg *Config, app *app.Instance, limiter *interceptors_inflight.Interceptor, observer interceptors.RequestObserver) (*Instance, error) {
	if cfg.MaxBodySize != "" && cfg.maxBodySize.IsZero() {
		if err := cfg.parse(); err != nil {
			return nil, err
		}
	}

	router := httptreemux.New()
	router.RedirectTrailingSlash = false

	localServer := &http.Server{
		Handler:           router,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	base := baseDefault
	base.Observer = observer
	return &Instance{
		app:          app,
		config:       cfg,
		router:       router,
		server:       localServer,
		interceptors: base,
		limiter:      limiter,
	}, nil
}

// Handler exposes the router, mainly for tests driving it through httptest.
func (instance *Instance) Handler() http.Handler {
	return instance.router
}

func (instance *Instance) Register(server Server) error {
	instance.app.AddCloseFunc(func() error {
		err := server.Shutdown()
		return err
	})

	instance.registerStatusHandlers(server)

	if err := instance.registerHandlers(server); err != nil {
		return err
	}

	return nil
}
