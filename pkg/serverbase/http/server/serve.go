package sbhttpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/avdrh/abtest/pkg/app"
)

const shutdownTimeout = 30 * time.Second

// Serve starts listening in the background. The server drains in-flight requests when the app closes.
func (instance *Instance) Serve() error {
	if !instance.config.DisableProfiling {
		instance.registerProfileHandlers()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	instance.app.AddCloseFunc(func() error {
		ctx, cancel := app.BackgroundTimeoutContextDuration(shutdownTimeout)
		defer cancel()
		err := instance.server.Shutdown(ctx)
		wg.Wait()
		return errors.Wrap(err, "failed to shut down http server")
	})

	log.Printf("serving at port %d", instance.config.Port)
	go func() {
		defer wg.Done()
		err := instance.server.ListenAndServe()

		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("failed to run server: %s", err)
			instance.app.Stop(true)
		}
	}()

	return nil
}
