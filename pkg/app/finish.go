package app

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrStoppedOnFailure = errors.New("stopped after a failure")

type CloseFunc func() error

func (instance *Instance) AddCloseFunc(fn CloseFunc) {
	instance.AddCloser(&closeWrapper{fn: fn})
}

type closeWrapper struct {
	fn CloseFunc
}

func (w *closeWrapper) Close() error {
	return w.fn()
}

func (instance *Instance) AddCloser(closer io.Closer) {
	instance.lock.Lock()
	defer instance.lock.Unlock()
	instance.closers = append(instance.closers, closer)
}

// Stop asks WaitForFinish to shut down. failed marks the run as failed. Later calls only add to failed.
func (instance *Instance) Stop(failed bool) {
	instance.lock.Lock()
	instance.failed = failed || instance.failed
	instance.lock.Unlock()
	instance.stopOnce.Do(func() {
		close(instance.stop)
	})
}

// WaitForFinish blocks until Stop or SIGINT/SIGTERM, then cancels the context and runs every closer
// concurrently. It reports the closers that failed, or ErrStoppedOnFailure after Stop(true).
func (instance *Instance) WaitForFinish() error {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigint)
	select {
	case <-sigint:
		log.Info("received shutdown signal")
	case <-instance.stop:
	}
	return instance.finish()
}

func (instance *Instance) finish() error {
	instance.cancel()

	instance.lock.Lock()
	closers := append([]io.Closer(nil), instance.closers...)
	failed := instance.failed
	instance.lock.Unlock()

	var (
		wg     sync.WaitGroup
		lock   sync.Mutex
		result *multierror.Error
	)
	wg.Add(len(closers))
	for _, closer := range closers {
		go func(closer io.Closer) {
			defer wg.Done()
			if err := closer.Close(); err != nil {
				log.Errorf("failed to close: %s", err)
				lock.Lock()
				result = multierror.Append(result, err)
				lock.Unlock()
			}
		}(closer)
	}
	wg.Wait()

	if failed {
		result = multierror.Append(result, ErrStoppedOnFailure)
	}
	return result.ErrorOrNil()
}
