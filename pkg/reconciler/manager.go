package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Config sets how often the reconciler resyncs and how many workers reconcile in parallel, each taking up to
// RunMaxItems ids per call.
type Config struct {
	ResyncFrequency time.Duration
	MaxWorkers      int
	RunMaxItems     int
}

var (
	ErrInvalidResyncFrequency = errors.New("invalid resync frequency")
	ErrInvalidMaxWorkers      = errors.New("invalid max workers")
	ErrInvalidRunMaxItems     = errors.New("invalid run max items")
)

func NewConfig(resyncFrequency time.Duration, maxWorkers, runMaxItems int) (*Config, error) {
	switch {
	case resyncFrequency < time.Millisecond:
		return nil, ErrInvalidResyncFrequency
	case maxWorkers < 1:
		return nil, ErrInvalidMaxWorkers
	case runMaxItems < 1:
		return nil, ErrInvalidRunMaxItems
	}
	return &Config{ResyncFrequency: resyncFrequency, MaxWorkers: maxWorkers, RunMaxItems: runMaxItems}, nil
}

var workerKey = attribute.Key("reconciler.worker")

// Manager drives a Reconciler: one loop queues ids on every resync and MaxWorkers goroutines drain the queue.
type Manager[T Key] struct {
	reconciler Reconciler[T]
	config     *Config
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	queue      *ReconcileQueue[T]
	tracer     trace.Tracer
}

// NewManager reboots the reconciler before returning. The manager stops when ctx ends or Finish is called.
func NewManager[T Key](ctx context.Context, cfg *Config, reconciler Reconciler[T]) *Manager[T] {
	if reconciler == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Manager[T]{
		reconciler: reconciler,
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		queue:      NewReconcileQueue[T](),
		tracer:     otel.Tracer("reconciler_" + reconciler.Name()),
	}
	context.AfterFunc(ctx, m.queue.Shutdown)
	m.traced("Reboot", reconciler.Reboot)
	return m
}

func (m *Manager[T]) traced(phase string, fn func(ctx context.Context), attrs ...attribute.KeyValue) {
	ctx, span := m.tracer.Start(m.ctx, m.reconciler.Name()+"."+phase,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	fn(ctx)
}

func (m *Manager[T]) resync(ctx context.Context) {
	m.reconciler.Resync(ctx, m.queue)
}

func (m *Manager[T]) Start() {
	m.wg.Add(1 + m.config.MaxWorkers)
	go m.resyncLoop()
	for i := 0; i < m.config.MaxWorkers; i++ {
		go m.work(i)
	}
}

func (m *Manager[T]) resyncLoop() {
	defer m.wg.Done()
	m.traced("Resync", m.resync)

	ticker := time.NewTicker(m.config.ResyncFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.traced("Resync", m.resync)
		case <-m.ctx.Done():
			log.Debugf("reconciler %s resync loop shutting down", m.reconciler.Name())
			return
		}
	}
}

// work reconciles batches until the manager stops.
func (m *Manager[T]) work(worker int) {
	defer m.wg.Done()
	for {
		items := m.queue.Pop(m.config.RunMaxItems)
		if len(items) == 0 || m.ctx.Err() != nil {
			log.Debugf("reconciler %s worker %d shutting down", m.reconciler.Name(), worker)
			return
		}
		m.traced("Reconcile", func(ctx context.Context) {
			m.reconciler.Reconcile(ctx, items)
		}, workerKey.Int(worker))
	}
}

// Finish stops the resync loop and the workers, waiting for running reconciles to return.
func (m *Manager[T]) Finish() {
	m.queue.Shutdown()
	m.cancel()
	m.wg.Wait()
}
