package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/avdrh/abtest/internal/db"
	"github.com/avdrh/abtest/internal/experiments"
	"github.com/avdrh/abtest/internal/telemetry"
	"github.com/avdrh/abtest/pkg/app"
	"github.com/avdrh/abtest/pkg/reconciler"
	ltime "github.com/avdrh/abtest/pkg/time"
)

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type state struct {
	store      *db.MemoryDatabase
	engine     *experiments.Engine
	reconciler *Reconciler
	config     *Config
	queue      *reconciler.ReconcileQueue[int64]
	// active holds the experiment each module should have active.
	active map[db.TargetModule]int64
}

var statuses = []db.ExperimentStatus{db.StatusDraft, db.StatusActive, db.StatusPaused, db.StatusCompleted}

func newTestState(t *rapid.T) *state {
	store := db.NewMemoryDatabase()
	engine := experiments.NewEngine(store, &ltime.TestingWatch{Current: testNow}, telemetry.NewMetrics())
	config := &Config{
		Enabled:         true,
		ResyncFrequency: time.Minute,
		ResyncMaxItems:  rapid.IntRange(1, 6).Draw(t, "resyncMaxItems"),
		MaxWorkers:      1,
		RunMaxItems:     1,
	}
	s := &state{
		store:      store,
		engine:     engine,
		reconciler: NewReconciler(config, store, engine),
		config:     config,
		queue:      reconciler.NewReconcileQueue[int64](),
		active:     make(map[db.TargetModule]int64),
	}

	ctx := context.Background()
	for i := range rapid.IntRange(0, 8).Draw(t, "experiments") {
		module := rapid.SampledFrom(db.TargetModules).Draw(t, "module")
		status := rapid.SampledFrom(statuses).Draw(t, "status")
		created, err := engine.CreateExperiment(ctx, experiments.CreateRequest{TargetModule: module, CreatedBy: int64(i + 1)})
		if err != nil {
			t.Fatalf("failed to create experiment: %v", err)
		}
		id := created.ExperimentId
		if status == db.StatusDraft {
			continue
		}
		if err := engine.ActivateExperiment(ctx, id); err != nil {
			t.Fatalf("failed to activate %d: %v", id, err)
		}
		s.active[module] = id
		switch status {
		case db.StatusPaused:
			err = engine.PauseExperiment(ctx, id)
			delete(s.active, module)
		case db.StatusCompleted:
			err = engine.CompleteExperiment(ctx, id, nil)
			delete(s.active, module)
		}
		if err != nil {
			t.Fatalf("failed to move %d to %s: %v", id, status, err)
		}
	}
	return s
}

func TestReconcilerResync(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newTestState(rt)
		defer s.queue.Shutdown()

		s.reconciler.Resync(context.Background(), s.queue)

		target := min(len(s.active), s.config.ResyncMaxItems)
		// Property: every queued id is the active experiment of its module, up to the resync limit
		assert.Equal(rt, target, s.queue.Len())
		for id := range s.queue.Pending {
			experiment, err := s.store.Experiments().GetExperiment(context.Background(), id)
			require.NoError(rt, err)
			assert.Equal(rt, db.StatusActive, experiment.Status)
			assert.Equal(rt, s.active[experiment.TargetModule], id)
		}
	})
}

func TestReconcilerReconcile(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newTestState(rt)
		defer s.queue.Shutdown()
		ctx := context.Background()

		s.reconciler.Resync(ctx, s.queue)
		pending := s.queue.Len()
		if pending == 0 {
			return
		}
		items := s.queue.Pop(pending)
		s.reconciler.Reconcile(ctx, items)

		// Property: every reconciled experiment has a snapshot and can be queued again
		for _, item := range items {
			result, err := s.store.Results().GetResult(ctx, item.ID)
			require.NoError(rt, err)
			assert.Equal(rt, string(experiments.WinnerInsufficient), result.Winner)
			assert.True(rt, testNow.Equal(result.UpdatedAt))
		}
		s.reconciler.Resync(ctx, s.queue)
		assert.Equal(rt, pending, s.queue.Len())
	})
}

func TestReconcilerDisabled(t *testing.T) {
	store := db.NewMemoryDatabase()
	engine := experiments.NewEngine(store, &ltime.TestingWatch{Current: testNow}, telemetry.NewMetrics())
	created, err := engine.CreateExperiment(context.Background(), experiments.CreateRequest{TargetModule: db.ModulePir, CreatedBy: 1})
	require.NoError(t, err)
	require.NoError(t, engine.ActivateExperiment(context.Background(), created.ExperimentId))

	queue := reconciler.NewReconcileQueue[int64]()
	defer queue.Shutdown()
	NewReconciler(&Config{Enabled: false}, store, engine).Resync(context.Background(), queue)
	assert.Equal(t, 0, queue.Len())
}

func TestReconcileFailureIsRetried(t *testing.T) {
	store := db.NewMemoryDatabase()
	engine := experiments.NewEngine(store, &ltime.TestingWatch{Current: testNow}, telemetry.NewMetrics())
	created, err := engine.CreateExperiment(context.Background(), experiments.CreateRequest{TargetModule: db.ModulePdi, CreatedBy: 1})
	require.NoError(t, err)
	require.NoError(t, engine.ActivateExperiment(context.Background(), created.ExperimentId))

	r := NewReconciler(&Config{Enabled: true, ResyncMaxItems: 10}, store, engine)
	queue := reconciler.NewReconcileQueue[int64]()
	defer queue.Shutdown()
	r.Resync(context.Background(), queue)
	items := queue.Pop(1)
	require.Len(t, items, 1)

	store.Err = errors.New("disk I/O error")
	r.Reconcile(context.Background(), items)
	store.Err = nil

	r.Resync(context.Background(), queue)
	assert.Equal(t, 0, queue.Len(), "the failed experiment waits for its retry")
}

func TestConfig(t *testing.T) {
	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.ResyncFrequency)

	t.Setenv("RESULTS_RECONCILER_ENABLED", "true")
	t.Setenv("RESULTS_RECONCILER_RESYNC_FREQUENCY", "30s")
	cfg, err = NewConfigFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.ResyncFrequency)

	t.Setenv("RESULTS_RECONCILER_RESYNC_FREQUENCY", "10ms")
	_, err = NewConfigFromEnv()
	assert.ErrorIs(t, err, reconciler.ErrInvalidResyncFrequency)

	t.Setenv("RESULTS_RECONCILER_RESYNC_FREQUENCY", "1m")
	t.Setenv("RESULTS_RECONCILER_RESYNC_MAX_ITEMS", "0")
	_, err = NewConfigFromEnv()
	assert.ErrorIs(t, err, ErrInvalidResyncMaxItems)
}

func TestReconcilerManager(t *testing.T) {
	manager, err := NewReconcilerManager(app.NewInstance(), &Config{ResyncFrequency: time.Minute, MaxWorkers: 1, RunMaxItems: 1},
		NewReconciler(&Config{}, db.NewMemoryDatabase(), nil))
	require.NoError(t, err)
	require.NotNil(t, manager)

	_, err = NewReconcilerManager(app.NewInstance(), &Config{}, NewReconciler(&Config{}, db.NewMemoryDatabase(), nil))
	assert.ErrorIs(t, err, reconciler.ErrInvalidResyncFrequency)
}
