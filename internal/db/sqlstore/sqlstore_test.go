package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avdrh/abtest/internal/db"
	ltest "github.com/avdrh/abtest/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createExperiment(t require.TestingT, store db.Database, module db.TargetModule, status db.ExperimentStatus, createdAt time.Time) (int64, int64, int64) {
	ctx := context.Background()
	id, err := store.Experiments().CreateExperiment(ctx, &db.Experiment{
		Name:              "layout",
		TargetModule:      module,
		TrafficPercentage: 100,
		StartDate:         createdAt,
		CreatedBy:         7,
		Status:            status,
		CreatedAt:         createdAt,
	})
	require.NoError(t, err)
	control, err := store.Variants().CreateVariant(ctx, &db.Variant{ExperimentId: id, Name: "A", IsControl: true, TrafficWeight: 50,
		Config: db.LayoutConfig{LayoutType: db.LayoutControl}})
	require.NoError(t, err)
	treatment, err := store.Variants().CreateVariant(ctx, &db.Variant{ExperimentId: id, Name: "B", TrafficWeight: 50,
		Config: db.LayoutConfig{LayoutType: db.LayoutCards, Extra: map[string]interface{}{"font_family": "Inter"}}})
	require.NoError(t, err)
	return id, control, treatment
}

func TestExperimentsRoundTrip(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()

	id, control, treatment := createExperiment(t, store, db.ModulePir, db.StatusDraft, now)

	experiment, err := store.Experiments().GetExperiment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.ModulePir, experiment.TargetModule)
	assert.Equal(t, db.StatusDraft, experiment.Status)
	assert.Equal(t, int64(7), experiment.CreatedBy)
	assert.True(t, now.Equal(experiment.CreatedAt))
	assert.Nil(t, experiment.EndDate)
	assert.Nil(t, experiment.WinnerVariantId)

	variants, err := store.Variants().ListVariants(ctx, id)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, control, variants[0].Id)
	assert.True(t, variants[0].IsControl)
	assert.Equal(t, treatment, variants[1].Id)
	assert.Equal(t, db.LayoutCards, variants[1].Config.LayoutType)
	assert.Equal(t, "Inter", variants[1].Config.Extra["font_family"])

	_, err = store.Experiments().GetExperiment(ctx, id+100)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = store.Variants().GetVariant(ctx, treatment+100)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, store.Experiments().UpdateStatus(ctx, id+100, db.StatusActive), db.ErrNotFound)
}

func TestActiveExperimentLookupAndPause(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()

	_, err := store.Experiments().GetActiveExperimentForModule(ctx, db.ModulePdi)
	assert.ErrorIs(t, err, db.ErrNotFound)

	older, _, _ := createExperiment(t, store, db.ModulePdi, db.StatusActive, now)
	newer, _, _ := createExperiment(t, store, db.ModulePdi, db.StatusDraft, now.Add(time.Hour))

	active, err := store.Experiments().GetActiveExperimentForModule(ctx, db.ModulePdi)
	require.NoError(t, err)
	assert.Equal(t, older, active.Id)

	// the partial unique index refuses a second active experiment in the module
	err = store.Experiments().UpdateStatus(ctx, newer, db.StatusActive)
	assert.ErrorIs(t, err, db.ErrConflict)

	paused, err := store.Experiments().PauseActiveExperiments(ctx, db.ModulePdi, newer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), paused)
	require.NoError(t, store.Experiments().UpdateStatus(ctx, newer, db.StatusActive))

	active, err = store.Experiments().GetActiveExperimentForModule(ctx, db.ModulePdi)
	require.NoError(t, err)
	assert.Equal(t, newer, active.Id)

	ids, err := store.Experiments().ListExperimentIdsByStatus(ctx, db.StatusPaused, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{older}, ids)
}

func TestAssignmentsInsertIfAbsentAndStats(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()
	id, control, treatment := createExperiment(t, store, db.ModuleCompetencias, db.StatusActive, now)

	inserted, err := store.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{ExperimentId: id, VariantId: control, SubjectId: 1, AssignedAt: now})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = store.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{ExperimentId: id, VariantId: treatment, SubjectId: 1, AssignedAt: now})
	require.NoError(t, err)
	assert.False(t, inserted)

	assignment, err := store.Assignments().GetAssignment(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, control, assignment.VariantId)
	assert.False(t, assignment.Completed)

	_, err = store.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{ExperimentId: id, VariantId: control, SubjectId: 2, AssignedAt: now})
	require.NoError(t, err)

	ok, err := store.Assignments().CompleteAssignment(ctx, id, 1, 40, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Assignments().CompleteAssignment(ctx, id, 99, 40, now)
	require.NoError(t, err)
	assert.False(t, ok)

	assignment, err = store.Assignments().GetAssignment(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, assignment.Completed)
	require.NotNil(t, assignment.ResponseTimeSeconds)
	assert.Equal(t, int64(40), *assignment.ResponseTimeSeconds)
	require.NotNil(t, assignment.CompletedAt)

	stats, err := store.Assignments().ListVariantStats(ctx, id)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, control, stats[0].VariantId)
	assert.Equal(t, int64(2), stats[0].SampleSize)
	assert.Equal(t, int64(1), stats[0].Completions)
	require.NotNil(t, stats[0].AvgResponseTimeSeconds)
	assert.InDelta(t, 40.0, *stats[0].AvgResponseTimeSeconds, 1e-9)
	assert.Equal(t, treatment, stats[1].VariantId)
	assert.Zero(t, stats[1].SampleSize)
	assert.Nil(t, stats[1].AvgResponseTimeSeconds)

	summaries, err := store.Experiments().ListExperimentSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].VariantCount)
	assert.Equal(t, int64(2), summaries[0].Participants)
	assert.Equal(t, int64(1), summaries[0].Completions)
}

func TestFirstAssignmentWinsProperty(t *testing.T) {
	ltest.Check(t, func(rt *rapid.T, ft ltest.T) {
		store := NewTestingDatabase(ft)
		ctx := context.Background()
		id, control, treatment := createExperiment(rt, store, db.ModulePdi, db.StatusActive, now)

		first := map[int64]int64{}
		attempts := rapid.SliceOfN(rapid.Int64Range(1, 8), 1, 30).Draw(rt, "subjects")
		for i, subject := range attempts {
			variant := control
			if rapid.Bool().Draw(rt, "treatment") {
				variant = treatment
			}
			inserted, err := store.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{
				ExperimentId: id, VariantId: variant, SubjectId: subject, AssignedAt: now.Add(time.Duration(i) * time.Second)})
			if err != nil {
				rt.Fatalf("insert %d: %s", subject, err)
			}
			_, seen := first[subject]
			if inserted == seen {
				rt.Fatalf("subject %d inserted=%v after seen=%v", subject, inserted, seen)
			}
			if !seen {
				first[subject] = variant
			}
		}

		for subject, variant := range first {
			assignment, err := store.Assignments().GetAssignment(ctx, id, subject)
			if err != nil {
				rt.Fatalf("get %d: %s", subject, err)
			}
			if assignment.VariantId != variant {
				rt.Fatalf("subject %d moved from variant %d to %d", subject, variant, assignment.VariantId)
			}
		}
		stats, err := store.Assignments().ListVariantStats(ctx, id)
		if err != nil {
			rt.Fatalf("stats: %s", err)
		}
		var rows int64
		for _, s := range stats {
			rows += s.SampleSize
		}
		if rows != int64(len(first)) {
			rt.Fatalf("%d assignment rows for %d subjects", rows, len(first))
		}
	})
}

func TestEventStats(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()
	id, control, treatment := createExperiment(t, store, db.ModuleDesempenho, db.StatusActive, now)

	value := func(v float64) *float64 { return &v }
	step := func(s int64) *int64 { return &s }
	events := []*db.Event{
		{VariantId: control, Type: db.EventSatisfactionRating, Value: value(4)},
		{VariantId: control, Type: db.EventSatisfactionRating, Value: value(5)},
		{VariantId: control, Type: db.EventSatisfactionRating, Value: value(0)},
		{VariantId: control, Type: db.EventErrorCount, Value: value(2)},
		{VariantId: control, Type: db.EventErrorCount},
		{VariantId: control, Type: db.EventStepCompletion, StepNumber: step(1)},
		{VariantId: control, Type: db.EventStepCompletion, StepNumber: step(1)},
		{VariantId: control, Type: db.EventStepCompletion, StepNumber: step(2)},
		{VariantId: treatment, Type: db.EventTaskCompletionTime, Value: value(30)},
		{VariantId: treatment, Type: db.EventTimeOnPage, Value: value(12)},
	}
	for _, event := range events {
		event.ExperimentId = id
		event.SubjectId = 5
		event.CreatedAt = now
		_, err := store.Events().CreateEvent(ctx, event)
		require.NoError(t, err)
	}

	stats, err := store.Events().ListEventStats(ctx, id)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.InDelta(t, 4.5, stats[0].AvgSatisfaction, 1e-9)
	assert.InDelta(t, 2.0, stats[0].TotalErrors, 1e-9)
	assert.Equal(t, map[int64]int64{1: 2, 2: 1}, stats[0].StepCompletions)
	assert.InDelta(t, 30.0, stats[1].AvgTaskCompletionTime, 1e-9)
	assert.InDelta(t, 12.0, stats[1].AvgTimeOnPage, 1e-9)
}

func TestResultsUpsert(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()
	id, _, _ := createExperiment(t, store, db.ModulePir, db.StatusActive, now)

	_, err := store.Results().GetResult(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, store.Results().UpsertResult(ctx, &db.Result{ExperimentId: id, Winner: "insufficient_data", UpdatedAt: now}))
	require.NoError(t, store.Results().UpsertResult(ctx, &db.Result{ExperimentId: id, VariantASampleSize: 40, Winner: "B",
		Confidence: 90, IsSignificant: true, UpdatedAt: now.Add(time.Minute)}))

	result, err := store.Results().GetResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "B", result.Winner)
	assert.Equal(t, int64(40), result.VariantASampleSize)
	assert.True(t, result.IsSignificant)
	assert.True(t, now.Add(time.Minute).Equal(result.UpdatedAt))
}

func TestTransactionRollsBack(t *testing.T) {
	store := NewTestingDatabase(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(ctx context.Context, tx db.Database) error {
		_, err := tx.Experiments().CreateExperiment(ctx, &db.Experiment{Name: "x", TargetModule: db.ModulePir, Status: db.StatusDraft,
			StartDate: now, CreatedAt: now})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	summaries, err := store.Experiments().ListExperimentSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NoError(t, store.Ping(ctx))
}
