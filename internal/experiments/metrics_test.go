package experiments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avdrh/abtest/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// seed binds subjects to variant and completes the first completions of them with responseTime.
func seed(t *testing.T, store db.Database, experimentId, variantId int64, firstSubject int64, subjects, completions int, responseTime int64) {
	ctx := context.Background()
	for i := 0; i < subjects; i++ {
		subject := firstSubject + int64(i)
		inserted, err := store.Assignments().InsertAssignmentIfAbsent(ctx, &db.Assignment{
			ExperimentId: experimentId,
			VariantId:    variantId,
			SubjectId:    subject,
			AssignedAt:   testNow,
		})
		require.NoError(t, err)
		require.True(t, inserted)
		if i < completions {
			ok, err := store.Assignments().CompleteAssignment(ctx, experimentId, subject, responseTime, testNow.Add(time.Minute))
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
}

func TestCalculateVariantMetrics(t *testing.T) {
	e, store := newSqlEngine(t)
	created := mustCreate(t, e, db.ModulePir)
	seed(t, store, created.ExperimentId, created.ControlVariantId, 1, 20, 10, 40)
	seed(t, store, created.ExperimentId, created.TreatmentVariantId, 100, 20, 15, 30)

	metrics := e.CalculateVariantMetrics(context.Background(), created.ExperimentId)
	assert.Equal(t, created.ControlVariantId, metrics.Control.VariantId)
	assert.True(t, metrics.Control.IsControl)
	assert.Equal(t, int64(20), metrics.Control.SampleSize)
	assert.Equal(t, int64(10), metrics.Control.Completions)
	assert.Equal(t, int64(50), metrics.Control.ConversionRate)
	assert.Equal(t, int64(50), metrics.Control.DropoffRate)
	assert.InDelta(t, 40, metrics.Control.AvgResponseTimeSeconds, 1e-9)

	assert.Equal(t, int64(75), metrics.Treatment.ConversionRate)
	assert.Equal(t, int64(25), metrics.Treatment.DropoffRate)
	assert.InDelta(t, 30, metrics.Treatment.AvgResponseTimeSeconds, 1e-9)

	assert.Equal(t, int64(54), metrics.Confidence)
	assert.Equal(t, WinnerInsufficient, metrics.Winner)
}

func TestCalculateVariantMetricsEmpty(t *testing.T) {
	e, store := newMemoryEngine()
	ctx := context.Background()

	metrics := e.CalculateVariantMetrics(ctx, 12345)
	assert.Equal(t, WinnerInsufficient, metrics.Winner)
	assert.Zero(t, metrics.Confidence)
	assert.Zero(t, metrics.Control.SampleSize)
	assert.Zero(t, metrics.Treatment.SampleSize)

	created := mustCreate(t, e, db.ModulePdi)
	metrics = e.CalculateVariantMetrics(ctx, created.ExperimentId)
	assert.Equal(t, WinnerInsufficient, metrics.Winner)
	assert.Zero(t, metrics.Control.ConversionRate)
	assert.Zero(t, metrics.Control.AvgResponseTimeSeconds)

	store.Err = errors.New("disk full")
	metrics = e.CalculateVariantMetrics(ctx, created.ExperimentId)
	assert.Equal(t, WinnerInsufficient, metrics.Winner)
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name                  string
		controlN, controlRate int64
		treatmentN, treatRate int64
		winner                Winner
		confidence            int64
	}{
		{"below minimum", 10, 0, 19, 100, WinnerInsufficient, 0},
		{"low confidence", 20, 50, 20, 75, WinnerInsufficient, 54},
		{"treatment wins", 400, 40, 400, 60, WinnerTreatment, 95},
		{"control wins", 400, 60, 400, 40, WinnerControl, 95},
		{"tie inside margin", 500, 60, 500, 62, WinnerTie, 95},
		{"confidence at threshold", 300, 50, 300, 60, WinnerTreatment, 80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winner, confidence := decide(
				VariantMetrics{SampleSize: tc.controlN, ConversionRate: tc.controlRate},
				VariantMetrics{SampleSize: tc.treatmentN, ConversionRate: tc.treatRate},
			)
			assert.Equal(t, tc.winner, winner)
			assert.Equal(t, tc.confidence, confidence)
		})
	}
}

func TestDecideProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		control := VariantMetrics{
			SampleSize:     rapid.Int64Range(0, 5000).Draw(rt, "controlN"),
			ConversionRate: rapid.Int64Range(0, 100).Draw(rt, "controlRate"),
		}
		treatment := VariantMetrics{
			SampleSize:     rapid.Int64Range(0, 5000).Draw(rt, "treatmentN"),
			ConversionRate: rapid.Int64Range(0, 100).Draw(rt, "treatmentRate"),
		}
		winner, confidence := decide(control, treatment)

		if confidence < 0 || confidence > maximumConfidence {
			rt.Fatalf("confidence %d out of range", confidence)
		}
		if control.SampleSize+treatment.SampleSize < minimumSamples && (winner != WinnerInsufficient || confidence != 0) {
			rt.Fatalf("small sample decided %s at %d", winner, confidence)
		}
		if confidence < significantAt && winner != WinnerInsufficient {
			rt.Fatalf("winner %s at confidence %d", winner, confidence)
		}
		if winner == WinnerTreatment && treatment.ConversionRate <= control.ConversionRate {
			rt.Fatalf("treatment won without a higher rate")
		}
		if winner == WinnerControl && control.ConversionRate <= treatment.ConversionRate {
			rt.Fatalf("control won without a higher rate")
		}

		swapped, swappedConfidence := decide(treatment, control)
		if swappedConfidence != confidence {
			rt.Fatalf("confidence depends on order: %d vs %d", confidence, swappedConfidence)
		}
		mirrored := map[Winner]Winner{WinnerControl: WinnerTreatment, WinnerTreatment: WinnerControl, WinnerTie: WinnerTie, WinnerInsufficient: WinnerInsufficient}
		if mirrored[winner] != swapped {
			rt.Fatalf("swapping variants turned %s into %s", winner, swapped)
		}
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(3), round(2.5))
	assert.Equal(t, int64(2), round(2.49))
	assert.Equal(t, int64(-2), round(-2.5))
	assert.Equal(t, int64(67), percentage(2, 3))
	assert.Equal(t, int64(0), percentage(5, 0))
}

func TestListExperimentsAndDetails(t *testing.T) {
	e, store := newMemoryEngine()
	ctx := context.Background()

	assert.Empty(t, e.ListExperiments(ctx))

	created := mustCreate(t, e, db.ModuleCompetencias)
	seed(t, store, created.ExperimentId, created.ControlVariantId, 1, 3, 2, 10)
	seed(t, store, created.ExperimentId, created.TreatmentVariantId, 10, 1, 0, 0)

	summaries := e.ListExperiments(ctx)
	require.Len(t, summaries, 1)
	assert.Equal(t, created.ExperimentId, summaries[0].Id)
	assert.Equal(t, int64(2), summaries[0].VariantCount)
	assert.Equal(t, int64(4), summaries[0].Participants)
	assert.Equal(t, int64(2), summaries[0].Completions)
	assert.Equal(t, int64(50), summaries[0].ConversionRate)

	details, err := e.GetExperimentDetails(ctx, created.ExperimentId)
	require.NoError(t, err)
	assert.Equal(t, created.ExperimentId, details.Experiment.Id)
	assert.Len(t, details.Variants, 2)
	assert.Equal(t, int64(67), details.Metrics.Control.ConversionRate)
	assert.Equal(t, WinnerInsufficient, details.Metrics.Winner)

	_, err = e.GetExperimentDetails(ctx, 999)
	assert.ErrorIs(t, err, ErrExperimentNotFound)

	store.Err = errors.New("connection reset")
	assert.Empty(t, e.ListExperiments(ctx))
	_, err = e.GetExperimentDetails(ctx, created.ExperimentId)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestCompareVariants(t *testing.T) {
	e, store := newMemoryEngine()
	ctx := context.Background()
	created := mustCreate(t, e, db.ModulePir)
	seed(t, store, created.ExperimentId, created.ControlVariantId, 1, 10, 4, 60)
	seed(t, store, created.ExperimentId, created.TreatmentVariantId, 100, 10, 6, 45)

	event := func(subject int64, input EventInput) {
		recorded, err := e.RecordEvent(ctx, created.ExperimentId, subject, input)
		require.NoError(t, err)
		require.True(t, recorded)
	}
	value := func(v float64) *float64 { return &v }
	step := func(s int64) *int64 { return &s }

	event(1, EventInput{Type: db.EventSatisfactionRating, Value: value(3)})
	event(2, EventInput{Type: db.EventSatisfactionRating, Value: value(4)})
	event(2, EventInput{Type: db.EventErrorCount, Value: value(3)})
	event(1, EventInput{Type: db.EventStepCompletion, StepNumber: step(1)})
	event(2, EventInput{Type: db.EventStepCompletion, StepNumber: step(1)})
	event(1, EventInput{Type: db.EventTimeOnPage, Value: value(120.4)})
	event(1, EventInput{Type: db.EventTaskCompletionTime, Value: value(100)})
	event(2, EventInput{Type: db.EventTaskCompletionTime, Value: value(140)})
	event(100, EventInput{Type: db.EventSatisfactionRating, Value: value(4.25)})
	event(100, EventInput{Type: db.EventStepCompletion, StepNumber: step(5)})
	event(100, EventInput{Type: db.EventTaskCompletionTime, Value: value(88.5)})

	comparison, err := e.CompareVariants(ctx, created.ExperimentId)
	require.NoError(t, err)
	assert.Equal(t, created.ExperimentId, comparison.Experiment.Id)

	assert.Equal(t, int64(40), comparison.Control.ConversionRate)
	assert.Equal(t, int64(60), comparison.Treatment.ConversionRate)
	assert.InDelta(t, 3.5, comparison.Control.AvgSatisfaction, 1e-9)
	assert.InDelta(t, 4.3, comparison.Treatment.AvgSatisfaction, 1e-9)
	assert.Equal(t, int64(30), comparison.Control.ErrorRate)
	assert.Equal(t, int64(120), comparison.Control.AvgTimeOnPage)
	assert.Equal(t, int64(120), comparison.Control.AvgTaskCompletionTime)
	assert.Equal(t, int64(89), comparison.Treatment.AvgTaskCompletionTime)
	assert.Equal(t, map[int64]int64{1: 20, 2: 0, 3: 0, 4: 0, 5: 0}, comparison.Control.StepCompletionRates)
	assert.Equal(t, int64(10), comparison.Treatment.StepCompletionRates[5])

	assert.Equal(t, int64(50), comparison.ConversionLift)
	// (120 - 89) / 120, independent of the 60s and 45s response times.
	assert.Equal(t, int64(26), comparison.TimeLift)
	assert.Equal(t, int64(23), comparison.SatisfactionLift)
	assert.Equal(t, WinnerInsufficient, comparison.Winner)
	assert.Equal(t, "Not enough data for a conclusion. Keep collecting data.", comparison.Recommendation)

	_, err = e.CompareVariants(ctx, 999)
	assert.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestLifts(t *testing.T) {
	assert.Equal(t, int64(0), lift(0, 50))
	assert.Equal(t, int64(-50), lift(40, 20))
	assert.Equal(t, int64(0), timeLift(0, 10))
	assert.Equal(t, int64(-50), timeLift(20, 30))

	assert.Contains(t, recommendation(WinnerTreatment, 90, 500), "Variant B")
	assert.Contains(t, recommendation(WinnerControl, 90, 500), "Variant A")
	assert.Contains(t, recommendation(WinnerTie, 90, 500), "No meaningful difference")
	assert.Equal(t, "Confidence of 60% is still low. Keep collecting data.", recommendation(WinnerInsufficient, 60, 200))
}

func TestSaveResults(t *testing.T) {
	e, store := newSqlEngine(t)
	ctx := context.Background()
	created := mustCreate(t, e, db.ModuleDesempenho)

	_, err := e.GetResults(ctx, created.ExperimentId)
	assert.ErrorIs(t, err, ErrExperimentNotFound)

	seed(t, store, created.ExperimentId, created.ControlVariantId, 1, 200, 80, 50)
	seed(t, store, created.ExperimentId, created.TreatmentVariantId, 1000, 200, 120, 40)

	result, err := e.SaveResults(ctx, created.ExperimentId)
	require.NoError(t, err)
	assert.Equal(t, created.ExperimentId, result.ExperimentId)
	assert.Equal(t, int64(200), result.VariantASampleSize)
	assert.Equal(t, int64(200), result.VariantBSampleSize)
	assert.InDelta(t, 40, result.VariantAConversion, 1e-9)
	assert.InDelta(t, 60, result.VariantBConversion, 1e-9)
	assert.InDelta(t, 50, result.VariantAAvgTime, 1e-9)
	assert.InDelta(t, 40, result.VariantBAvgTime, 1e-9)
	assert.InDelta(t, 60, result.VariantADropoffRate, 1e-9)
	assert.InDelta(t, 40, result.VariantBDropoffRate, 1e-9)
	assert.Equal(t, string(WinnerTreatment), result.Winner)
	assert.Equal(t, int64(80), result.Confidence)
	assert.True(t, result.IsSignificant)

	seed(t, store, created.ExperimentId, created.ControlVariantId, 5000, 10, 10, 50)
	again, err := e.SaveResults(ctx, created.ExperimentId)
	require.NoError(t, err)
	assert.Equal(t, result.Id, again.Id)
	assert.Equal(t, int64(210), again.VariantASampleSize)

	_, err = e.SaveResults(ctx, 999)
	assert.ErrorIs(t, err, ErrExperimentNotFound)
}
