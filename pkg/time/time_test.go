package ltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestJitteredDurationBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := time.Duration(rapid.Int64Range(0, int64(time.Hour)).Draw(t, "duration"))
		j := JitteredDuration(d)
		if float64(j) < float64(d)*0.8-1 || float64(j) > float64(d)*1.2+1 {
			t.Fatalf("jittered %v out of bounds for %v", j, d)
		}
	})
}

func TestTestingWatch(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &TestingWatch{Current: start}
	assert.Equal(t, start, w.Now())
	w.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), w.Now())
}
