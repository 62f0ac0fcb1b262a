package ltest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// T is what fixtures such as temporary databases need from a test, so they serve both plain tests and
// property checks.
type T interface {
	Helper()
	Fatalf(format string, args ...interface{})
	Cleanup(func())
	assert.TestingT
}

var _ T = (*testing.T)(nil)

// rapidT gives each rapid iteration its own cleanup scope.
type rapidT struct {
	*rapid.T
	cleanups []func()
}

var _ T = (*rapidT)(nil)

func (r *rapidT) Helper() {}

func (r *rapidT) Cleanup(f func()) {
	r.cleanups = append(r.cleanups, f)
}

func (r *rapidT) runCleanups() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
	r.cleanups = nil
}

// Check runs prop as a rapid property. Fixtures built on the T argument are torn down after every
// iteration, including failing ones.
func Check(t *testing.T, prop func(rt *rapid.T, t T)) {
	t.Helper()
	rapid.Check(t, func(rt *rapid.T) {
		scoped := &rapidT{T: rt}
		defer scoped.runCleanups()
		prop(rt, scoped)
	})
}
