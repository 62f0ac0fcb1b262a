package interceptors_inflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

func TestAdmission(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			Size:     rapid.Uint64Range(0, 10).Draw(t, "size"),
			Blocking: rapid.Bool().Draw(t, "blocking"),
		}
		interceptor := NewInterceptor(cfg)
		nRequests := rapid.IntRange(0, 20).Draw(t, "n_requests")

		fitting := nRequests
		if cfg.Size != 0 && uint64(fitting) > cfg.Size {
			fitting = int(cfg.Size)
		}

		// Requests that fit are admitted right away on a live context.
		var results []checkResult
		defer func() {
			for _, result := range results {
				result.done()
			}
		}()
		for i := 0; i < fitting; i++ {
			result := interceptor.check(context.Background())
			results = append(results, result)
			assert.True(t, result.allowed, "request %d", i)
			assert.NoError(t, result.err, "request %d", i)
		}

		// The rest would queue; a cancelled context makes them give up at once.
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		for i := fitting; i < nRequests; i++ {
			result := interceptor.check(cancelled)
			results = append(results, result)
			assert.False(t, result.allowed, "request %d", i)
			if cfg.Blocking {
				assert.ErrorIs(t, result.err, context.Canceled, "request %d", i)
			} else {
				assert.NoError(t, result.err, "request %d", i)
			}
		}
	})
}

func TestBlockingWaitsForRelease(t *testing.T) {
	interceptor := NewInterceptor(Config{Size: 1, Blocking: true})
	held := interceptor.check(context.Background())
	assert.True(t, held.allowed)

	admitted := make(chan checkResult)
	go func() { admitted <- interceptor.check(context.Background()) }()

	held.done()
	result := <-admitted
	assert.True(t, result.allowed)
	assert.NoError(t, result.err)
	result.done()
}

func TestNonBlockingRejectsOverflow(t *testing.T) {
	interceptor := NewInterceptor(Config{Size: 1, Blocking: false})
	middleware := interceptor.ToHTTP()

	held := interceptor.check(context.Background())
	assert.True(t, held.allowed)

	recorder := httptest.NewRecorder()
	called := false
	middleware(&sbhttpbase.Request{Writer: recorder, Request: httptest.NewRequest(http.MethodGet, "/api/v1/layout", nil)},
		func(*sbhttpbase.Request) { called = true })
	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	held.done()
	recorder = httptest.NewRecorder()
	middleware(&sbhttpbase.Request{Writer: recorder, Request: httptest.NewRequest(http.MethodGet, "/api/v1/layout", nil)},
		func(request *sbhttpbase.Request) {
			called = true
			request.Writer.WriteHeader(http.StatusOK)
		})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
