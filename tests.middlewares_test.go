package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newMiddlewareTestAPI(config *Config) *APIHandler {
	clock := NewMockClocker()
	return NewAPIHandler(zap.NewNop(), config, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("0"), nil, nil, nil)
}

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 8, len(*pub))
	assert.Equal(t, 6, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	w := httptest.NewRecorder()
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = RequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(2), num)
	assert.Equal(t, uint64(2), api.stats.called)
}

func TestRequestIDMiddleware(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	w := httptest.NewRecorder()
	var requestID string
	wrapped := api.RequestIDMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID = RequestIDFromContext(req.Context())
	})
	wrapped(w, req, nil)
	assert.Equal(t, "r:0", requestID)
	assert.Equal(t, "r:0", w.Header().Get("X-Request-ID"))
}

func TestCoreMiddlewareSetsLogger(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	w := httptest.NewRecorder()
	var logger *zap.Logger
	wrapped := api.CoreMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		logger = api.GetLoggerFromContext(req.Context())
	})
	wrapped(w, req, nil)
	assert.NotNil(t, logger)
	assert.NotSame(t, api.logger, logger)
}

func TestStatsMiddleware(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	codes := []int{http.StatusOK, http.StatusNotFound, http.StatusNotFound}
	for _, code := range codes {
		code := code
		wrapped := api.StatsMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			w.WriteHeader(code)
		})
		wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/books", nil), nil)
	}
	assert.Equal(t, uint64(1), api.stats.status[http.StatusOK])
	assert.Equal(t, uint64(2), api.stats.status[http.StatusNotFound])
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newMiddlewareTestAPI(nil)
	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	w := httptest.NewRecorder()
	wrapped := api.PanicRecoveryMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	})
	assert.NotPanics(t, func() { wrapped(w, req, nil) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to process the request.")
}

func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		api := newMiddlewareTestAPI(&Config{})
		assert.Nil(t, api.limiter)
		wrapped := api.RateLimitMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {})
		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			wrapped(w, httptest.NewRequest("GET", "/api/v1/books", nil), nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		api := newMiddlewareTestAPI(&Config{RateLimit: RateLimitConfig{Enable: true, RPS: 1, Burst: 2}})
		wrapped := api.RateLimitMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {})
		codes := []int{}
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			wrapped(w, httptest.NewRequest("GET", "/api/v1/books", nil), nil)
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

		// another caller has its own bucket.
		req := httptest.NewRequest("GET", "/api/v1/books", nil)
		req.Header.Set("X-REAL-IP", "10.0.0.2")
		w := httptest.NewRecorder()
		wrapped(w, req, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestIPRateLimiterSweepsIdleCallers(t *testing.T) {
	clock := NewMockClocker()
	limiter := newIPRateLimiter(1, 1, clock)
	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	assert.Equal(t, 2, limiter.Len())

	clock.MockNow = clock.MockNow.Add(limiterIdleTimeout + time.Second)
	assert.True(t, limiter.Allow("10.0.0.3"))
	assert.Equal(t, 1, limiter.Len())
}
