package pool_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-ko/link-validator/pkg/checker"
	"github.com/your-ko/link-validator/pkg/config"
	"github.com/your-ko/link-validator/pkg/exclude"
	"github.com/your-ko/link-validator/pkg/pool"
	"github.com/your-ko/link-validator/pkg/uri"
)

func TestPoolProducesOneResponsePerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Timeout = 2 * time.Second
	cfg.MaxConcurrency = 4
	policy, err := exclude.New(exclude.Options{})
	require.NoError(t, err)

	p := pool.New(cfg, policy, nil)

	requests := make(chan uri.URI, cfg.MaxConcurrency)
	responses := make(chan checker.Response, cfg.MaxConcurrency)

	const n = 20
	go func() {
		for i := 0; i < n; i++ {
			u, err := url.Parse(srv.URL)
			require.NoError(t, err)
			requests <- uri.NewWebsite(u)
		}
		close(requests)
	}()

	done := make(chan struct{})
	go func() {
		p.Run(t.Context(), requests, responses)
		close(done)
	}()

	count := 0
	for range responses {
		count++
	}
	<-done
	assert.Equal(t, n, count)
}

func TestPoolRespectsMaxConcurrency(t *testing.T) {
	const limit = 3
	var inFlight, maxObserved int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			observed := atomic.LoadInt32(&maxObserved)
			if cur <= observed || atomic.CompareAndSwapInt32(&maxObserved, observed, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Timeout = 2 * time.Second
	cfg.MaxConcurrency = limit
	policy, err := exclude.New(exclude.Options{})
	require.NoError(t, err)

	p := pool.New(cfg, policy, nil)

	requests := make(chan uri.URI, limit)
	responses := make(chan checker.Response, limit)

	const n = 15
	go func() {
		for i := 0; i < n; i++ {
			u, err := url.Parse(srv.URL)
			require.NoError(t, err)
			requests <- uri.NewWebsite(u)
		}
		close(requests)
	}()

	done := make(chan struct{})
	go func() {
		p.Run(t.Context(), requests, responses)
		close(done)
	}()

	for range responses {
	}
	<-done

	assert.LessOrEqual(t, int(atomic.LoadInt32(&maxObserved)), limit)
}
