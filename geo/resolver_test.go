package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type fakeGeocoder struct {
	*httptest.Server
	calls atomic.Int32
}

func newFakeGeocoder(t *testing.T, h http.HandlerFunc) *fakeGeocoder {
	t.Helper()
	f := &fakeGeocoder{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestResolver(baseURL string, timeout time.Duration) *Resolver {
	return NewResolver(ResolverConfig{
		BaseURL:   baseURL,
		UserAgent: "swift-store-test",
		Timeout:   timeout,
	}, NewMemoryCache(100, time.Hour, time.Minute), zap.NewNop())
}

func TestResolverLookupCachesByRoundedKey(t *testing.T) {
	srv := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "swift-store-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lon"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"MG Road, Bengaluru, Karnataka, India"}`))
	})
	res := newTestResolver(srv.URL, time.Second)

	first := res.Lookup(context.Background(), 12.97161, 77.59461)
	second := res.Lookup(context.Background(), 12.97159, 77.59459)

	assert.Equal(t, "MG Road, Bengaluru, Karnataka, India", first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, srv.calls.Load())

	res.Lookup(context.Background(), 12.9800, 77.5946)
	assert.EqualValues(t, 2, srv.calls.Load())
}

func TestResolverFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"display_name":`))
		}},
		{"missing field", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Unable to geocode"}`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"display_name":"too late"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeGeocoder(t, tt.handler)
			res := newTestResolver(srv.URL, 50*time.Millisecond)

			assert.Equal(t, FallbackAddress, res.Lookup(context.Background(), 1, 2))
			assert.Equal(t, FallbackAddress, res.Lookup(context.Background(), 1, 2))
			assert.EqualValues(t, 1, srv.calls.Load(), "failed lookup must not be retried while cached")
		})
	}
}

func TestResolverUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newTestResolver(url, time.Second)
	assert.Equal(t, FallbackAddress, res.Lookup(context.Background(), 10, 10))
}

func TestResolverCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	srv := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"display_name":"Shared Street"}`))
	})
	res := newTestResolver(srv.URL, 5*time.Second)

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = res.Lookup(context.Background(), 48.85837, 2.29448)
		}(i)
	}

	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, srv.calls.Load())
	for _, r := range results {
		assert.Equal(t, "Shared Street", r)
	}
}

func TestResolverCancelledCallerStillCaches(t *testing.T) {
	srv := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"Detached Road"}`))
	})
	res := newTestResolver(srv.URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "Detached Road", res.Lookup(ctx, 3, 4))
	assert.Equal(t, "Detached Road", res.Lookup(context.Background(), 3, 4))
	assert.EqualValues(t, 1, srv.calls.Load())
}

func TestResolverThrottledLookupIsNotCached(t *testing.T) {
	srv := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"Real Street"}`))
	})
	cache := NewMemoryCache(100, time.Hour, time.Hour)
	res := NewResolver(ResolverConfig{
		BaseURL:   srv.URL,
		UserAgent: "swift-store-test",
		Timeout:   200 * time.Millisecond,
		RPS:       1,
	}, cache, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, "Real Street", res.Lookup(ctx, 1, 1))
	assert.Equal(t, FallbackAddress, res.Lookup(ctx, 2, 2))
	assert.EqualValues(t, 1, srv.calls.Load())

	_, cached := cache.Get(ctx, CacheKey(2, 2))
	assert.False(t, cached, "throttled lookup must not be cached")

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, "Real Street", res.Lookup(ctx, 2, 2))
	assert.EqualValues(t, 2, srv.calls.Load())
}

func TestResolverRecordsFailureOnFetchSpan(t *testing.T) {
	srv := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	res := newTestResolver(srv.URL, time.Second)
	res.tracer = tp.Tracer("test")

	assert.Equal(t, FallbackAddress, res.Lookup(context.Background(), 5, 5))

	var fetch sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == "geocode.fetch" {
			fetch = s
		}
	}
	require.NotNil(t, fetch)
	assert.Equal(t, codes.Error, fetch.Status().Code)
	assert.Equal(t, trace.SpanKindClient, fetch.SpanKind())
}
