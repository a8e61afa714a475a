package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// FallbackAddress is reported whenever the geocoding service cannot resolve a point.
const FallbackAddress = "Address unavailable"

var ErrNoAddress = errors.New("geocoder returned no display_name")

type ResolverConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RPS caps outbound requests per second; zero or less disables the limit.
	RPS float64
}

// Resolver turns coordinates into a human readable address through a
// Nominatim-compatible reverse geocoding endpoint.
type Resolver struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	cache     Cache
	limiter   *rate.Limiter
	group     singleflight.Group
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewResolver(cfg ResolverConfig, cache Cache, log *zap.Logger) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Resolver{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		cache:     cache,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
		tracer:    otel.Tracer("swift-store/geo"),
	}
}

// Lookup returns the address for (lat, lon). It never fails: any problem
// with the upstream service yields FallbackAddress. Results, including the
// fallback, are cached under CacheKey(lat, lon). A lookup turned away by the
// rate limiter also yields FallbackAddress but is not cached.
func (r *Resolver) Lookup(ctx context.Context, lat, lon float64) string {
	key := CacheKey(lat, lon)
	ctx, span := r.tracer.Start(ctx, "geocode.reverse",
		trace.WithAttributes(attribute.String("geocode.key", key)),
	)
	defer span.End()

	if addr, ok := r.cache.Get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("geocode.cache_hit", true))
		return addr
	}
	span.SetAttributes(attribute.Bool("geocode.cache_hit", false))

	// the shared call must not die with whichever request started it
	base := context.WithoutCancel(ctx)
	v, _, shared := r.group.Do(key, func() (interface{}, error) {
		return r.resolve(base, key, lat, lon), nil
	})
	span.SetAttributes(attribute.Bool("geocode.shared", shared))
	return v.(string)
}

func (r *Resolver) resolve(ctx context.Context, key string, lat, lon float64) string {
	if addr, ok := r.cache.Get(ctx, key); ok {
		return addr
	}

	ctx, span := r.tracer.Start(ctx, "geocode.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("geocode.key", key)),
	)
	defer span.End()

	waitCtx, cancelWait := context.WithTimeout(ctx, r.timeout)
	err := r.limiter.Wait(waitCtx)
	cancelWait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limited")
		r.log.Warn("Reverse geocoding throttled", zap.String("key", key), zap.Error(err))
		return FallbackAddress
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addr, err := r.fetch(fetchCtx, lat, lon)
	failed := err != nil
	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Warn("Reverse geocoding failed",
			zap.String("key", key),
			zap.Error(err),
		)
		addr = FallbackAddress
	}
	if err := r.cache.Set(ctx, key, addr, failed); err != nil {
		r.log.Error("Failed to cache geocoding result", zap.String("key", key), zap.Error(err))
	}
	return addr
}

func (r *Resolver) fetch(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("geocoder responded %s", resp.Status)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}
	if body.DisplayName == "" {
		return "", ErrNoAddress
	}
	return body.DisplayName, nil
}
