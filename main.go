package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"swift-store/config"
	"swift-store/geo"
	"swift-store/handlers"
	"swift-store/logger"
	"swift-store/middleware"
	"swift-store/routes"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := middleware.InitTracer(ctx, routes.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		zlog.Fatal("Failed to init tracer", zap.Error(err))
	}
	defer tp.Shutdown(context.Background())

	db, err := config.OpenDB(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("Failed to open database", zap.Error(err))
	}
	zlog.Info("Database connected and migrated", zap.String("driver", cfg.DBDriver))

	if cfg.UsesDevSecret() {
		zlog.Warn("SESSION_SECRET not set, using the development secret")
	}

	resolver := geo.NewResolver(geo.ResolverConfig{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocoderTimeout,
		RPS:       cfg.GeocoderRPS,
	}, geocodeCache(ctx, cfg, zlog), zlog)

	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	h := handlers.New(db, sessions, resolver, zlog, cfg.NearbyRadiusKm)

	r, err := routes.NewRouter(h, sessions, zlog, cfg.CORSOrigins)
	if err != nil {
		zlog.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("Server running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
	zlog.Info("Server stopped")
}

// geocodeCache prefers Redis when configured and reachable, otherwise an
// in-process cache.
func geocodeCache(ctx context.Context, cfg *config.Config, zlog *zap.Logger) geo.Cache {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err == nil {
			client := redis.NewClient(opt)
			if err = client.Ping(ctx).Err(); err == nil {
				zlog.Info("Geocode cache backed by Redis")
				return geo.NewRedisCache(client, cfg.GeocodeCacheTTL, cfg.GeocodeFailureTTL)
			}
			client.Close()
		}
		zlog.Warn("Redis unavailable, falling back to in-memory geocode cache", zap.Error(err))
	}
	return geo.NewMemoryCache(cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL, cfg.GeocodeFailureTTL)
}
