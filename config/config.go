package config

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"swift-store/models"
)

const devSessionSecret = "swift_store_dev_secret_change_me"

type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseDSN string

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderRPS       float64
	GeocodeCacheSize  int
	GeocodeCacheTTL   time.Duration
	GeocodeFailureTTL time.Duration
	RedisURL          string

	NearbyRadiusKm float64

	LogFile      string
	LogLevel     string
	OTLPEndpoint string
	CORSOrigins  []string
}

// Load reads a .env file when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:    GetEnvAsString("PORT", "8080"),
		GinMode: GetEnvAsString("GIN_MODE", "debug"),

		DBDriver:    GetEnvAsString("DB_DRIVER", "sqlite"),
		DatabaseDSN: GetEnvAsString("DATABASE_DSN", "swift_store.db"),

		SessionSecret: []byte(GetEnvAsString("SESSION_SECRET", devSessionSecret)),
		SessionTTL:    GetEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  GetEnvAsBool("COOKIE_SECURE", false),

		GeocoderURL:       GetEnvAsString("GEOCODER_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocoderUserAgent: GetEnvAsString("GEOCODER_USER_AGENT", "SwiftStore/1.0"),
		GeocoderTimeout:   GetEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
		GeocoderRPS:       GetEnvAsFloat("GEOCODER_RPS", 1),
		GeocodeCacheSize:  GetEnvAsInt("GEOCODE_CACHE_SIZE", 10000),
		GeocodeCacheTTL:   GetEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		GeocodeFailureTTL: GetEnvAsDuration("GEOCODE_FAILURE_TTL", 10*time.Minute),
		RedisURL:          GetEnvAsString("REDIS_URL", ""),

		NearbyRadiusKm: GetEnvAsFloat("NEARBY_RADIUS_KM", 5),

		LogFile:      GetEnvAsString("LOG_FILE", ""),
		LogLevel:     GetEnvAsString("LOG_LEVEL", "info"),
		OTLPEndpoint: GetEnvAsString("OTLP_ENDPOINT", ""),
		CORSOrigins:  GetEnvAsList("CORS_ORIGINS", nil),
	}
}

// UsesDevSecret reports whether sessions are signed with the built-in secret.
func (c *Config) UsesDevSecret() bool {
	return string(c.SessionSecret) == devSessionSecret
}

// OpenDB connects to the configured database and creates the schema if absent.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// single writer; also keeps ":memory:" databases on one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
