package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/clearbook-finance/rates-adapter/pkg/config"
)

// Config holds the runtime configuration for the rates-adapter.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	Port        int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	NATSURL         string
	OutboundSubject string // surface rebuild events
	CommandSubject  string // manual rebuild trigger

	RedisAddr   string
	RedisDB     int
	DatabaseURL string // empty disables the Postgres archive

	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration

	AWSRegion   string
	CacheTTL    time.Duration // secrets cache
	CleanupFreq time.Duration

	// Provider defaults, used when no secret overrides them.
	// Per-deployment overrides live in AWS Secrets Manager; see internal/secrets.
	FREDBaseURL     string
	DividendBaseURL string

	// EarliestDate is the first date the surface should try to cover. It must
	// lie between the historical floor and today.
	EarliestDate time.Time

	RebuildOnStart  bool          // build a snapshot at startup instead of waiting for the refresher
	RefreshInterval time.Duration // how often the surface is rebuilt
	RawCacheTTL     time.Duration // Redis TTL for raw provider CSV bodies
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:         pkgconfig.GetEnv("SERVICE_NAME", "rates-adapter"),
		Env:                 pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:            pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:                pkgconfig.GetEnvInt("RATES_PORT", 9040),
		HTTPReadTimeout:     pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:    pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:     pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		NATSURL:             pkgconfig.GetEnv("NATS_URL", "nats://localhost:4222"),
		OutboundSubject:     pkgconfig.GetEnv("OUTBOUND_SUBJECT", "evt.rates.surface.rebuilt.v1"),
		CommandSubject:      pkgconfig.GetEnv("COMMAND_SUBJECT", "cmd.rates.surface.rebuild.v1"),
		RedisAddr:           pkgconfig.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             pkgconfig.GetEnvInt("REDIS_DB", 0),
		DatabaseURL:         pkgconfig.GetEnv("DATABASE_URL", ""),
		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
		AWSRegion:           pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		CacheTTL:            pkgconfig.GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:         pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
		FREDBaseURL:         pkgconfig.GetEnv("FRED_BASE_URL", "https://fred.stlouisfed.org"),
		DividendBaseURL:     pkgconfig.GetEnv("DIVIDEND_BASE_URL", "https://data.nasdaq.com"),
		EarliestDate:        pkgconfig.GetEnvDate("EARLIEST_DATE", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)),
		RebuildOnStart:      pkgconfig.GetEnvBool("REBUILD_ON_START", true),
		RefreshInterval:     pkgconfig.GetEnvDuration("REFRESH_INTERVAL", 6*time.Hour),
		RawCacheTTL:         pkgconfig.GetEnvDuration("RAW_CACHE_TTL", 1*time.Hour),
	}
}
