package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/envutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
	"github.com/yungbote/lms-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Env     string
	LogMode string
	Addr    string

	DB            db.Config
	AutoMigrate   bool
	TxLockTimeout time.Duration

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Redis bus.RedisConfig

	MetricsEnabled     bool
	MetricsAddr        string
	DBStatsInterval    time.Duration
	Otel               observability.OtelConfig
	CORSOrigins        []string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	DefaultMaxStudents int
}

// LoadDotEnv loads .env files when present. Variables already set in the
// environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := godotenv.Read(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Env:     envutil.String("APP_ENV", "development"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Addr:    ":" + envutil.String("PORT", "8080"),

		DB: db.Config{
			Driver:        envutil.String("DB_DRIVER", "postgres"),
			DSN:           envutil.String("DATABASE_URL", ""),
			Host:          envutil.String("POSTGRES_HOST", "localhost"),
			Port:          envutil.String("POSTGRES_PORT", "5432"),
			User:          envutil.String("POSTGRES_USER", "postgres"),
			Password:      envutil.String("POSTGRES_PASSWORD", ""),
			Name:          envutil.String("POSTGRES_NAME", "lms"),
			SSLMode:       envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:  envutil.Int("DB_MAX_OPEN_CONNS", 20),
			SlowThreshold: envutil.Duration("DB_SLOW_QUERY_THRESHOLD", time.Second),
		},
		AutoMigrate:   envutil.Bool("DB_AUTO_MIGRATE", true),
		TxLockTimeout: envutil.Duration("DB_LOCK_TIMEOUT", 5*time.Second),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", services.DefaultAccessTTL),

		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_EVENTS_CHANNEL", bus.DefaultEventsChannel),
		},

		MetricsEnabled:  envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:     envutil.String("METRICS_ADDR", ""),
		DBStatsInterval: envutil.Duration("METRICS_DB_STATS_INTERVAL", 15*time.Second),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "lms-backend"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
		CORSOrigins:        splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		RequestTimeout:     envutil.Duration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		DefaultMaxStudents: envutil.Int("COURSE_DEFAULT_MAX_STUDENTS", 30),
	}
	cfg.Otel.Environment = cfg.Env
	ratio := envutil.Int("OTEL_TRACES_SAMPLE_PERCENT", 100)
	cfg.Otel.SampleRatio = float64(ratio) / 100

	if log != nil && cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
