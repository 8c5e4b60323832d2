package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	SLA          SLAConfig
	Sweeper      SweeperConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SLAConfig controls settings caching and seeding.
type SLAConfig struct {
	SettingsCacheTTLSeconds int
	HolidaySeedFile         string
}

// SweeperConfig controls the breach-detection sweep.
type SweeperConfig struct {
	Enabled           bool
	Schedule          string
	AtRiskLeadMinutes int
	AlertDedupeHours  int
	TicketBatchSize   int
}

// NotificationConfig holds alert delivery endpoints.
type NotificationConfig struct {
	EmailFrom    string
	WebhookURL   string
	SlackToken   string
	SlackChannel string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-sla-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		SLA: SLAConfig{
			SettingsCacheTTLSeconds: getEnvAsInt("SLA_SETTINGS_CACHE_TTL_SECONDS", 60),
			HolidaySeedFile:         getEnv("SLA_HOLIDAY_SEED_FILE", ""),
		},
		Sweeper: SweeperConfig{
			Enabled:           getEnvAsBool("SWEEPER_ENABLED", true),
			Schedule:          getEnv("SWEEPER_SCHEDULE", "*/5 * * * *"),
			AtRiskLeadMinutes: getEnvAsInt("SWEEPER_AT_RISK_LEAD_MINUTES", 30),
			AlertDedupeHours:  getEnvAsInt("SWEEPER_ALERT_DEDUPE_HOURS", 24),
			TicketBatchSize:   getEnvAsInt("SWEEPER_TICKET_BATCH_SIZE", 500),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			SlackToken:   os.Getenv("NOTIFY_SLACK_TOKEN"),
			SlackChannel: os.Getenv("NOTIFY_SLACK_CHANNEL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SettingsCacheTTL returns the settings snapshot cache TTL.
func (s SLAConfig) SettingsCacheTTL() time.Duration {
	if s.SettingsCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.SettingsCacheTTLSeconds) * time.Second
}

// AtRiskLead returns the advance-warning window before a deadline.
func (s SweeperConfig) AtRiskLead() time.Duration {
	if s.AtRiskLeadMinutes <= 0 {
		return 0
	}
	return time.Duration(s.AtRiskLeadMinutes) * time.Minute
}

// AlertDedupeTTL returns how long a fired alert suppresses duplicates.
func (s SweeperConfig) AlertDedupeTTL() time.Duration {
	if s.AlertDedupeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.AlertDedupeHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
