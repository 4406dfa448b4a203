package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverAuto     = "auto"
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Billing      BillingConfig
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
	CORSAllowOrigins      string
}

// StorageConfig selects the customer store.
type StorageConfig struct {
	Driver   string
	SeedDemo bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
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
	Level       string
	Format      string
	Service     string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	Enforce               bool
	AdminEmail            string
	AdminPassword         string
	AdminName             string
	LoginRateLimit        int
	LoginRateWindowSec    int
}

// BillingConfig holds the tariff and alerting thresholds.
type BillingConfig struct {
	RatePerKWh         float64
	HighUsageThreshold float64
	AnomalyFactor      float64
}

// NotificationConfig holds outbound event sinks.
type NotificationConfig struct {
	WebhookURL       string
	WebhookSecret    string
	KafkaBrokers     []string
	KafkaTopic       string
	QueueSize        int
	DeliveryTimeoutS int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "voltai-backend"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "3001")),
			Version:               getEnv("APP_VERSION", "1.0.0"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverAuto)),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			Enforce:               getEnvAsBool("AUTH_ENFORCE", false),
			AdminEmail:            getEnv("AUTH_ADMIN_EMAIL", "admin@voltai.com"),
			AdminPassword:         os.Getenv("AUTH_ADMIN_PASSWORD"),
			AdminName:             getEnv("AUTH_ADMIN_NAME", "Admin User"),
			LoginRateLimit:        getEnvAsInt("AUTH_LOGIN_RATE_LIMIT", 10),
			LoginRateWindowSec:    getEnvAsInt("AUTH_LOGIN_RATE_WINDOW_SECONDS", 60),
		},
		Billing: BillingConfig{
			RatePerKWh:         getEnvAsFloat("BILLING_RATE_PER_KWH", 0.15),
			HighUsageThreshold: getEnvAsFloat("BILLING_HIGH_USAGE_THRESHOLD", 800),
			AnomalyFactor:      getEnvAsFloat("BILLING_ANOMALY_FACTOR", 1.5),
		},
		Notification: NotificationConfig{
			WebhookURL:       getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookSecret:    os.Getenv("NOTIFY_WEBHOOK_SECRET"),
			KafkaBrokers:     getEnvAsList("NOTIFY_KAFKA_BROKERS"),
			KafkaTopic:       getEnv("NOTIFY_KAFKA_TOPIC", "voltai.customer-events"),
			QueueSize:        getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			DeliveryTimeoutS: getEnvAsInt("NOTIFY_DELIVERY_TIMEOUT_SECONDS", 10),
		},
	}

	// The in-memory store starts with the demo customers unless told otherwise.
	cfg.Storage.SeedDemo = getEnvAsBool("STORAGE_SEED_DEMO", !cfg.Storage.UsePostgres(cfg.Postgres))
	cfg.Logger.Service = cfg.App.Name
	cfg.Logger.Development = cfg.App.Env == "development"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageDriverAuto, StorageDriverMemory:
	case StorageDriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("STORAGE_DRIVER=postgres requires POSTGRES_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Billing.RatePerKWh <= 0 {
		errs = append(errs, errors.New("BILLING_RATE_PER_KWH must be positive"))
	}
	if c.Billing.HighUsageThreshold <= 0 {
		errs = append(errs, errors.New("BILLING_HIGH_USAGE_THRESHOLD must be positive"))
	}
	if c.Billing.AnomalyFactor <= 0 {
		errs = append(errs, errors.New("BILLING_ANOMALY_FACTOR must be positive"))
	}
	return errors.Join(errs...)
}

// UsePostgres reports whether customers should be stored in Postgres.
func (s StorageConfig) UsePostgres(pg PostgresConfig) bool {
	switch s.Driver {
	case StorageDriverPostgres:
		return true
	case StorageDriverMemory:
		return false
	default:
		return pg.DSN != ""
	}
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

// LoginRateWindow returns the fixed window used for login throttling.
func (a AuthConfig) LoginRateWindow() time.Duration {
	if a.LoginRateWindowSec <= 0 {
		return time.Minute
	}
	return time.Duration(a.LoginRateWindowSec) * time.Second
}

// DeliveryTimeout bounds a single notification delivery.
func (n NotificationConfig) DeliveryTimeout() time.Duration {
	if n.DeliveryTimeoutS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.DeliveryTimeoutS) * time.Second
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
