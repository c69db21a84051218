package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the typed application configuration decoded from the environment.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"prod"`
	AppHost string `env:"APP_HOST" envDefault:"0.0.0.0"`
	AppPort string `env:"APP_PORT" envDefault:"4000"`
	// AppURL is the public base URL of the front end; report links and
	// checkout redirects are built from it.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`

	Database    DatabaseConfig    `envPrefix:"DB_"`
	Cache       CacheConfig       `envPrefix:"CACHE_"`
	Stripe      StripeConfig      `envPrefix:"STRIPE_"`
	Mail        MailConfig        `envPrefix:"SMTP_"`
	Admin       AdminConfig       `envPrefix:"ADMIN_"`
	ReportStore ReportStoreConfig `envPrefix:"REPORT_S3_"`
	RateLimit   RateLimitConfig   `envPrefix:"RATE_LIMIT_"`

	JobQueueWorkers int    `env:"JOBQUEUE_WORKERS" envDefault:"3"`
	MonitorUser     string `env:"MONITOR_USER" envDefault:"admin"`
	MonitorPassword string `env:"MONITOR_PASSWORD"`
	OpenAPIFile     string `env:"OPENAPI_FILE" envDefault:"docs/openapi.yml"`

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// believed. Empty means the TCP peer address is always used.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type DatabaseConfig struct {
	Driver       string `env:"DRIVER" envDefault:"mysql"`
	Host         string `env:"HOST" envDefault:"127.0.0.1"`
	Port         int    `env:"PORT" envDefault:"3306"`
	User         string `env:"USER"`
	Password     string `env:"PASSWORD"`
	Name         string `env:"NAME" envDefault:"growthpartner"`
	SSLMode      string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	Quiet        bool   `env:"QUIET" envDefault:"false"`
}

type CacheConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

func (c CacheConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type StripeConfig struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	// Optional catalog prices; inline amounts are used when empty.
	PriceSingle string `env:"PRICE_SINGLE"`
	PriceBundle string `env:"PRICE_BUNDLE"`
	Currency    string `env:"CURRENCY" envDefault:"usd"`
}

type MailConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"GrowthPartner AI <reports@growthpartner.ai>"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

type AdminConfig struct {
	PasswordHash string        `env:"PASSWORD_HASH"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
}

type ReportStoreConfig struct {
	Endpoint      string `env:"ENDPOINT"`
	Region        string `env:"REGION" envDefault:"us-east-1"`
	Bucket        string `env:"BUCKET"`
	AccessKeyID   string `env:"ACCESS_KEY_ID"`
	SecretKey     string `env:"SECRET_ACCESS_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	PathPrefix    string `env:"PATH_PREFIX" envDefault:"reports"`
	UsePathStyle  bool   `env:"USE_PATH_STYLE" envDefault:"true"`
}

// Enabled reports whether report uploads can be stored.
func (r ReportStoreConfig) Enabled() bool {
	return r.Bucket != "" && r.AccessKeyID != "" && r.SecretKey != ""
}

type RateLimitConfig struct {
	Max        int           `env:"MAX" envDefault:"60"`
	Expiration time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load decodes the configuration from the given key/value environment.
func Load(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Database.Driver == "postgres" && environment["DB_PORT"] == "" {
		cfg.Database.Port = 5432
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}
