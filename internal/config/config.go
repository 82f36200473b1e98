package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
	// PublicURL is the externally visible base URL used in payment return links.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
}

type PostgresConfig struct {
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	Name     string `env:"POSTGRES_DB,required"`
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

// DSN builds the pgx connection URL.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RabbitMQConfig struct {
	// URL is optional; without it booking confirmations are not queued.
	URL string `env:"RABBITMQ_URL"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET,required"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type PaymentMode string

const (
	PaymentModeMock   PaymentMode = "mock"
	PaymentModeHosted PaymentMode = "hosted"
)

type PaymentConfig struct {
	Mode        PaymentMode `env:"PAYMENT_MODE" envDefault:"mock"`
	CheckoutURL string      `env:"PAYMENT_CHECKOUT_URL"`
}

type AuthConfig struct {
	AdminCode        string        `env:"ADMIN_CODE"`
	LoginRateLimit   int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow  time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	IdempotencyTTL   time.Duration `env:"RECONCILE_IDEMPOTENCY_TTL" envDefault:"2h"`
	ReconcileLockTTL time.Duration `env:"RECONCILE_LOCK_TTL" envDefault:"30s"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}

	if len(c.Session.Secret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 bytes")
	}

	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	switch c.Payment.Mode {
	case PaymentModeMock:
	case PaymentModeHosted:
		if c.Payment.CheckoutURL == "" {
			return errors.New("PAYMENT_CHECKOUT_URL is required in hosted payment mode")
		}
	default:
		return fmt.Errorf("invalid PAYMENT_MODE: %q", c.Payment.Mode)
	}

	if _, err := url.Parse(c.Server.PublicURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_URL: %w", err)
	}

	return nil
}
