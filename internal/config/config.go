package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`
	Port   string `env:"PORT" envDefault:"10000" validate:"required,numeric"`

	DB DBConfig

	JWTSecret     string        `env:"JWT_SECRET" validate:"required"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"720h" validate:"gt=0"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587" validate:"gt=0,lte=65535"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE" envDefault:"serviceAccountKey.json"`
	UploadsDir              string `env:"UPLOADS_DIR" envDefault:"uploads" validate:"required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	OTPTTL           time.Duration `env:"OTP_TTL" envDefault:"10m" validate:"gt=0"`
	OTPRequestLimit  int           `env:"OTP_REQUEST_LIMIT" envDefault:"5" validate:"gt=0"`
	OTPRequestWindow time.Duration `env:"OTP_REQUEST_WINDOW" envDefault:"15m" validate:"gt=0"`
	OTPVerifyLimit   int           `env:"OTP_VERIFY_LIMIT" envDefault:"5" validate:"gt=0"`

	StatsTimezone string `env:"STATS_TIMEZONE" envDefault:"UTC" validate:"required"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFile   string `env:"LOG_FILE"`
	SentryDSN string `env:"SENTRY_DSN"`
}

// DBConfig holds database connection parameters
type DBConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// DSN returns DATABASE_URL when set, otherwise a keyword/value string built from the DB_* parts
func (c DBConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.User == "" || c.Name == "" {
		return "", errors.New("database environment variables not set (DATABASE_URL or DB_HOST, DB_USER, DB_NAME)")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode), nil
}

// Location resolves StatsTimezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_TIMEZONE %q: %w", c.StatsTimezone, err)
	}
	return loc, nil
}

// MailerConfigured reports whether OTP mail can be sent
func (c *Config) MailerConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// Load reads .env files if present, then parses and validates the environment
func Load() (*Config, error) {
	// Missing env files are fine; the process environment wins anyway.
	_ = godotenv.Load(".env.local", ".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := c.DB.DSN(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.DB.URL != "" {
		if _, err := url.Parse(c.DB.URL); err != nil {
			return fmt.Errorf("validate config: DATABASE_URL: %w", err)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
