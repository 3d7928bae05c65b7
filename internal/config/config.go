package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Overlap policies accepted by BOOKING_OVERLAP_POLICY.
const (
	OverlapHighestDiscount = "highest_discount"
	OverlapEarliestRule    = "earliest_rule"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Log       LogConfig
	Booking   BookingConfig
	Auth      AuthConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"8000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	BodyLimitMB     int    `envconfig:"BODY_LIMIT_MB" default:"12"`
	FrontendURL     string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"restoboost"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"2"`
	Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.sslMode())
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

func (c DBConfig) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

// RedisConfig holds the slot cache connection. An empty address disables Redis.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:""`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// BookingConfig holds slot generation and booking settings.
type BookingConfig struct {
	SlotStepMinutes  int           `envconfig:"BOOKING_SLOT_STEP_MINUTES" default:"60"`
	DefaultCapacity  int           `envconfig:"BOOKING_DEFAULT_CAPACITY" default:"4"`
	Timezone         string        `envconfig:"BOOKING_TIMEZONE" default:"Asia/Almaty"`
	OverlapPolicy    string        `envconfig:"BOOKING_OVERLAP_POLICY" default:"highest_discount"`
	RejectOverlaps   bool          `envconfig:"BOOKING_REJECT_OVERLAPS" default:"false"`
	SlotCacheTTL     time.Duration `envconfig:"BOOKING_SLOT_CACHE_TTL" default:"0s"`
	RuleValidityDays int           `envconfig:"BOOKING_RULE_VALIDITY_DAYS" default:"30"`
	MaxRangeDays     int           `envconfig:"BOOKING_MAX_RANGE_DAYS" default:"31"`
	DefaultRangeDays int           `envconfig:"BOOKING_DEFAULT_RANGE_DAYS" default:"7"`
}

// Location resolves the configured timezone.
func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	JWTSecret         string        `envconfig:"AUTH_JWT_SECRET" default:"change-me"` // CHANGE IN PRODUCTION
	TokenTTL          time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	AdminUsername     string        `envconfig:"AUTH_ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string        `envconfig:"AUTH_ADMIN_PASSWORD_HASH" default:""`
}

// StorageConfig holds restaurant photo storage settings.
type StorageConfig struct {
	PhotoDir      string `envconfig:"STORAGE_PHOTO_DIR" default:"./data/photos"`
	PublicPrefix  string `envconfig:"STORAGE_PUBLIC_PREFIX" default:"/static/restaurant-photos"`
	MaxImageMB    int    `envconfig:"STORAGE_MAX_IMAGE_MB" default:"10"`
	ImageQuality  int    `envconfig:"STORAGE_IMAGE_QUALITY" default:"85"`
	ImageMaxWidth int    `envconfig:"STORAGE_IMAGE_MAX_WIDTH" default:"1920"`
}

// MaxImageBytes returns the upload limit in bytes.
func (c StorageConfig) MaxImageBytes() int {
	return c.MaxImageMB * 1024 * 1024
}

// RateLimitConfig holds the per-IP limits for write-heavy public endpoints.
type RateLimitConfig struct {
	PerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	Burst     int `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// Load reads an optional .env file, then parses environment variables into Config.
// Variables already present in the environment take precedence over .env values.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit .env path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Booking.SlotStepMinutes <= 0 {
		return fmt.Errorf("BOOKING_SLOT_STEP_MINUTES must be positive, got %d", c.Booking.SlotStepMinutes)
	}
	if c.Booking.DefaultCapacity <= 0 {
		return fmt.Errorf("BOOKING_DEFAULT_CAPACITY must be positive, got %d", c.Booking.DefaultCapacity)
	}
	switch c.Booking.OverlapPolicy {
	case OverlapHighestDiscount, OverlapEarliestRule:
	default:
		return fmt.Errorf("BOOKING_OVERLAP_POLICY must be %q or %q, got %q",
			OverlapHighestDiscount, OverlapEarliestRule, c.Booking.OverlapPolicy)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("BOOKING_TIMEZONE: %w", err)
	}
	if c.Booking.MaxRangeDays <= 0 || c.Booking.DefaultRangeDays <= 0 || c.Booking.DefaultRangeDays > c.Booking.MaxRangeDays {
		return errors.New("BOOKING_DEFAULT_RANGE_DAYS must be between 1 and BOOKING_MAX_RANGE_DAYS")
	}
	return nil
}
