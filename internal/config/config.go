package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rentals/internal/pricing"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "rentals.db"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultTaxRate           = "0.18"
	defaultPlatformFeeRate   = "0"
	defaultCurrency          = "INR"
	defaultBillingMode       = "tier"
	defaultPreparingHorizon  = "24h"
	defaultLifecycleSchedule = "@every 5m"
	defaultBookingLockTTL    = "10s"
	defaultJWTTokenTTL       = "24h"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	JWTIssuer         string
	JWTTokenTTL       time.Duration
	InternalAPIToken  string
	TaxRate           float64
	PlatformFeeRate   float64
	Currency          string
	BillingMode       pricing.BillingMode
	PreparingHorizon  time.Duration
	LifecycleSchedule string
	BookingLockTTL    time.Duration
	CORSOrigins       []string
}

// Pricing returns the engine configuration.
func (c *Config) Pricing() pricing.Config {
	return pricing.Config{
		TaxRate:          c.TaxRate,
		PlatformFeeRate:  c.PlatformFeeRate,
		Currency:         c.Currency,
		BillingMode:      c.BillingMode,
		PreparingHorizon: c.PreparingHorizon,
	}
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

// LoadDotEnv reads .env files if present. Real environment variables win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("dotenv_load_failed file=%s error=%v", f, err)
		}
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	cfg.InternalAPIToken = strings.TrimSpace(os.Getenv("INTERNAL_API_TOKEN"))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(getEnv("CURRENCY", defaultCurrency)))
	cfg.BillingMode = pricing.BillingMode(strings.ToLower(strings.TrimSpace(getEnv("BILLING_MODE", defaultBillingMode))))
	cfg.LifecycleSchedule = strings.TrimSpace(getEnv("LIFECYCLE_SCHEDULE", defaultLifecycleSchedule))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	if cfg.TaxRate, err = parseFloatEnv("TAX_RATE", defaultTaxRate); err != nil {
		return nil, err
	}
	if cfg.PlatformFeeRate, err = parseFloatEnv("PLATFORM_FEE_RATE", defaultPlatformFeeRate); err != nil {
		return nil, err
	}
	if cfg.PreparingHorizon, err = parseDurationEnv("PREPARING_HORIZON", defaultPreparingHorizon); err != nil {
		return nil, err
	}
	if cfg.BookingLockTTL, err = parseDurationEnv("BOOKING_LOCK_TTL", defaultBookingLockTTL); err != nil {
		return nil, err
	}
	if cfg.JWTTokenTTL, err = parseDurationEnv("JWT_TOKEN_TTL", defaultJWTTokenTTL); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("pricing config: tax_rate=%.4f platform_fee_rate=%.4f currency=%s billing_mode=%s", cfg.TaxRate, cfg.PlatformFeeRate, cfg.Currency, cfg.BillingMode)

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.TaxRate < 0 || cfg.TaxRate > 1 {
		return fmt.Errorf("TAX_RATE must be between 0 and 1")
	}
	if cfg.PlatformFeeRate < 0 || cfg.PlatformFeeRate > 1 {
		return fmt.Errorf("PLATFORM_FEE_RATE must be between 0 and 1")
	}
	if !cfg.BillingMode.Valid() {
		return fmt.Errorf("BILLING_MODE must be one of: tier, day")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3 letter code")
	}
	if cfg.PreparingHorizon < 0 {
		return fmt.Errorf("PREPARING_HORIZON must be >= 0")
	}
	if cfg.BookingLockTTL <= 0 {
		return fmt.Errorf("BOOKING_LOCK_TTL must be > 0")
	}
	if cfg.JWTTokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be > 0")
	}
	if cfg.LifecycleSchedule == "" {
		return fmt.Errorf("LIFECYCLE_SCHEDULE must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.RedisURL == "" {
			return fmt.Errorf("in prod/release REDIS_URL must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
