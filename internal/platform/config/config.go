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

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	DataEncryptionKey  string
	TokenTTL           time.Duration
	Environment        string
	RedisURL           string
	CacheTTL           time.Duration
	MigrationsDir      string
	RunMigrations      bool
	SeedAdminEmail     string
	SeedAdminPassword  string
	MaxBodyBytes       int64
	MaxUploadBytes     int64
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	PayslipDir         string
	ReferenceTimezone  string
	MetricsEnabled     bool
	IdempotencyTTL     time.Duration
	HousekeepingEvery  time.Duration
	Payroll            PayrollRules
}

// PayrollRules holds the default rule set used when a request does not
// override it.
type PayrollRules struct {
	MaxRegularHours    float64
	MaxOvertimeHours   float64
	OvertimeMultiplier float64
	WeekendMultiplier  float64
	BreakDeduction     bool
	MinimumBreakHours  float64
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
		Environment:        getEnv("APP_ENV", "development"),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheTTL:           getEnvDuration("CACHE_TTL", 10*time.Minute),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		PayslipDir:         getEnv("PAYSLIP_DIR", ""),
		ReferenceTimezone:  getEnv("REFERENCE_TIMEZONE", "Atlantic/Cape_Verde"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		HousekeepingEvery:  getEnvDuration("HOUSEKEEPING_INTERVAL", time.Hour),
		Payroll: PayrollRules{
			MaxRegularHours:    getEnvFloat("PAYROLL_MAX_REGULAR_HOURS", 8),
			MaxOvertimeHours:   getEnvFloat("PAYROLL_MAX_OVERTIME_HOURS", 4),
			OvertimeMultiplier: getEnvFloat("PAYROLL_OVERTIME_MULTIPLIER", 1.5),
			WeekendMultiplier:  getEnvFloat("PAYROLL_WEEKEND_MULTIPLIER", 2),
			BreakDeduction:     getEnvBool("PAYROLL_BREAK_DEDUCTION", false),
			MinimumBreakHours:  getEnvFloat("PAYROLL_MINIMUM_BREAK_HOURS", 0.5),
		},
	}
}

// Location resolves ReferenceTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Environment == "production" && strings.TrimSpace(c.DataEncryptionKey) == "" {
		return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	if (c.SeedAdminEmail == "") != (c.SeedAdminPassword == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	if _, err := time.LoadLocation(c.ReferenceTimezone); err != nil {
		return fmt.Errorf("REFERENCE_TIMEZONE: %w", err)
	}
	return c.Payroll.validate()
}

func (p PayrollRules) validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"PAYROLL_MAX_REGULAR_HOURS":   p.MaxRegularHours,
		"PAYROLL_MAX_OVERTIME_HOURS":  p.MaxOvertimeHours,
		"PAYROLL_OVERTIME_MULTIPLIER": p.OvertimeMultiplier,
		"PAYROLL_WEEKEND_MULTIPLIER":  p.WeekendMultiplier,
		"PAYROLL_MINIMUM_BREAK_HOURS": p.MinimumBreakHours,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	return errors.Join(errs...)
}
