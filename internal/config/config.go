package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Payroll  PayrollConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// PayrollConfig tunes the calculation engine and the monthly batch.
type PayrollConfig struct {
	AbsenceThreshold    int
	SeniorityAnnualRate decimal.Decimal
	BatchDay            int
	// Holidays are merged with the holidays table when building calendars.
	Holidays []time.Time
}

type CronConfig struct {
	ResignationSweepInterval time.Duration
	PayrollBatchInterval     time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	config := &Config{}
	var err error

	if config.Database.Port, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}
	config.Database.Host = getEnv("DB_HOST", "localhost")
	config.Database.User = getEnv("DB_USER", "postgres")
	config.Database.Password = getEnv("DB_PASSWORD", "")
	config.Database.Name = getEnv("DB_NAME", "rrhh")
	config.Database.SSLMode = getEnv("DB_SSL_MODE", "disable")
	config.Database.MaxConns = int32(maxConns)
	config.Database.MinConns = int32(minConns)

	// Application configuration
	if config.App.Port, err = getEnvInt("APP_PORT", 8080); err != nil {
		return nil, err
	}
	config.App.Env = getEnv("APP_ENV", "development")
	config.App.LogLevel = getEnv("LOG_LEVEL", "info")
	config.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// Payroll configuration
	if config.Payroll.AbsenceThreshold, err = getEnvInt("PAYROLL_ABSENCE_THRESHOLD", 1); err != nil {
		return nil, err
	}
	if config.Payroll.BatchDay, err = getEnvInt("PAYROLL_BATCH_DAY", 28); err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(getEnv("PAYROLL_SENIORITY_RATE", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_SENIORITY_RATE: %w", err)
	}
	config.Payroll.SeniorityAnnualRate = rate
	for _, s := range getEnvSlice("PAYROLL_HOLIDAYS") {
		day, err := calendar.ParseDate(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid PAYROLL_HOLIDAYS entry %q: %w", s, err)
		}
		config.Payroll.Holidays = append(config.Payroll.Holidays, day)
	}

	// Cron configuration
	if config.Cron.ResignationSweepInterval, err = getEnvDuration("RESIGNATION_SWEEP_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Cron.PayrollBatchInterval, err = getEnvDuration("PAYROLL_BATCH_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Payroll.AbsenceThreshold < 0 {
		return fmt.Errorf("PAYROLL_ABSENCE_THRESHOLD must not be negative")
	}
	if c.Payroll.BatchDay < 1 || c.Payroll.BatchDay > 28 {
		return fmt.Errorf("PAYROLL_BATCH_DAY must be between 1 and 28")
	}
	if c.Cron.ResignationSweepInterval <= 0 || c.Cron.PayrollBatchInterval <= 0 {
		return fmt.Errorf("cron intervals must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
