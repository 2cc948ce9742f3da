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
	BaseURL      string
	VehicleTypes []string
	VehicleMakes []string

	PageMinDelay time.Duration
	PageMaxDelay time.Duration
	PostMinDelay time.Duration
	PostMaxDelay time.Duration

	BatchSize int
	// FreshnessDays is the maximum listing age in days. Zero disables the filter.
	FreshnessDays int

	Fetcher        string
	Headless       bool
	RequestTimeout time.Duration
	FetchAttempts  int

	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	CSVPath   string
	ExportAll bool

	LogLevel       string
	LogColor       bool
	EnableProgress bool
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://riyasewana.com",
		VehicleTypes: []string{"cars", "vans", "suvs", "crew-cabs", "pickups"},
		VehicleMakes: []string{
			"toyota", "nissan", "suzuki", "micro", "mitsubishi", "mahindra", "mazda",
			"daihatsu", "hyundai", "kia", "bmw", "perodua", "tata",
		},
		PageMinDelay:   2 * time.Second,
		PageMaxDelay:   5 * time.Second,
		PostMinDelay:   2 * time.Second,
		PostMaxDelay:   4 * time.Second,
		BatchSize:      50,
		FreshnessDays:  7,
		Fetcher:        "chrome",
		Headless:       true,
		RequestTimeout: 60 * time.Second,
		FetchAttempts:  1,
		DBHost:         "localhost",
		DBPort:         5432,
		DBUser:         "postgres",
		DBPassword:     "postgres",
		DBName:         "vehicle_scraper",
		DBSSLMode:      "disable",
		CSVPath:        "",
		LogLevel:       "info",
		LogColor:       true,
	}
}

// Load reads an optional .env file and overlays the environment on DefaultConfig.
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
	}

	cfg := DefaultConfig()
	cfg.BaseURL = strings.TrimRight(getEnvAsString("BASE_URL", cfg.BaseURL), "/")
	cfg.VehicleTypes = getEnvAsList("VEHICLE_TYPES", cfg.VehicleTypes)
	cfg.VehicleMakes = getEnvAsList("VEHICLE_MAKES", cfg.VehicleMakes)
	cfg.PageMinDelay = getEnvAsDuration("PAGE_DELAY_MIN", cfg.PageMinDelay)
	cfg.PageMaxDelay = getEnvAsDuration("PAGE_DELAY_MAX", cfg.PageMaxDelay)
	cfg.PostMinDelay = getEnvAsDuration("POST_DELAY_MIN", cfg.PostMinDelay)
	cfg.PostMaxDelay = getEnvAsDuration("POST_DELAY_MAX", cfg.PostMaxDelay)
	cfg.BatchSize = getEnvAsInt("BATCH_SIZE", cfg.BatchSize)
	cfg.FreshnessDays = getEnvAsInt("FRESHNESS_DAYS", cfg.FreshnessDays)
	cfg.Fetcher = strings.ToLower(getEnvAsString("FETCHER", cfg.Fetcher))
	cfg.Headless = getEnvAsBool("HEADLESS", cfg.Headless)
	cfg.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.FetchAttempts = getEnvAsInt("FETCH_ATTEMPTS", cfg.FetchAttempts)
	cfg.DatabaseURL = getEnvAsString("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBHost = getEnvAsString("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnvAsInt("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnvAsString("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnvAsString("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnvAsString("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnvAsString("DB_SSLMODE", cfg.DBSSLMode)
	cfg.CSVPath = getEnvAsString("CSV_PATH", cfg.CSVPath)
	cfg.ExportAll = getEnvAsBool("EXPORT_ALL", cfg.ExportAll)
	cfg.LogLevel = getEnvAsString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogColor = getEnvAsBool("LOG_COLOR", cfg.LogColor)
	cfg.EnableProgress = getEnvAsBool("ENABLE_PROGRESS", cfg.EnableProgress)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("BASE_URL is required")
	case len(c.VehicleTypes) == 0:
		return errors.New("at least one vehicle type is required")
	case len(c.VehicleMakes) == 0:
		return errors.New("at least one vehicle make is required")
	case c.BatchSize < 1:
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	case c.FreshnessDays < 0:
		return fmt.Errorf("freshness days must not be negative, got %d", c.FreshnessDays)
	case c.PageMinDelay < 0 || c.PageMaxDelay < c.PageMinDelay:
		return fmt.Errorf("invalid page delay range %v-%v", c.PageMinDelay, c.PageMaxDelay)
	case c.PostMinDelay < 0 || c.PostMaxDelay < c.PostMinDelay:
		return fmt.Errorf("invalid post delay range %v-%v", c.PostMinDelay, c.PostMaxDelay)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	case c.Fetcher != "chrome" && c.Fetcher != "http":
		return fmt.Errorf("unknown fetcher %q (want chrome or http)", c.Fetcher)
	}
	return nil
}

// DSN returns DatabaseURL when set, otherwise builds one from the DB_* fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// FreshnessWindow returns the maximum listing age, zero when disabled.
func (c *Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessDays) * 24 * time.Hour
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
