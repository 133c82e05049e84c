package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mhugentobler/jasstafel/internal/scoring"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// NATSConfig holds snapshot fan-out settings.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// SyncConfig holds the remote write policy.
type SyncConfig struct {
	DeviceID         string
	MinWriteInterval time.Duration
}

// Config is the full engine configuration.
type Config struct {
	Database DatabaseConfig
	NATS     NATSConfig
	Sync     SyncConfig
	Scoring  scoring.Thresholds
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present. When
// JASS_THRESHOLDS_FILE points at a YAML file, the scoring thresholds
// are loaded from it; otherwise the defaults apply.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "jasstafel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "jass"),
		},
		Sync: SyncConfig{
			DeviceID:         getEnv("JASS_DEVICE_ID", ""),
			MinWriteInterval: getEnvAsDuration("JASS_MIN_WRITE_INTERVAL", time.Second),
		},
		Scoring: scoring.DefaultThresholds(),
	}

	if path := os.Getenv("JASS_THRESHOLDS_FILE"); path != "" {
		th, err := loadThresholds(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Scoring = th
	}

	return cfg, nil
}

func loadThresholds(path string) (scoring.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoring.Thresholds{}, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	th := scoring.DefaultThresholds()
	if err := yaml.Unmarshal(data, &th); err != nil {
		return scoring.Thresholds{}, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if th.Final <= 0 {
		return scoring.Thresholds{}, fmt.Errorf("thresholds file %s: final milestone must be positive", path)
	}
	return th, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
