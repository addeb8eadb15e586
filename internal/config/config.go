package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is read once at startup and treated as immutable.
type Config struct {
	DatabaseURL string
	StoreDriver string

	HTTPPort string
	GRPCPort string
	AppEnv   string

	SessionTTL       time.Duration
	SessionSweepSpec string

	LoginRate  float64
	LoginBurst int

	LogLevel string

	// optional first account, created at startup when absent
	SeedEmail    string
	SeedPassword string
	SeedName     string
	SeedRole     string
}

func (c *Config) Production() bool { return c.AppEnv == "production" }

// LoadDotEnv reads path into the environment if it exists. Variables
// already set win over the file.
func LoadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoreDriver:      strings.ToLower(getEnvString("STORE_DRIVER", DriverPostgres)),
		HTTPPort:         getEnvString("HTTP_PORT", "8080"),
		GRPCPort:         getEnvString("GRPC_PORT", "50051"),
		AppEnv:           getEnvString("APP_ENV", "development"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		SessionSweepSpec: getEnvString("SESSION_SWEEP_SPEC", "@every 1h"),
		LoginRate:        getEnvFloat("LOGIN_RATE", 5),
		LoginBurst:       getEnvInt("LOGIN_BURST", 10),
		LogLevel:         getEnvString("LOG_LEVEL", "info"),
		SeedEmail:        os.Getenv("SEED_EMAIL"),
		SeedPassword:     os.Getenv("SEED_PASSWORD"),
		SeedName:         getEnvString("SEED_NAME", "Administrator"),
		SeedRole:         getEnvString("SEED_ROLE", "doctor"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("required environment variables are not set: %v", []string{"DATABASE_URL"})
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.SeedEmail != "" && cfg.SeedPassword == "" {
		return nil, fmt.Errorf("required environment variables are not set: %v", []string{"SEED_PASSWORD"})
	}
	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
