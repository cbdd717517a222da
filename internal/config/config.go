package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"unit-roster/internal/storage"
)

const (
	DefaultStateFile         = "dados_efetivo.json"
	DefaultDatabaseURL       = "efetivo.db"
	DefaultHTTPPort          = 8080
	DefaultRecentLeavesLimit = 10
)

type Config struct {
	TelegramToken     string
	StoreDriver       string
	StateFile         string
	DatabaseURL       string
	HTTPPort          int
	LogLevel          logrus.Level
	RecentLeavesLimit int
	CORSOrigins       []string
}

var (
	instance *Config
	once     sync.Once
)

// GetConfig loads the configuration once per process and exits on error.
func GetConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		StoreDriver:   getEnv("STORE_DRIVER", storage.DriverJSON),
		StateFile:     getEnv("STATE_FILE", DefaultStateFile),
		DatabaseURL:   getEnv("DATABASE_URL", DefaultDatabaseURL),
	}

	switch cfg.StoreDriver {
	case storage.DriverJSON, storage.DriverSQLite:
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	var err error
	if cfg.HTTPPort, err = getEnvAsInt("HTTP_PORT", DefaultHTTPPort); err != nil {
		return nil, err
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("HTTP_PORT: %d is out of range", cfg.HTTPPort)
	}
	if cfg.RecentLeavesLimit, err = getEnvAsInt("RECENT_LEAVES_LIMIT", DefaultRecentLeavesLimit); err != nil {
		return nil, err
	}
	cfg.CORSOrigins = getEnvAsList("CORS_ORIGINS", []string{
		"http://localhost:5173",
		fmt.Sprintf("http://localhost:%d", cfg.HTTPPort),
	})
	if cfg.LogLevel, err = logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// StoreDSN is the location handed to storage.Open for the configured driver.
func (c *Config) StoreDSN() string {
	if c.StoreDriver == storage.DriverSQLite {
		return c.DatabaseURL
	}
	return c.StateFile
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}

	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}

	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsInt(name string, defaultVal int) (int, error) {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, valStr)
	}

	return val, nil
}
