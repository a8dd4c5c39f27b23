package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	LogLevel     string `yaml:"log_level"`

	// Сервис виджетов
	MaxPageSize       int    `yaml:"max_page_size"`
	JournalDBPath     string `yaml:"journal_db_path"`
	JournalMigrations string `yaml:"journal_migrations"`

	// Gateway
	WidgetsURL string `yaml:"widgets_url"`
}

func defaults() *Config {
	return &Config{
		Port:              "3000",
		Environment:       "development",
		ReadTimeout:       10,
		WriteTimeout:      10,
		LogLevel:          "info",
		MaxPageSize:       500,
		JournalDBPath:     "",
		JournalMigrations: "migrations/001_init_journal.sql",
		WidgetsURL:        "http://localhost:3002",
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл из
// CONFIG_FILE (если задан), затем переменные окружения.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile читает только YAML-файл поверх значений по умолчанию.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.WriteTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MaxPageSize = getEnvAsInt("MAX_PAGE_SIZE", c.MaxPageSize)
	c.JournalMigrations = getEnv("JOURNAL_MIGRATIONS", c.JournalMigrations)
	c.WidgetsURL = getEnv("WIDGETS_URL", c.WidgetsURL)

	// пустое значение отключает журнал, поэтому getEnv не подходит
	if value, ok := os.LookupEnv("JOURNAL_DB_PATH"); ok {
		c.JournalDBPath = value
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
