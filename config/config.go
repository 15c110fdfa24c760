package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from an optional
// YAML file, then .env, then the process environment, later sources winning.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	CacheBackend string `yaml:"cache_backend"`
	CacheDir     string `yaml:"cache_dir"`
	SQLitePath   string `yaml:"sqlite_path"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`

	MaxUploadMB       int `yaml:"max_upload_mb"`
	RenderConcurrency int `yaml:"render_concurrency"`
	ChartWidth        int `yaml:"chart_width"`
	ChartHeight       int `yaml:"chart_height"`

	ChromeBin          string `yaml:"chrome_bin"`
	SnapshotTimeoutSec int    `yaml:"snapshot_timeout_sec"`
	MaxRetries         int    `yaml:"max_retries"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ListenAddr: ":8080",

		CacheBackend: "file",
		CacheDir:     "./cache",
		SQLitePath:   "./cache/dashboard.db",

		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "dashboard",
		PostgresDB:      "dashboard",
		PostgresSSLMode: "disable",

		MaxUploadMB:       32,
		RenderConcurrency: 3,
		ChartWidth:        640,
		ChartHeight:       360,

		SnapshotTimeoutSec: 30,
		MaxRetries:         3,

		LogLevel: "info",
	}
}

// Load builds the configuration from all sources.
func Load() *Config {
	cfg := Defaults()

	path := getEnv("CONFIG_PATH", "dashboard.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("[config] Ignoring %s: %v", path, err)
		} else {
			log.Printf("[config] Loaded %s", path)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using system env vars")
	}

	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)

	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.CacheDir = getEnv("CACHE_DIR", c.CacheDir)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.PostgresHost = getEnv("POSTGRES_HOST", c.PostgresHost)
	c.PostgresPort = getEnv("POSTGRES_PORT", c.PostgresPort)
	c.PostgresUser = getEnv("POSTGRES_USER", c.PostgresUser)
	c.PostgresPassword = getEnv("POSTGRES_PASSWORD", c.PostgresPassword)
	c.PostgresDB = getEnv("POSTGRES_DB", c.PostgresDB)
	c.PostgresSSLMode = getEnv("POSTGRES_SSLMODE", c.PostgresSSLMode)

	c.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.RenderConcurrency = getEnvInt("RENDER_CONCURRENCY", c.RenderConcurrency)
	c.ChartWidth = getEnvInt("CHART_WIDTH", c.ChartWidth)
	c.ChartHeight = getEnvInt("CHART_HEIGHT", c.ChartHeight)

	c.ChromeBin = getEnv("CHROME_BIN", c.ChromeBin)
	c.SnapshotTimeoutSec = getEnvInt("SNAPSHOT_TIMEOUT_SEC", c.SnapshotTimeoutSec)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SnapshotTimeout is the per-attempt page capture timeout.
func (c *Config) SnapshotTimeout() time.Duration {
	return time.Duration(c.SnapshotTimeoutSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
