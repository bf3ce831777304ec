package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		IdleTimeout    time.Duration `yaml:"idleTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Storage struct {
		Driver     string `yaml:"driver"` // filesystem | minio
		ResultsDir string `yaml:"resultsDir"`
		Minio      struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			Prefix     string `yaml:"prefix"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	// Database is optional; an empty driver disables the analysis index.
	Database struct {
		Driver   string `yaml:"driver"` // "" | mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	AI struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"ai"`

	Logger LoggerConfig `yaml:"logger"`
}

// LoggerConfig drives observability.New.
type LoggerConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // json | console
	ServiceName string `yaml:"serviceName"`
	LogFile     string `yaml:"logFile"`
	MaxSize     int    `yaml:"maxSize"` // megabytes
	MaxBackups  int    `yaml:"maxBackups"`
	MaxAge      int    `yaml:"maxAge"` // days
	Compress    bool   `yaml:"compress"`
}

const (
	StorageFilesystem = "filesystem"
	StorageMinio      = "minio"

	DatabaseMySQL    = "mysql"
	DatabasePostgres = "postgres"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8000
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.AllowedOrigins = []string{"*"}
	c.Storage.Driver = StorageFilesystem
	c.Storage.ResultsDir = "results"
	c.Storage.Minio.BucketName = "analysis-results"
	c.Database.SSLMode = "disable"
	c.Logger = LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "analysis-backend",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
	}
	return &c
}

// Load baca file config.yaml di atas default, lalu .env dan environment.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// .env is optional; existing environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.ResultsDir, "RESULTS_DIR")
	setString(&c.Storage.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Catalog.Path, "CATALOG_PATH")
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.Logger.Format, "LOG_FORMAT")
	setString(&c.AI.APIKey, "OPENAI_API_KEY")
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case StorageFilesystem:
		if c.Storage.ResultsDir == "" {
			return errors.New("storage.resultsDir is required for the filesystem driver")
		}
	case StorageMinio:
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.BucketName == "" {
			return errors.New("storage.minio.endpoint and bucketName are required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Database.Driver {
	case "", DatabaseMySQL, DatabasePostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.AI.Enabled && c.AI.APIKey == "" {
		return errors.New("ai.enabled requires ai.apiKey or OPENAI_API_KEY")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
