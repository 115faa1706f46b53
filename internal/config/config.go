package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the whole process configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" validate:"required,numeric"`
	Mode           string        `yaml:"mode" validate:"oneof=debug release test"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// "pgx" uses the gorm postgres driver as is, "postgres" goes through lib/pq.
	Driver       string `yaml:"driver" validate:"oneof=pgx postgres"`
	Host         string `yaml:"host" validate:"required"`
	Port         string `yaml:"port" validate:"required,numeric"`
	User         string `yaml:"user" validate:"required"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name" validate:"required"`
	SSLMode      string `yaml:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	TimeZone     string `yaml:"timezone"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `yaml:"max_idle_conns" validate:"gte=0"`
}

type LogConfig struct {
	File       string        `yaml:"file"`
	Level      string        `yaml:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	MaxSizeMB  int           `yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int           `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int           `yaml:"max_age_days" validate:"gte=0"`
	Compress   bool          `yaml:"compress"`
	Stdout     bool          `yaml:"stdout"`
	SlowQuery  time.Duration `yaml:"slow_query"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" validate:"required,min=8"`
	TokenTTL      time.Duration `yaml:"token_ttl" validate:"gt=0"`
	AdminName     string        `yaml:"admin_name"`
	AdminEmail    string        `yaml:"admin_email" validate:"omitempty,email"`
	AdminPassword string        `yaml:"admin_password" validate:"required_with=AdminEmail"`
}

type SearchConfig struct {
	TimeZone       string `yaml:"timezone" validate:"required"`
	DefaultResults int    `yaml:"default_results" validate:"gte=1,lte=20"`

	Location *time.Location `yaml:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Mode:           "release",
			RequestTimeout: 10 * time.Second,
			CORSOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:   "pgx",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "bus_info",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			File:       "./logs/app.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 7,
			MaxAgeDays: 7,
			Compress:   true,
			SlowQuery:  200 * time.Millisecond,
		},
		Auth: AuthConfig{
			JWTSecret: "supersecret",
			TokenTTL:  72 * time.Hour,
			AdminName: "Administrator",
		},
		Search: SearchConfig{
			TimeZone:       "UTC",
			DefaultResults: 3,
		},
	}
}

// Load builds the configuration from defaults, .env, the YAML file named by CONFIG_FILE
// and the environment, in that order, then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	c.Server.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.TimeZone = getEnv("DB_TIMEZONE", c.Database.TimeZone)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)

	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.Log.MaxAgeDays)
	c.Log.Compress = getEnvBool("LOG_COMPRESS", c.Log.Compress)
	c.Log.Stdout = getEnvBool("LOG_STDOUT", c.Log.Stdout)
	c.Log.SlowQuery = getEnvDuration("LOG_SLOW_QUERY", c.Log.SlowQuery)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvDuration("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.AdminName = getEnv("ADMIN_NAME", c.Auth.AdminName)
	c.Auth.AdminEmail = getEnv("ADMIN_EMAIL", c.Auth.AdminEmail)
	c.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", c.Auth.AdminPassword)

	c.Search.TimeZone = getEnv("SEARCH_TIMEZONE", c.Search.TimeZone)
	c.Search.DefaultResults = getEnvInt("SEARCH_DEFAULT_RESULTS", c.Search.DefaultResults)
}

// Validate checks field constraints and resolves the search time zone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := time.LoadLocation(c.Search.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid configuration: search time zone: %w", err)
	}
	c.Search.Location = loc
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("ignoring malformed integer setting")
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("ignoring malformed boolean setting")
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("ignoring malformed duration setting")
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
