package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/robfig/cron/v3"

	"github.com/iddaa-lens/laundry/pkg/store"
)

type Config struct {
	Home     string
	Store    StoreConfig
	Database DatabaseConfig
	Tick     TickConfig
	Server   ServerConfig
	Log      LogConfig
}

type StoreConfig struct {
	Kind string
	Path string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type TickConfig struct {
	Schedule string
	// JobTimeout is in minutes; 0 disables the per-job timeout
	JobTimeout int
}

type ServerConfig struct {
	Port     string
	Disabled bool
}

type LogConfig struct {
	Level       string
	Environment string
}

func Load() *Config {
	home := getEnv("LAUNDRY_HOME", defaultHome())
	kind := getEnv("LAUNDRY_STORE", store.KindFile)

	return &Config{
		Home: home,
		Store: StoreConfig{
			Kind: kind,
			Path: getEnv("LAUNDRY_STORE_PATH", defaultStorePath(home, kind)),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "laundry"),
			Password: getEnv("DB_PASSWORD", "laundry"),
			DBName:   getEnv("DB_NAME", "laundry"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Tick: TickConfig{
			Schedule:   getEnv("LAUNDRY_TICK_SCHEDULE", "@every 1m"),
			JobTimeout: getEnvAsInt("LAUNDRY_JOB_TIMEOUT_MINUTES", 30),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Disabled: getEnvAsBool("LAUNDRY_DISABLE_SERVER", false),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Home, validation.Required),
		validation.Field(&c.Store),
		validation.Field(&c.Tick),
		validation.Field(&c.Server),
		validation.Field(&c.Log),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Kind, validation.Required, validation.In(store.KindFile, store.KindSQLite, store.KindPostgres)),
		validation.Field(&s.Path, validation.When(s.Kind != store.KindPostgres, validation.Required)),
	)
}

func (t TickConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Schedule, validation.Required, validation.By(cronSpec)),
		validation.Field(&t.JobTimeout, validation.Min(0)),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.When(!s.Disabled, validation.Required, is.Port)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error")),
	)
}

func cronSpec(value interface{}) error {
	spec, _ := value.(string)
	_, err := cron.ParseStandard(spec)
	return err
}

// JobTimeout is the per-job connector timeout; zero means none
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Tick.JobTimeout) * time.Minute
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Kind:        c.Store.Kind,
		Path:        c.Store.Path,
		DatabaseURL: c.DatabaseURL(),
	}
}

func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	return "postgres://" + c.Database.User + ":" + c.Database.Password +
		"@" + c.Database.Host + ":" + c.Database.Port +
		"/" + c.Database.DBName + "?sslmode=" + c.Database.SSLMode
}

func defaultHome() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".laundry")
	}
	return ".laundry"
}

func defaultStorePath(home, kind string) string {
	if kind == store.KindSQLite {
		return filepath.Join(home, "laundry.db")
	}
	return filepath.Join(home, "laundry.yaml")
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
