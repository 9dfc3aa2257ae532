// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers       = []string{"sqlite", "postgres", "mongo"}
	validSessionStores = []string{"memory", "db", "redis"}
	validMailProviders = []string{"smtp", "sendgrid", "log"}
	validJobBackends   = []string{"local", "redis"}
)

type Config struct {
	App      App      `mapstructure:"app"`
	Host     Host     `mapstructure:"host"`
	Security Security `mapstructure:"security"`
	Database Database `mapstructure:"database"`
	Session  Session  `mapstructure:"session"`
	Redis    Redis    `mapstructure:"redis"`
	Mail     Mail     `mapstructure:"mail"`
	Auth     Auth     `mapstructure:"auth"`
	Cleanup  Cleanup  `mapstructure:"cleanup"`
	Jobs     Jobs     `mapstructure:"jobs"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Host struct {
	Port   int      `mapstructure:"port"`
	Domain string   `mapstructure:"domain"`
	CORS   []string `mapstructure:"cors"`
	SSL    SSL      `mapstructure:"ssl"`
}

type SSL struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type Security struct {
	RateLimit int `mapstructure:"rate_limit"` // Requests per second per IP on /auth, 0 disables
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Name   string `mapstructure:"name"` // MongoDB database name
}

type Session struct {
	Store  string        `mapstructure:"store"`
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Cookie string        `mapstructure:"cookie"`
}

type Redis struct {
	URL string `mapstructure:"url"`
}

type Mail struct {
	Provider       string `mapstructure:"provider"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SenderAddress  string `mapstructure:"sender_address"`
	SenderName     string `mapstructure:"sender_name"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ResetBaseURL   string `mapstructure:"reset_base_url"`
}

type Auth struct {
	TokenSize     int           `mapstructure:"token_size"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
}

type Cleanup struct {
	Schedule string `mapstructure:"schedule"`
}

type Jobs struct {
	Backend string `mapstructure:"backend"`
	Queue   string `mapstructure:"queue"`
	Workers int    `mapstructure:"workers"`
	MaxJobs int    `mapstructure:"max_jobs"`
}

var configPath = pflag.String("config", "config.toml", "Path to the TOML config file")

// Path returns the config file path given on the command line
func Path() string {
	if !pflag.Parsed() {
		pflag.Parse()
	}

	return *configPath
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. A missing file is fine as long as
// the environment provides what's required.
func Load(path string) (*Config, error) {
	vp := v.New()

	vp.SetConfigType("toml")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	//
	// ENVS
	//
	vp.BindEnv("app.log_level", "APP_LOG_LEVEL")

	vp.BindEnv("host.port", "HOST_PORT", "PORT")
	vp.BindEnv("host.domain", "HOST_DOMAIN")
	vp.BindEnv("host.cors", "HOST_CORS")

	vp.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	vp.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	vp.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	vp.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	vp.BindEnv("database.driver", "DATABASE_DRIVER")
	vp.BindEnv("database.dsn", "DATABASE_DSN", "MONGO_URI")
	vp.BindEnv("database.name", "DATABASE_NAME")

	vp.BindEnv("session.store", "SESSION_STORE")
	vp.BindEnv("session.secret", "SESSION_SECRET")
	vp.BindEnv("session.ttl", "SESSION_TTL")

	vp.BindEnv("redis.url", "REDIS_URL")

	vp.BindEnv("mail.provider", "MAIL_PROVIDER")
	vp.BindEnv("mail.host", "MAIL_HOST")
	vp.BindEnv("mail.port", "MAIL_PORT")
	vp.BindEnv("mail.username", "MAIL_USERNAME", "MAIL_USER")
	vp.BindEnv("mail.password", "MAIL_PASSWORD", "MAIL_PASS")
	vp.BindEnv("mail.sender_address", "MAIL_SENDER_ADDRESS")
	vp.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")
	vp.BindEnv("mail.base_url", "MAIL_BASE_URL", "BASE_URL")
	vp.BindEnv("mail.reset_base_url", "MAIL_RESET_BASE_URL", "RESET_PASSWORD_BASE_URL")

	vp.BindEnv("jobs.backend", "JOBS_BACKEND")

	//
	// Defaults
	//
	vp.SetDefault("app.log_level", "info")

	vp.SetDefault("host.port", 3000)
	vp.SetDefault("host.domain", "localhost")
	vp.SetDefault("host.cors", []string{"http://localhost:3000"})
	vp.SetDefault("host.ssl.enabled", false)

	vp.SetDefault("security.rate_limit", 10)

	vp.SetDefault("database.name", "weatherapp")

	vp.SetDefault("session.store", "db")
	vp.SetDefault("session.ttl", 24*time.Hour)
	vp.SetDefault("session.cookie", "session")

	vp.SetDefault("mail.provider", "smtp")
	vp.SetDefault("mail.port", 587)
	vp.SetDefault("mail.sender_name", "Weather App")
	vp.SetDefault("mail.base_url", "http://localhost:3000")

	vp.SetDefault("auth.token_size", 32)
	vp.SetDefault("auth.reset_token_ttl", time.Hour)

	vp.SetDefault("cleanup.schedule", "@hourly")

	vp.SetDefault("jobs.backend", "local")
	vp.SetDefault("jobs.queue", "weather")
	vp.SetDefault("jobs.workers", 2)
	vp.SetDefault("jobs.max_jobs", 100)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			vp.SetConfigFile(path)

			if err := vp.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file, %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file, %w", err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	// MONGO_URI alone is enough to pick the mongo driver
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
		if strings.HasPrefix(cfg.Database.DSN, "mongodb") {
			cfg.Database.Driver = "mongo"
		}
	}

	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "database.db"
	}

	if cfg.Mail.ResetBaseURL == "" {
		cfg.Mail.ResetBaseURL = cfg.Mail.BaseURL
	}

	if cfg.Mail.SenderAddress == "" {
		cfg.Mail.SenderAddress = cfg.Mail.Username
	}

	cfg.Mail.BaseURL = strings.TrimRight(cfg.Mail.BaseURL, "/")
	cfg.Mail.ResetBaseURL = strings.TrimRight(cfg.Mail.ResetBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate returns an error if something is critically wrong and the
// application can't run because of that
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if c.Security.RateLimit < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.Driver != "sqlite" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for the %s driver", c.Database.Driver)
	}

	if !slices.Contains(validSessionStores, c.Session.Store) {
		return errors.New("invalid session store provided")
	}

	if c.Session.Store == "db" && c.Database.Driver == "mongo" {
		return errors.New("session.store = \"db\" needs a SQL database, use memory or redis with mongo")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("no session secret set. Set SESSION_SECRET or session.secret in the config file, for example:\n\n%s", genSecret())
	}

	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be bigger than 0")
	}

	if c.Session.Cookie == "" {
		return errors.New("session.cookie can't be empty")
	}

	if !slices.Contains(validJobBackends, c.Jobs.Backend) {
		return errors.New("invalid jobs backend provided")
	}

	if (c.Session.Store == "redis" || c.Jobs.Backend == "redis") && c.Redis.URL == "" {
		return errors.New("redis.url is required by the redis session store and job backend")
	}

	if c.Jobs.Workers <= 0 {
		return errors.New("jobs.workers must be bigger than 0")
	}

	if c.Jobs.MaxJobs <= 0 {
		return errors.New("jobs.max_jobs must be bigger than 0")
	}

	if !slices.Contains(validMailProviders, c.Mail.Provider) {
		return errors.New("invalid mail provider provided")
	}

	switch c.Mail.Provider {
	case "smtp":
		if c.Mail.Host == "" {
			return errors.New("mail.host is required for the smtp provider")
		}
		if c.Mail.Port <= 0 {
			return errors.New("invalid mail port provided")
		}
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return errors.New("mail.sendgrid_api_key is required for the sendgrid provider")
		}
	}

	if c.Mail.Provider != "log" && c.Mail.SenderAddress == "" {
		return errors.New("mail.sender_address can't be empty")
	}

	if c.Mail.BaseURL == "" {
		return errors.New("mail.base_url can't be empty")
	}

	if c.Auth.TokenSize < 16 {
		return errors.New("auth.token_size must be at least 16 bytes")
	}

	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("auth.reset_token_ttl must be bigger than 0")
	}

	if c.Cleanup.Schedule == "" {
		return errors.New("cleanup.schedule can't be empty")
	}

	return nil
}
