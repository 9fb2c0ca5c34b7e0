package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository/redis"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/sqlstore"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/export"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	Mode           string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type StoreConfig struct {
	Driver     string         `mapstructure:"driver"`
	Database   DatabaseConfig `mapstructure:"database"`
	Redis      RedisConfig    `mapstructure:"redis"`
	SQLitePath string         `mapstructure:"sqlite_path"`

	// EncryptionKey is a hex AES key; when set, stored values are sealed.
	EncryptionKey string `mapstructure:"encryption_key"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	Expiry     time.Duration `mapstructure:"expiry"`
	Secure     bool          `mapstructure:"secure"`

	// IdleTimeout drops an unused workspace from memory; its data stays in the store.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type GateConfig struct {
	PasswordHash string `mapstructure:"password_hash"`
}

type ImportConfig struct {
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
}

type EntryConfig struct {
	AutosaveDelay time.Duration `mapstructure:"autosave_delay"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Subject  string `mapstructure:"subject"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	Namespace         string `mapstructure:"namespace"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Session    SessionConfig    `mapstructure:"session"`
	Gate       GateConfig       `mapstructure:"gate"`
	Import     ImportConfig     `mapstructure:"import"`
	Entry      EntryConfig      `mapstructure:"entry"`
	Mail       MailConfig       `mapstructure:"mail"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Log        LogConfig        `mapstructure:"log"`
}

// secrets are read from the environment after the file, prefixed EXCELEASY_.
type secrets struct {
	SessionSecret    string `envconfig:"SESSION_SECRET"`
	GatePasswordHash string `envconfig:"GATE_PASSWORD_HASH"`
	DBHost           string `envconfig:"DB_HOST"`
	DBPort           int    `envconfig:"DB_PORT"`
	DBUser           string `envconfig:"DB_USER"`
	DBPassword       string `envconfig:"DB_PASSWORD"`
	RedisURL         string `envconfig:"REDIS_URL"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	StoreDriver      string `envconfig:"STORE_DRIVER"`
	EncryptionKey    string `envconfig:"STORE_ENCRYPTION_KEY"`
}

const envPrefix = "EXCELEASY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.mode", "release")

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.database.port", 5432)
	v.SetDefault("store.database.sslmode", "disable")
	v.SetDefault("store.redis.url", "redis://localhost:6379/0")
	v.SetDefault("store.redis.max_retries", 3)
	v.SetDefault("store.redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("store.redis.pool_size", 10)
	v.SetDefault("store.sqlite_path", "excel-easy.db")

	v.SetDefault("session.cookie_name", "workspace")
	v.SetDefault("session.expiry", 30*24*time.Hour)
	v.SetDefault("session.idle_timeout", 30*time.Minute)

	v.SetDefault("import.max_upload_size", 10<<20)
	v.SetDefault("entry.autosave_delay", time.Second)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.subject", "Export des dossiers patients")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Workspace-Token"})

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.namespace", "excel_easy")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from the usual locations. A missing file is
// not an error; defaults and the environment still apply. Variables from a
// .env file in the working directory are loaded first without overriding the
// real environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")           // current directory
	v.AddConfigPath("./config")    // config subdirectory
	v.AddConfigPath("/app")        // container root directory
	v.AddConfigPath("/app/config") // container config directory

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return load(v)
}

// LoadFile reads a specific config file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env secrets
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	config.applySecrets(env)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(env secrets) {
	override(&c.Session.Secret, env.SessionSecret)
	override(&c.Gate.PasswordHash, env.GatePasswordHash)
	override(&c.Store.Database.Host, env.DBHost)
	override(&c.Store.Database.User, env.DBUser)
	override(&c.Store.Database.Password, env.DBPassword)
	override(&c.Store.Redis.URL, env.RedisURL)
	override(&c.Mail.Password, env.SMTPPassword)
	override(&c.Store.Driver, env.StoreDriver)
	override(&c.Store.EncryptionKey, env.EncryptionKey)
	if env.DBPort != 0 {
		c.Store.Database.Port = env.DBPort
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	switch strings.ToLower(c.Store.Driver) {
	case StoreMemory, StoreRedis, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return errors.New("mail.host and mail.from are required when mail is enabled")
	}
	return nil
}

// ToRedisConfig converts the redis section for the redis store.
func (c *Config) ToRedisConfig() redis.Config {
	return redis.Config{
		URL:          c.Store.Redis.URL,
		MaxRetries:   c.Store.Redis.MaxRetries,
		RetryBackoff: c.Store.Redis.RetryBackoff,
		PoolSize:     c.Store.Redis.PoolSize,
		MinIdleConns: c.Store.Redis.MinIdleConns,
	}
}

// ToSQLConfig converts the store section for the SQL store.
func (c *Config) ToSQLConfig() sqlstore.Config {
	if strings.ToLower(c.Store.Driver) == StoreSQLite {
		return sqlstore.Config{Driver: sqlstore.DriverSQLite, Path: c.Store.SQLitePath}
	}
	db := c.Store.Database
	return sqlstore.Config{
		Driver:   sqlstore.DriverPostgres,
		Host:     db.Host,
		Port:     db.Port,
		User:     db.User,
		Password: db.Password,
		Name:     db.Name,
		SSLMode:  db.SSLMode,
	}
}

// ToMailConfig converts the mail section for the export mailer.
func (c *Config) ToMailConfig() export.MailConfig {
	return export.MailConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
		From:     c.Mail.From,
		Subject:  c.Mail.Subject,
	}
}
