package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from a config file, a .env
// file and environment variables (in increasing order of precedence).
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Cache     CacheConfig     `mapstructure:"cache"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int    `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	Domain        string `mapstructure:"domain"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

// StorageConfig selects the key-value backend the content document lives in.
type StorageConfig struct {
	Driver     string        `mapstructure:"driver"` // sqlite, file, redis or memory
	Key        string        `mapstructure:"key"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	FileDir    string        `mapstructure:"file_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AdminConfig struct {
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	AttemptWindow  time.Duration `mapstructure:"attempt_window"`
}

type AnalyticsConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type CacheConfig struct {
	Dir    string        `mapstructure:"dir"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// MinIOConfig enables object-storage backups when Endpoint is set.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Address is the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Enabled reports whether backups to object storage are configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

// Load reads configuration. configFile may be empty, in which case
// ./config.yaml is used when present.
func Load(configFile string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("VITRINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.domain", "http://localhost:8080")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.key", "portfolio-content")
	v.SetDefault("storage.sqlite_path", "vitrine.db")
	v.SetDefault("storage.file_dir", "data")
	v.SetDefault("storage.timeout", 5*time.Second)
	v.SetDefault("redis.prefix", "vitrine:")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.session_timeout", 30*time.Minute)
	v.SetDefault("admin.max_attempts", 5)
	v.SetDefault("admin.attempt_window", 15*time.Minute)
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.max_age", 24*time.Hour)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("minio.bucket", "portfolio-backups")
	v.SetDefault("minio.prefix", "backups/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// bindEnv maps the short environment names used in deployments. Every key
// is also reachable through its VITRINE_ prefixed form.
func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"server.port":             "PORT",
		"server.session_secret":   "SESSION_SECRET",
		"server.domain":           "DOMAIN",
		"storage.sqlite_path":     "SQLITE_DB",
		"redis.addr":              "REDIS_ADDR",
		"redis.password":          "REDIS_PASSWORD",
		"admin.password":          "ADMIN_PASSWORD",
		"analytics.sqlite_path":   "ANALYTICS_DB",
		"smtp.host":               "SMTP_HOST",
		"smtp.port":               "SMTP_PORT",
		"smtp.user":               "SMTP_USER",
		"smtp.password":           "SMTP_PASSWORD",
		"smtp.from":               "SMTP_FROM",
		"smtp.to":                 "SMTP_TO",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"minio.bucket":            "MINIO_BUCKET",
	}

	for key, env := range mappings {
		prefixed := "VITRINE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	switch cfg.Storage.Driver {
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			return errors.New("storage sqlite_path is required for the sqlite driver")
		}
	case "file":
		if cfg.Storage.FileDir == "" {
			return errors.New("storage file_dir is required for the file driver")
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			return errors.New("redis addr is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Key == "" {
		return errors.New("storage key is required")
	}
	if cfg.Admin.SessionTimeout <= 0 {
		return errors.New("admin session_timeout must be positive")
	}
	if cfg.MinIO.Enabled() {
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Server.SessionSecret == "" {
		return errors.New("session secret is required (SESSION_SECRET)")
	}
	if c.Admin.Password == "" {
		return errors.New("admin password is required (ADMIN_PASSWORD)")
	}
	return nil
}
