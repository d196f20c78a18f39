package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/database"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database database.Config
	Session  SessionConfig
	Storage  storage.Config
	Settings SettingsConfig
	OpenAI   OpenAIConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig holds workspace cookie configuration.
type SessionConfig struct {
	CookieName      string
	CookieSecret    string
	Duration        time.Duration
	CleanupInterval time.Duration
	Secure          bool
}

// SettingsConfig selects where model settings and credentials are kept.
type SettingsConfig struct {
	Backend    string // "file" or "database"
	Dir        string
	Passphrase string
}

// OpenAIConfig configures the /api/openai proxy.
type OpenAIConfig struct {
	Upstream string
	APIKey   string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/testgen.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "testgen")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("session.cookie_name", "testgen_workspace")
	v.SetDefault("session.cookie_secret", "change-this-secret-in-production-min-32-chars")
	v.SetDefault("session.duration", "24h")
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("session.secure", false)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./data/exports")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.presign_expiry", "15m")

	v.SetDefault("settings.backend", "file")
	v.SetDefault("settings.dir", "./data/settings")
	v.SetDefault("settings.passphrase", "")

	v.SetDefault("openai.upstream", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("openai.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Path = v.GetString("database.path")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Session.CookieName = v.GetString("session.cookie_name")
	config.Session.CookieSecret = v.GetString("session.cookie_secret")
	config.Session.Duration = v.GetDuration("session.duration")
	config.Session.CleanupInterval = v.GetDuration("session.cleanup_interval")
	config.Session.Secure = v.GetBool("session.secure")

	config.Storage.Driver = v.GetString("storage.driver")
	config.Storage.LocalDir = v.GetString("storage.local_dir")
	config.Storage.Bucket = v.GetString("storage.bucket")
	config.Storage.Region = v.GetString("storage.region")
	config.Storage.Prefix = v.GetString("storage.prefix")
	config.Storage.PresignExpiry = v.GetDuration("storage.presign_expiry")

	config.Settings.Backend = v.GetString("settings.backend")
	config.Settings.Dir = v.GetString("settings.dir")
	config.Settings.Passphrase = v.GetString("settings.passphrase")

	config.OpenAI.Upstream = v.GetString("openai.upstream")
	config.OpenAI.APIKey = v.GetString("openai.api_key")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	if len(config.Session.CookieSecret) < 32 {
		return nil, fmt.Errorf("session.cookie_secret must be at least 32 characters")
	}

	return &config, nil
}
