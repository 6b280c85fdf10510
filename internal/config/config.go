package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// keyReplacer maps nested keys onto env names: database.ssl_mode becomes
// REIMX_DATABASE_SSL_MODE.
var keyReplacer = strings.NewReplacer(".", "_")

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ConnectionString renders the lib/pq key-value connection string.
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// TTL returns the configured token lifetime.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// PayoutConfig holds Safe-Wallet export settings
type PayoutConfig struct {
	ChainID string `mapstructure:"chain_id"`
}

// Config is the full application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Payout   PayoutConfig   `mapstructure:"payout"`
}

// Load reads configuration from the given yaml file (default "config.yaml" in
// the working directory) with REIMX_-prefixed environment overrides, e.g.
// REIMX_DATABASE_PASSWORD.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "reimx")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "reimx")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("payout.chain_id", "1")

	v.SetEnvPrefix("REIMX")
	v.SetEnvKeyReplacer(keyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus env cover local runs.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &c, nil
}
