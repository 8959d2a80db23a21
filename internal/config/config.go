// Package config loads hubd's configuration: a YAML file (hubd.yaml, in
// /etc/hubd or the working directory), overridden by HUBD_-prefixed
// environment variables, with built-in defaults for any key neither sets, the same
// file-then-env layering takitani-miau's config package applies with
// viper, generalized here to also bind every key to its env var the way
// the teacher's cmd/main.go does with getEnv/getEnvInt.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig configures the PostgreSQL persistence store.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CacheConfig configures the Redis state-value cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NATSConfig configures the notification bus.
type NATSConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// PluginsConfig configures the plugin host.
type PluginsConfig struct {
	Dirs               []string `mapstructure:"dirs"`
	AutoMonitoringCron string   `mapstructure:"auto_monitoring_cron"`
	APIVersion         string   `mapstructure:"api_version"`
}

// TypesConfig configures the type registry's interface definition sources.
type TypesConfig struct {
	InterfaceDirs []string `mapstructure:"interface_dirs"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Config is hubd's full configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	DB      DatabaseConfig `mapstructure:"db"`
	Cache   CacheConfig   `mapstructure:"cache"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Plugins PluginsConfig `mapstructure:"plugins"`
	Types   TypesConfig   `mapstructure:"types"`

	// LoopCapacity bounds the core loop's mailbox; a full mailbox means the
	// caller's Post blocks, which is the intended backpressure.
	LoopCapacity int `mapstructure:"loop_capacity"`
}

// Load reads hubd.yaml (if present) from /etc/hubd and the working
// directory, lets HUBD_-prefixed environment variables override it, falls
// back to built-in defaults for any key neither sets, and unmarshals the
// result into a Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("hubd")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/hubd")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HUBD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "hubd")
	v.SetDefault("db.password", "hubd")
	v.SetDefault("db.name", "hubd")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", "6379")
	v.SetDefault("cache.db", 0)

	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("plugins.dirs", []string{"./plugins"})
	v.SetDefault("plugins.auto_monitoring_cron", "*/5 * * * *")
	v.SetDefault("plugins.api_version", "1.0")

	v.SetDefault("types.interface_dirs", []string{"./interfaces"})

	v.SetDefault("loop_capacity", 256)
}
