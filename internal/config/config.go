package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Uploads  UploadsConfig
	Import   ImportConfig
	Cache    CacheConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
}

// DatabaseConfig holds sqlite settings. An empty Path runs the server
// without a backing store: closures are kept in memory and the expense
// import endpoints are disabled.
type DatabaseConfig struct {
	Path string
}

type UploadsConfig struct {
	Dir string
}

// ImportConfig tunes the expense batch writer.
type ImportConfig struct {
	BatchSize    int `mapstructure:"batch_size"`
	BatchDelayMs int `mapstructure:"batch_delay_ms"`
}

// CacheConfig controls the reference-data cache.
type CacheConfig struct {
	TTLMs int `mapstructure:"ttl_ms"`
}

type LogConfig struct {
	Level string
}

// Load reads configuration from defaults, an optional TOML file and the
// environment. Env overrides use the CAJABOOKS_ prefix, e.g.
// CAJABOOKS_DATABASE_PATH.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "./data/cajabooks.db")
	v.SetDefault("uploads.dir", "")
	v.SetDefault("import.batch_size", 100)
	v.SetDefault("import.batch_delay_ms", 100)
	v.SetDefault("cache.ttl_ms", 5*60*1000)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("CAJABOOKS_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("cajabooks")
	}

	v.SetEnvPrefix("CAJABOOKS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// CAJABOOKS_DATABASE_PATH="" is a valid setting (memory mode), so an
	// empty env var must still override the default.
	v.AllowEmptyEnv(true)

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
