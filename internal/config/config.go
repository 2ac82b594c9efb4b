// Package config loads runtime configuration from environment
// variables (VIBETODO_* prefix) with sane local defaults. Flags bound
// by the CLI override the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every runtime knob for both the REST server and the
// MCP tool server.
type Config struct {
	ListenAddr string `mapstructure:"listen-addr"`

	// StoreBackend selects the document store: memory, sqlite or mongo.
	StoreBackend  string `mapstructure:"store-backend"`
	SQLitePath    string `mapstructure:"sqlite-path"`
	MongoURI      string `mapstructure:"mongo-uri"`
	MongoDatabase string `mapstructure:"mongo-database"`

	// AuthEnabled gates the /auth surface and the bearer-token check
	// on every project route. Off by default for local use.
	AuthEnabled bool          `mapstructure:"auth-enabled"`
	JWTSecret   string        `mapstructure:"jwt-secret"`
	TokenTTL    time.Duration `mapstructure:"token-ttl"`

	CORSOrigin string `mapstructure:"cors-origin"`

	// LogFile, when set, sends server logs to a rotating file instead
	// of stdout.
	LogFile string `mapstructure:"log-file"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("VIBETODO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen-addr", ":3001")
	v.SetDefault("store-backend", "sqlite")
	v.SetDefault("sqlite-path", "vibetodo.db")
	v.SetDefault("mongo-uri", "mongodb://localhost:27017")
	v.SetDefault("mongo-database", "vibe_todo_manager")
	v.SetDefault("auth-enabled", false)
	v.SetDefault("jwt-secret", "")
	v.SetDefault("token-ttl", 7*24*time.Hour)
	v.SetDefault("cors-origin", "*")
	v.SetDefault("log-file", "")

	return v
}

// Load reads configuration from the environment, with the given flag
// set (may be nil) taking precedence.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := newViper()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "memory", "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, sqlite or mongo)", c.StoreBackend)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but no JWT secret is set (VIBETODO_JWT_SECRET)")
	}
	return nil
}
