// Package config loads process configuration from the environment and an
// optional config file. All settings live under the DUNE_ prefix (e.g.,
// DUNE_KILL_SWITCH, DUNE_TENANT_ID).
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/dunehq/dune/pkg/policy"
)

// Config is the read-only process configuration.
type Config struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	// TenantID is the default tenant for conversations started without an
	// explicit tenant.
	TenantID string `mapstructure:"tenant_id"`

	// KillSwitch is the initial position of the gateway kill switch.
	KillSwitch bool `mapstructure:"kill_switch"`

	// Denylist overrides the built-in forbidden term set.
	Denylist []string `mapstructure:"denylist"`

	// GraphPath optionally points at a YAML graph definition. Empty means
	// the built-in probe -> persuade -> decision flow.
	GraphPath string `mapstructure:"graph_path"`

	MCPTransport string `mapstructure:"mcp_transport"`
	MCPPort      int    `mapstructure:"mcp_port"`
	HTTPPort     int    `mapstructure:"http_port"`

	// RedisAddr enables the Redis session store when non-empty; otherwise
	// sessions live in process memory.
	RedisAddr string `mapstructure:"redis_addr"`

	// SessionKey, when non-empty, is a base64-encoded 32-byte key used to
	// encrypt sessions before they reach the external store.
	SessionKey string `mapstructure:"session_key"`

	// ScrubStoredInput masks the untrusted raw input before sessions are
	// persisted. Stages that echo input stop doing so across restarts.
	ScrubStoredInput bool `mapstructure:"scrub_stored_input"`
}

// Load reads configuration from the environment, and from the given config
// file when path is non-empty. Environment variables win over file values.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("tenant_id", "local-tenant")
	v.SetDefault("kill_switch", false)
	v.SetDefault("denylist", policy.DefaultDenylist)
	v.SetDefault("graph_path", "")
	v.SetDefault("mcp_transport", "stdio")
	v.SetDefault("mcp_port", 8081)
	v.SetDefault("http_port", 8080)
	v.SetDefault("redis_addr", "")
	v.SetDefault("session_key", "")
	v.SetDefault("scrub_stored_input", false)

	v.SetEnvPrefix("DUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Env:          v.GetString("env"),
		LogLevel:     v.GetString("log_level"),
		TenantID:     v.GetString("tenant_id"),
		KillSwitch:   v.GetBool("kill_switch"),
		Denylist:     v.GetStringSlice("denylist"),
		GraphPath:    v.GetString("graph_path"),
		MCPTransport: v.GetString("mcp_transport"),
		MCPPort:      v.GetInt("mcp_port"),
		HTTPPort:     v.GetInt("http_port"),
		RedisAddr:    v.GetString("redis_addr"),

		SessionKey:       v.GetString("session_key"),
		ScrubStoredInput: v.GetBool("scrub_stored_input"),
	}
	return cfg, nil
}

// DecodeSessionKey returns the configured session encryption key, or nil
// when encryption at rest is disabled.
func (c Config) DecodeSessionKey() ([]byte, error) {
	if c.SessionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("session_key is not valid base64: %w", err)
	}
	return key, nil
}

// SlogLevel maps the configured log level onto slog. Unknown values
// default to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
