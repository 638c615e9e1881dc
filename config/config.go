// Package config loads agent configuration from config.toml merged with
// LACONIA_-prefixed environment variables, mirroring the original source's
// Figment::new().merge(Toml::file(...)).merge(Env::prefixed("LACONIA")).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the agent's full runtime configuration.
type Config struct {
	// ListenAddr is the TCP host:port the connection loop accepts on.
	ListenAddr string `mapstructure:"listen_addr"`

	// MaxFrameBytes caps a single frame's declared length; frames larger
	// than this are rejected and the connection closed. Zero selects
	// protocol.DefaultMaxFrameBytes.
	MaxFrameBytes int32 `mapstructure:"max_frame_bytes"`

	// AcceptRateLimit and AcceptBurst gate the Accept loop via a token
	// bucket (golang.org/x/time/rate), protecting the process from an
	// accept storm.
	AcceptRateLimit float64 `mapstructure:"accept_rate_limit"`
	AcceptBurst     int     `mapstructure:"accept_burst"`

	// ControlPlaneEndpoints are the etcd endpoints backing the liveness
	// registrar.
	ControlPlaneEndpoints []string `mapstructure:"controlplane_endpoints"`

	// LivenessTTLSeconds is the lease TTL the registrar grants at checkin.
	LivenessTTLSeconds int64 `mapstructure:"liveness_ttl_seconds"`

	// LogLevel is a zapcore.Level name ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"log_level"`
}

// LivenessTTL returns LivenessTTLSeconds as a time.Duration.
func (c Config) LivenessTTL() time.Duration {
	return time.Duration(c.LivenessTTLSeconds) * time.Second
}

func defaults() Config {
	return Config{
		ListenAddr:            "[::1]:8080",
		MaxFrameBytes:         100 * 1024 * 1024,
		AcceptRateLimit:       500,
		AcceptBurst:           50,
		ControlPlaneEndpoints: nil,
		LivenessTTLSeconds:    10,
		LogLevel:              "info",
	}
}

// Load reads configFile (TOML; missing file is not an error) and merges in
// any LACONIA_-prefixed environment variables, e.g. LACONIA_LISTEN_ADDR.
func Load(configFile string) (Config, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("max_frame_bytes", d.MaxFrameBytes)
	v.SetDefault("accept_rate_limit", d.AcceptRateLimit)
	v.SetDefault("accept_burst", d.AcceptBurst)
	v.SetDefault("controlplane_endpoints", d.ControlPlaneEndpoints)
	v.SetDefault("liveness_ttl_seconds", d.LivenessTTLSeconds)
	v.SetDefault("log_level", d.LogLevel)

	v.SetConfigFile(configFile)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		// With an explicit SetConfigFile, viper reports a missing file as a
		// plain not-exist error rather than ConfigFileNotFoundError.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix("laconia")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
