// Package config loads service settings from flags, SWEETSHOP_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SWEETSHOP"

const (
	KeyAddr            = "addr"
	KeyLogLevel        = "log_level"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyMetricsToken    = "metrics_token"
	KeySeed            = "seed"
	KeyRateLimitPerMin = "rate_limit_per_min"
	KeyTrustProxy      = "trust_proxy"
	KeySequenceScope   = "sequence_scope"
	KeyShutdownTimeout = "shutdown_timeout"
)

const (
	ScopeProcess = "process"
	ScopeStore   = "store"
)

type Config struct {
	Addr            string
	LogLevel        string
	MetricsEnabled  bool
	MetricsToken    string
	Seed            bool
	RateLimitPerMin int
	TrustProxy      bool
	SequenceScope   string
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyMetricsToken, "")
	v.SetDefault(KeySeed, true)
	v.SetDefault(KeyRateLimitPerMin, 0)
	v.SetDefault(KeyTrustProxy, false)
	v.SetDefault(KeySequenceScope, ScopeProcess)
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
}

// RegisterFlags declares the command-line overrides for every key.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyAddr, ":8080", "listen address")
	fs.String(KeyLogLevel, "info", "log level (debug, info, warn, error)")
	fs.Bool(KeyMetricsEnabled, true, "expose /metrics")
	fs.String(KeyMetricsToken, "", "bearer token required for /metrics")
	fs.Bool(KeySeed, true, "load the demo catalog at startup")
	fs.Int(KeyRateLimitPerMin, 0, "per-IP limit for mutating API calls per minute (0 disables)")
	fs.Bool(KeyTrustProxy, false, "rate limit by X-Forwarded-For; only behind a proxy that sets it")
	fs.String(KeySequenceScope, ScopeProcess, "item id sequence scope: process or store")
	fs.Duration(KeyShutdownTimeout, 10*time.Second, "graceful shutdown timeout")
}

// Load resolves settings. Precedence: changed flags, environment, file, defaults.
// file may be empty.
func Load(fs *pflag.FlagSet, file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		Addr:            v.GetString(KeyAddr),
		LogLevel:        v.GetString(KeyLogLevel),
		MetricsEnabled:  v.GetBool(KeyMetricsEnabled),
		MetricsToken:    v.GetString(KeyMetricsToken),
		Seed:            v.GetBool(KeySeed),
		RateLimitPerMin: v.GetInt(KeyRateLimitPerMin),
		TrustProxy:      v.GetBool(KeyTrustProxy),
		SequenceScope:   strings.ToLower(v.GetString(KeySequenceScope)),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.RateLimitPerMin < 0 {
		errs = append(errs, fmt.Errorf("rate_limit_per_min must not be negative, got %d", c.RateLimitPerMin))
	}
	switch c.SequenceScope {
	case ScopeProcess, ScopeStore:
	default:
		errs = append(errs, fmt.Errorf("sequence_scope must be %q or %q, got %q", ScopeProcess, ScopeStore, c.SequenceScope))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}
