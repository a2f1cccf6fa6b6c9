// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package config loads authcore configuration from defaults, a YAML file,
// AUTHCORE_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/tienda/authcore/internal/logging"
	"github.com/tienda/authcore/internal/xdg"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AUTHCORE_"

// DevSecret is the built-in signing secret for local development. It is
// refused unless auth.allow_dev_secret is set.
//
//nolint:gosec // G101: well-known development value, rejected by default
const DevSecret = "authcore-development-secret"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the complete process configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Store   StoreConfig   `koanf:"store"`
	Auth    AuthConfig    `koanf:"auth"`
}

// HTTPConfig configures the command API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr" env:"HTTP_ADDR"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" env:"METRICS_ADDR"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Format string `koanf:"format" env:"LOG_FORMAT"`
	Level  string `koanf:"level" env:"LOG_LEVEL"`
}

// StoreConfig selects and tunes the credential store.
type StoreConfig struct {
	Driver         string        `koanf:"driver" env:"STORE_DRIVER"`
	DSN            string        `koanf:"dsn" env:"STORE_DSN"`
	MaxConns       int32         `koanf:"max_conns" env:"STORE_MAX_CONNS"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" env:"STORE_CONNECT_TIMEOUT"`
}

// AuthConfig holds the token signing secret.
type AuthConfig struct {
	Secret         string `koanf:"secret" env:"AUTH_SECRET"`
	AllowDevSecret bool   `koanf:"allow_dev_secret" env:"AUTH_ALLOW_DEV_SECRET"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: "127.0.0.1:8080"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Log:     LogConfig{Format: "json", Level: "info"},
		Store: StoreConfig{
			Driver:         DriverPostgres,
			MaxConns:       10,
			ConnectTimeout: 15 * time.Second,
		},
	}
}

// flagKeys maps flag names registered by RegisterFlags to config keys.
var flagKeys = map[string]string{
	"http-addr":             "http.addr",
	"metrics-addr":          "metrics.addr",
	"log-format":            "log.format",
	"log-level":             "log.level",
	"store-driver":          "store.driver",
	"store-dsn":             "store.dsn",
	"store-max-conns":       "store.max_conns",
	"auth-allow-dev-secret": "auth.allow_dev_secret",
}

// RegisterFlags adds the configuration override flags to fs. The signing
// secret has no flag so it never appears in process listings.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTP.Addr, "command API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health listen address (empty disables)")
	fs.String("log-format", d.Log.Format, "log format (json, text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("store-driver", d.Store.Driver, "credential store driver (postgres, sqlite)")
	fs.String("store-dsn", "", "credential store DSN or sqlite file path")
	fs.Int32("store-max-conns", d.Store.MaxConns, "maximum pooled store connections")
	fs.Bool("auth-allow-dev-secret", false, "accept the built-in development signing secret")
}

// LoadOptions tells Load where to read from.
type LoadOptions struct {
	// Path is an optional YAML file. A missing file is an error when set.
	Path string
	// Flags holds flags registered with RegisterFlags. Only flags the user
	// changed override other sources.
	Flags *pflag.FlagSet
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load builds a Config from defaults, file, environment and flags. A sqlite
// store without a DSN defaults to the XDG data dir. The result is not
// validated; call Validate.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if opts.Path != "" {
		if err := k.Load(file.Provider(opts.Path), yaml.Parser()); err != nil {
			return cfg, oops.Code("CONFIG_LOAD_FAILED").With("path", opts.Path).Wrap(err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return cfg, oops.Code("CONFIG_LOAD_FAILED").With("path", opts.Path).Wrap(err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: opts.Environ}); err != nil {
		return cfg, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}

	if opts.Flags != nil {
		flags := koanf.New(".")
		provider := posflag.ProviderWithFlag(opts.Flags, ".", nil, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := flags.Load(provider, nil); err != nil {
			return cfg, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
		if err := flags.Unmarshal("", &cfg); err != nil {
			return cfg, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	if cfg.Store.Driver == DriverSQLite && cfg.Store.DSN == "" {
		// Desktop installs keep the store under the XDG data dir. When HOME
		// is unknown the DSN stays empty and Validate reports it.
		if path, err := xdg.DefaultSQLitePath(); err == nil {
			cfg.Store.DSN = path
		}
	}

	return cfg, nil
}

// Validate reports every invalid setting at once. The signing secret is
// checked separately by SigningSecret since only token-issuing commands
// need it.
func (c Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, "store.driver must be postgres or sqlite")
	}
	if c.Store.DSN == "" {
		problems = append(problems, "store.dsn is required")
	}
	if c.Store.MaxConns < 0 {
		problems = append(problems, "store.max_conns cannot be negative")
	}
	if c.Store.ConnectTimeout < 0 {
		problems = append(problems, "store.connect_timeout cannot be negative")
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, "http.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		problems = append(problems, "log.format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level must be debug, info, warn or error")
	}

	if len(problems) > 0 {
		return oops.Code("CONFIG_INVALID").
			With("problems", problems).
			Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SigningSecret returns the secret to sign tokens with. An empty secret
// falls back to DevSecret only when AllowDevSecret is set, and DevSecret is
// refused otherwise.
func (c Config) SigningSecret() (string, error) {
	secret := c.Auth.Secret
	if secret == "" {
		if !c.Auth.AllowDevSecret {
			return "", oops.Code("CONFIG_INVALID").Errorf("auth.secret is required")
		}
		return DevSecret, nil
	}
	if secret == DevSecret && !c.Auth.AllowDevSecret {
		return "", oops.Code("CONFIG_INVALID").Errorf("auth.secret is the development secret; set auth.allow_dev_secret to use it")
	}
	return secret, nil
}
