package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Session storage backends.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// CLIConfig is the configuration for authclient.
type CLIConfig struct {
	// Server is the authentication API base URL.
	Server string `koanf:"server" yaml:"server"`
	// Output is the default output format (table, json, yaml).
	Output string `koanf:"output" yaml:"output"`

	Session SessionConfig `koanf:"session" yaml:"session"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	TLS     TLSConfig     `koanf:"tls" yaml:"tls"`
	Metrics MetricsConfig `koanf:"metrics" yaml:"metrics"`
}

// SessionConfig selects where the session pair is kept.
type SessionConfig struct {
	Backend string `koanf:"backend" yaml:"backend"`
	Dir     string `koanf:"dir" yaml:"dir"`
	// Encrypt seals the stored token with a key kept next to the store.
	Encrypt bool        `koanf:"encrypt" yaml:"encrypt"`
	Redis   RedisConfig `koanf:"redis" yaml:"redis"`
}

// RedisConfig configures the shared Redis backend.
type RedisConfig struct {
	Addr     string `koanf:"addr" yaml:"addr"`
	Password string `koanf:"password" yaml:"password,omitempty"`
	DB       int    `koanf:"db" yaml:"db"`
}

// LogConfig configures diagnostics on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// TLSConfig configures HTTPS trust.
type TLSConfig struct {
	CAFile   string `koanf:"cafile" yaml:"cafile,omitempty"`
	CertFile string `koanf:"certfile" yaml:"certfile,omitempty"`
	KeyFile  string `koanf:"keyfile" yaml:"keyfile,omitempty"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `koanf:"file" yaml:"file,omitempty"`
}

// HomeDir returns ~/.authclient, or ./.authclient when the home directory
// is unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".authclient"
	}
	return filepath.Join(home, ".authclient")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// DefaultHistoryPath returns the REPL history file path.
func DefaultHistoryPath() string {
	return filepath.Join(HomeDir(), "history")
}

// Default returns the default configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://localhost:5000",
		Output: OutputTable,
		Session: SessionConfig{
			Backend: BackendBadger,
			Dir:     filepath.Join(HomeDir(), "session"),
			Encrypt: true,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// KeyFile returns the path of the token sealing key.
func (c *CLIConfig) KeyFile() string {
	return filepath.Join(c.Session.Dir, "key")
}

// Validate checks the configuration for values the client cannot use.
// All problems are reported together.
func (c *CLIConfig) Validate() error {
	var errs []error

	server := c.Server
	if server != "" && !strings.Contains(server, "://") {
		// A bare host:port is dialled over http.
		server = "http://" + server
	}
	if u, err := url.Parse(server); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("server: %q is not an http(s) URL", c.Server))
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("output: %q is not one of table, json, yaml", c.Output))
	}

	switch c.Session.Backend {
	case BackendBadger:
		if c.Session.Dir == "" {
			errs = append(errs, errors.New("session.dir: required for the badger backend"))
		}
	case BackendRedis:
		if c.Session.Redis.Addr == "" {
			errs = append(errs, errors.New("session.redis.addr: required for the redis backend"))
		}
		if c.Session.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("session.redis.db: %d is negative", c.Session.Redis.DB))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("session.backend: %q is not one of badger, redis, memory", c.Session.Backend))
	}

	if c.Session.Encrypt && c.Session.Dir == "" {
		errs = append(errs, errors.New("session.dir: required to keep the encryption key"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: %q is not one of console, json", c.Log.Format))
	}

	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("tls: certfile and keyfile must be set together"))
	}

	return errors.Join(errs...)
}
