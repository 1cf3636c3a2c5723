package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnknownKey is returned for a key that is not part of CLIConfig.
var ErrUnknownKey = errors.New("config: unknown key")

type field struct {
	get    func(*CLIConfig) any
	set    func(*CLIConfig, string) error
	secret bool
}

func str(p func(*CLIConfig) *string) field {
	return field{
		get: func(c *CLIConfig) any { return *p(c) },
		set: func(c *CLIConfig, v string) error { *p(c) = v; return nil },
	}
}

var fields = map[string]field{
	"server":          str(func(c *CLIConfig) *string { return &c.Server }),
	"output":          str(func(c *CLIConfig) *string { return &c.Output }),
	"session.backend": str(func(c *CLIConfig) *string { return &c.Session.Backend }),
	"session.dir":     str(func(c *CLIConfig) *string { return &c.Session.Dir }),
	"session.encrypt": {
		get: func(c *CLIConfig) any { return c.Session.Encrypt },
		set: func(c *CLIConfig, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("session.encrypt: %q is not a boolean", v)
			}
			c.Session.Encrypt = b
			return nil
		},
	},
	"session.redis.addr": str(func(c *CLIConfig) *string { return &c.Session.Redis.Addr }),
	"session.redis.password": {
		get:    func(c *CLIConfig) any { return c.Session.Redis.Password },
		set:    func(c *CLIConfig, v string) error { c.Session.Redis.Password = v; return nil },
		secret: true,
	},
	"session.redis.db": {
		get: func(c *CLIConfig) any { return c.Session.Redis.DB },
		set: func(c *CLIConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("session.redis.db: %q is not an integer", v)
			}
			c.Session.Redis.DB = n
			return nil
		},
	},
	"log.level":    str(func(c *CLIConfig) *string { return &c.Log.Level }),
	"log.format":   str(func(c *CLIConfig) *string { return &c.Log.Format }),
	"tls.cafile":   str(func(c *CLIConfig) *string { return &c.TLS.CAFile }),
	"tls.certfile": str(func(c *CLIConfig) *string { return &c.TLS.CertFile }),
	"tls.keyfile":  str(func(c *CLIConfig) *string { return &c.TLS.KeyFile }),
	"metrics.file": str(func(c *CLIConfig) *string { return &c.Metrics.File }),
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key formatted as a string.
func (c *CLIConfig) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return fmt.Sprint(f.get(c)), nil
}

// Set parses value and assigns it to key.
func (c *CLIConfig) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.set(c, value)
}

// Flatten returns the configuration as dotted keys. Secrets are masked
// unless withSecrets is set.
func (c *CLIConfig) Flatten(withSecrets bool) map[string]any {
	out := make(map[string]any, len(fields))
	for k, f := range fields {
		v := f.get(c)
		if f.secret && !withSecrets {
			if s, _ := v.(string); s != "" {
				v = "********"
			}
		}
		out[k] = v
	}
	return out
}
