package command

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/authclient/internal/cli/config"
	"github.com/yndnr/authclient/internal/cli/connection"
	"github.com/yndnr/authclient/internal/cli/output"
	"github.com/yndnr/authclient/internal/core/service"
	"github.com/yndnr/authclient/internal/infra/tlsroots"
	"github.com/yndnr/authclient/internal/storage"
	"github.com/yndnr/authclient/internal/telemetry/logger"
	"github.com/yndnr/authclient/internal/telemetry/metric"
	"github.com/yndnr/authclient/pkg/crypto/adaptive"
)

const runtimeKey = "runtime"

// Runtime holds everything a command needs. It is built on first use so
// that commands such as "version" and "config path" never open storage.
type Runtime struct {
	mu sync.RWMutex

	cfg        *config.CLIConfig
	configPath string
	overrides  map[string]any

	log     logger.Logger
	metrics *metric.Registry
	kv      storage.KVEngine
	ownsKV  bool
	sealer  *adaptive.Sealer

	sessions *service.SessionStore
	client   *connection.AuthClient
}

// deps is a consistent snapshot of the parts that a config reload may swap.
type deps struct {
	cfg      *config.CLIConfig
	sessions *service.SessionStore
	client   *connection.AuthClient
	format   output.Format
}

// runtimeFrom returns the runtime for this app, building it on first use.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	env := envFrom(c)
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}

	cfg, path, overrides, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s):\n%w", path, err)
	}

	rt, err := newRuntime(c.Context, cfg, env)
	if err != nil {
		return nil, err
	}
	rt.configPath = path
	rt.overrides = overrides
	c.App.Metadata[runtimeKey] = rt
	return rt, nil
}

func newRuntime(ctx context.Context, cfg *config.CLIConfig, env *appEnv) (*Runtime, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: env.errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.SetDefault(log)

	rt := &Runtime{
		cfg:     cfg,
		log:     log,
		metrics: metric.NewRegistry(),
	}

	if env.kv != nil {
		rt.kv = env.kv
	} else {
		kvCfg := storage.DefaultKVConfig(cfg.Session.Dir)
		kvCfg.Engine = cfg.Session.Backend
		kvCfg.Redis.Addr = cfg.Session.Redis.Addr
		kvCfg.Redis.Password = cfg.Session.Redis.Password
		kvCfg.Redis.DB = cfg.Session.Redis.DB

		kv, err := storage.Open(ctx, kvCfg, log)
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
		if b, ok := kv.(*storage.BadgerEngine); ok {
			b.RegisterMetrics(rt.metrics.Registerer())
		}
		rt.kv = kv
		rt.ownsKV = true
	}

	if cfg.Session.Encrypt {
		key, err := adaptive.LoadOrCreateKey(cfg.KeyFile())
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("load session key: %w", err)
		}
		rt.sealer, err = adaptive.New(key)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("init session sealer: %w", err)
		}
	}

	if err := rt.connect(cfg); err != nil {
		rt.Close()
		return nil, err
	}

	log.Debug("runtime ready",
		"server", cfg.Server,
		"backend", cfg.Session.Backend,
		"encrypt", cfg.Session.Encrypt)
	return rt, nil
}

// connect (re)builds the API client and the origin-scoped session store.
func (rt *Runtime) connect(cfg *config.CLIConfig) error {
	tlsCfg, err := tlsroots.ClientConfig(tlsroots.ClientOptions{
		CAFile:   cfg.TLS.CAFile,
		CertFile: cfg.TLS.CertFile,
		KeyFile:  cfg.TLS.KeyFile,
	})
	if err != nil {
		return err
	}

	hc := connection.NewHTTPClient(cfg.Server,
		connection.WithTLSConfig(tlsCfg),
		connection.WithLogger(rt.log))

	origin, err := service.Origin(hc.BaseURL())
	if err != nil {
		return fmt.Errorf("server %q: %w", cfg.Server, err)
	}

	sessions := service.NewSessionStore(rt.kv, service.SessionStoreConfig{
		Origin:  origin,
		Sealer:  rt.sealer,
		Metrics: rt.metrics,
		Logger:  rt.log,
	})
	client := connection.NewAuthClient(hc, rt.metrics, rt.log)

	rt.mu.Lock()
	rt.cfg = cfg
	rt.sessions = sessions
	rt.client = client
	rt.mu.Unlock()
	return nil
}

// Reload applies a changed configuration. Server, TLS, output and log
// settings take effect immediately; storage settings need a restart.
func (rt *Runtime) Reload(cfg *config.CLIConfig) {
	rt.mu.RLock()
	prev := rt.cfg
	rt.mu.RUnlock()

	if prev.Session != cfg.Session {
		rt.log.Warn("session storage settings changed; restart to apply")
		cfg.Session = prev.Session
	}
	logger.SetLevel(cfg.Log.Level)

	if err := rt.connect(cfg); err != nil {
		rt.log.Warn("config reload failed", "error", err)
		return
	}
	rt.log.Info("configuration applied", "server", cfg.Server, "output", cfg.Output)
}

func (rt *Runtime) deps() deps {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	f, _ := output.ParseFormat(rt.cfg.Output)
	return deps{cfg: rt.cfg, sessions: rt.sessions, client: rt.client, format: f}
}

func (rt *Runtime) flowOptions() []service.FlowOption {
	return []service.FlowOption{service.WithLogger(rt.log), service.WithMetrics(rt.metrics)}
}

// Close writes the metrics textfile, if configured, and closes storage.
func (rt *Runtime) Close() error {
	var errs []error

	rt.mu.RLock()
	metricsFile := rt.cfg.Metrics.File
	rt.mu.RUnlock()
	if err := rt.metrics.WriteTextfile(metricsFile); err != nil {
		errs = append(errs, err)
	}

	if rt.ownsKV && rt.kv != nil {
		if err := rt.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// closeRuntime closes and forgets the runtime built for this app.
func closeRuntime(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return rt.Close()
}
