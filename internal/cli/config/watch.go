package config

import (
	"time"

	"github.com/yndnr/authclient/internal/infra/confloader"
	"github.com/yndnr/authclient/internal/telemetry/logger"
)

// Watch reloads the configuration whenever the file at path changes and
// passes each valid result to onReload. Invalid edits are logged and
// skipped. The caller stops the returned watcher.
func Watch(path string, overrides map[string]any, log logger.Logger, onReload func(*CLIConfig)) (*confloader.Watcher, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if log == nil {
		log = logger.Default()
	}

	w, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(log),
		confloader.WithCoalesce(500*time.Millisecond, 100*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := Load(path, overrides)
		if err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Warn("reloaded config is invalid, keeping previous", "path", path, "error", err)
			return
		}
		log.Info("config reloaded", "path", path)
		onReload(cfg)
	})
	w.StartAsync()

	return w, nil
}
