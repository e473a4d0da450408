package providers

import (
	"go.uber.org/zap"

	"github.com/loomkit/loom/framework/config"
	"github.com/loomkit/loom/framework/logging"
	"github.com/loomkit/loom/framework/registry"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// registers it as the *config.Config singleton.
type ConfigServiceProvider struct {
	registry.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *registry.Container) error {
	_, err := registry.Provide[*config.Config](app, config.Load(p.EnvFiles...), "", "")
	return err
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the shared zap logger from the loaded
// configuration and registers it as the *zap.Logger singleton.
//
// The logger depends on *config.Config, so the work happens in Boot, where
// resolving other registrations is safe.
type LoggingServiceProvider struct {
	registry.BaseProvider
}

func (p *LoggingServiceProvider) Register(_ *registry.Container) error { return nil }

func (p *LoggingServiceProvider) Boot(app *registry.Container) error {
	cfg, ok, err := registry.Get[*config.Config](app)
	if err != nil {
		return err
	}

	var log *zap.Logger
	if ok {
		log, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}
	} else {
		log = logging.Nop()
	}

	_, err = registry.Provide[*zap.Logger](app, log, "", "")
	return err
}
