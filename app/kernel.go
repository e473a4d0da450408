package app

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/loomkit/loom/framework/config"
	"github.com/loomkit/loom/framework/inspect"
	"github.com/loomkit/loom/framework/metadata"
	"github.com/loomkit/loom/framework/providers"
	"github.com/loomkit/loom/framework/registry"
)

// Application is the composition root. It embeds the root service container
// and its ProviderRegistry so user code can call app.Apply(), app.Resolve()
// and app.Register() directly.
type Application struct {
	*registry.Container
	Providers *registry.ProviderRegistry
}

// New creates and bootstraps the application around a root container that
// reads descriptors from the given metadata source.
func New(meta metadata.Source, envFiles ...string) *Application {
	c := registry.New(
		registry.WithDescription("application root"),
		registry.WithMetadata(meta),
	)
	app := &Application{
		Container: c,
		Providers: registry.NewProviderRegistry(c),
	}

	// Framework core providers; user providers are registered after these.
	app.mustRegister(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	app.mustRegister(&providers.LoggingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider registry.ServiceProvider) error {
	return a.Providers.Register(provider)
}

func (a *Application) mustRegister(provider registry.ServiceProvider) {
	if err := a.Providers.Register(provider); err != nil {
		log.Fatalf("app: registering %T: %v", provider, err)
	}
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return registry.MustGet[*config.Config](a.Container)
}

// Logger resolves the shared *zap.Logger from the container.
func (a *Application) Logger() *zap.Logger {
	return registry.MustGet[*zap.Logger](a.Container)
}

// Run boots the application (if needed) and serves the inspection endpoint
// until the listener fails.
func (a *Application) Run() error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg := a.Config()
	if !cfg.Inspect.Enabled {
		return fmt.Errorf("app: inspection endpoint disabled, nothing to serve")
	}

	a.Logger().Info("inspector listening",
		zap.String("app", cfg.App.Name),
		zap.String("addr", cfg.Inspect.Addr),
		zap.String("env", cfg.App.Env),
	)
	return http.ListenAndServe(cfg.Inspect.Addr, inspect.Handler(a.Container))
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
