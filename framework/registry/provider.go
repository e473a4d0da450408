package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations for a container.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other registrations inside Boot().
//
//	type ClockServiceProvider struct{ registry.BaseProvider }
//
//	func (p *ClockServiceProvider) Register(app *registry.Container) error {
//	    _, err := registry.Provide[Clock](app, &SystemClock{}, "", "")
//	    return err
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other registrations here — use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	// Safe to resolve and use any registration here.
	Boot(app *Container) error

	// Provides returns the keys this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil if the provider is always eager.
	Provides() []Key

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() keys is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []Key         { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	stages     map[ServiceProvider]*Container
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
		stages:     make(map[ServiceProvider]*Container),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	r.mu.Unlock()

	if provider.IsDeferred() {
		return r.interceptDeferred(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return err
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	// If already booted, boot this provider immediately
	if booted {
		return provider.Boot(r.app)
	}
	return nil
}

// interceptDeferred registers a lazy builder for each deferred key.
// The first resolution triggers real registration + boot in a staging
// container owned by this registry.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) error {
	for _, key := range provider.Provides() {
		builder := &deferredBuilder{registry: r, provider: provider, key: key}
		if err := builder.Connect(r.app); err != nil {
			return err
		}
		if err := r.app.insert([]Key{key}, builder); err != nil {
			return err
		}
	}
	return nil
}

// stageFor lazily creates the staging container for a deferred provider,
// running its Register (and Boot, when the registry is already booted)
// exactly once.
func (r *ProviderRegistry) stageFor(provider ServiceProvider) (*Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stage, ok := r.stages[provider]; ok {
		return stage, nil
	}

	stage := New(
		WithDescription(fmt.Sprintf("deferred provider %T", provider)),
		WithMetadata(r.app.meta),
		WithLogger(r.app.log),
	)
	if err := provider.Register(stage); err != nil {
		return nil, err
	}
	if r.booted {
		if err := provider.Boot(stage); err != nil {
			return nil, err
		}
	}
	r.stages[provider] = stage
	return stage, nil
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered. Idempotent.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	eager := make([]ServiceProvider, len(r.eager))
	copy(eager, r.eager)
	r.mu.Unlock()

	for _, provider := range eager {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ServiceProvider, len(r.eager))
	copy(out, r.eager)
	return out
}

// ── deferredBuilder ───────────────────────────────────────────────────────────

// deferredBuilder stands in for a deferred provider's registration: the
// first Build loads the provider into a staging container and delegates
// there, so singleton semantics are those of the real builder.
type deferredBuilder struct {
	registry *ProviderRegistry
	provider ServiceProvider
	key      Key

	mu        sync.Mutex
	container *Container
}

func (b *deferredBuilder) Connect(c *Container) error {
	if c == nil {
		return NewInvalidArgumentError(b.key.Service, "cannot connect a nil container", nil)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container != nil && b.container != c {
		return ErrAlreadyConnected
	}
	b.container = c
	return nil
}

func (b *deferredBuilder) Build() (any, error) {
	stage, err := b.registry.stageFor(b.provider)
	if err != nil {
		return nil, NewConstructionError(b.key.Service, err)
	}
	instance, ok, err := stage.lookup(b.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewConstructionError(b.key.Service,
			errors.New("deferred provider did not register the promised key"))
	}
	return instance, nil
}
