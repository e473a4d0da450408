package registry

import (
	"reflect"
	"sync"

	"github.com/loomkit/loom/framework/construct"
)

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder is the strategy for producing instances of one concrete type.
// A builder is connected to exactly one container, which it uses to resolve
// nested dependency services during construction.
type Builder interface {
	// Connect binds the builder to its owning container. Connecting the
	// same container again is a no-op; connecting a different one is an
	// error. Build before Connect is a usage error.
	Connect(c *Container) error

	// Build returns a ready-to-use instance, or a ConstructionError.
	Build() (any, error)
}

// builderCore carries the construction recipe shared by the transient and
// singleton variants: the concrete type, the string-encoded constructor
// parameters and post-construction properties, and the owning container.
type builderCore struct {
	objectType reflect.Type
	params     map[string]string
	props      map[string]string

	mu        sync.Mutex
	container *Container
}

func (b *builderCore) Connect(c *Container) error {
	if c == nil {
		return NewInvalidArgumentError(b.objectType, "cannot connect a nil container", nil)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container != nil && b.container != c {
		return ErrAlreadyConnected
	}
	b.container = c
	return nil
}

func (b *builderCore) connected() *Container {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.container
}

// construct runs one construction through the collaborator, resolving
// dependencies via the connected container.
func (b *builderCore) construct() (any, error) {
	c := b.connected()
	if c == nil {
		return nil, NewConstructionError(b.objectType, ErrNotConnected)
	}
	obj, err := construct.New(b.objectType, b.params, b.props, c)
	if err != nil {
		return nil, NewConstructionError(b.objectType, err)
	}
	return obj, nil
}

// ── TransientBuilder ──────────────────────────────────────────────────────────

// TransientBuilder constructs a fresh instance on every Build call. It keeps
// no state beyond its recipe.
type TransientBuilder struct {
	builderCore
}

// NewTransientBuilder creates a transient builder for objectType.
func NewTransientBuilder(objectType reflect.Type, params, props map[string]string) *TransientBuilder {
	return &TransientBuilder{builderCore: builderCore{
		objectType: objectType,
		params:     params,
		props:      props,
	}}
}

// Build constructs a new instance.
func (b *TransientBuilder) Build() (any, error) {
	return b.construct()
}

// ── SingletonBuilder ──────────────────────────────────────────────────────────

// SingletonBuilder constructs exactly one instance, lazily, on first Build.
// Concurrent first callers serialize on the builder lock: one of them
// constructs, the rest wait and observe the finished instance. A failed
// construction is reported to the caller that triggered it and does not
// poison the builder — the next Build tries again.
type SingletonBuilder struct {
	builderCore

	state       sync.RWMutex
	instance    any
	constructed bool
}

// NewSingletonBuilder creates a singleton builder for objectType.
func NewSingletonBuilder(objectType reflect.Type, params, props map[string]string) *SingletonBuilder {
	return &SingletonBuilder{builderCore: builderCore{
		objectType: objectType,
		params:     params,
		props:      props,
	}}
}

// Build returns the cached instance, constructing it on first use.
func (b *SingletonBuilder) Build() (any, error) {
	// Fast path: already constructed.
	b.state.RLock()
	if b.constructed {
		instance := b.instance
		b.state.RUnlock()
		return instance, nil
	}
	b.state.RUnlock()

	b.state.Lock()
	defer b.state.Unlock()

	// Double-check: another caller may have constructed while we waited.
	if b.constructed {
		return b.instance, nil
	}

	// Nested resolution goes through the container's own lock, not this
	// one, so construction may resolve other services freely.
	instance, err := b.construct()
	if err != nil {
		return nil, err
	}

	b.instance = instance
	b.constructed = true
	return instance, nil
}

// resolved reports whether the singleton has been constructed.
func (b *SingletonBuilder) resolved() bool {
	b.state.RLock()
	defer b.state.RUnlock()
	return b.constructed
}

// ── instanceBuilder ───────────────────────────────────────────────────────────

// instanceBuilder wraps a pre-built value: the value is the singleton.
type instanceBuilder struct {
	mu        sync.Mutex
	container *Container
	value     any
}

func (b *instanceBuilder) Connect(c *Container) error {
	if c == nil {
		return NewInvalidArgumentError(nil, "cannot connect a nil container", nil)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container != nil && b.container != c {
		return ErrAlreadyConnected
	}
	b.container = c
	return nil
}

func (b *instanceBuilder) Build() (any, error) {
	return b.value, nil
}
