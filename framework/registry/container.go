package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomkit/loom/framework/construct"
	"github.com/loomkit/loom/framework/metadata"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the service registry: a concurrency-safe map from Key to
// Builder, with an optional parent the lookup falls back to.
//
// Containers form a tree via CreateChild. A child's local registration
// always shadows an identically-keyed parent registration, and a child
// never mutates its parent.
type Container struct {
	id          string
	description string
	parent      *Container
	meta        metadata.Source
	log         *zap.Logger

	mu            sync.RWMutex
	registrations map[Key]Builder
}

// Option configures a Container at creation time.
type Option func(*Container)

// WithDescription sets the human-readable container label.
func WithDescription(description string) Option {
	return func(c *Container) { c.description = description }
}

// WithMetadata sets the metadata source consulted by Apply.
func WithMetadata(src metadata.Source) Option {
	return func(c *Container) { c.meta = src }
}

// WithLogger sets the logger for registration and resolution events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) { c.log = log }
}

// New creates a root container (no parent). By default it has an empty
// metadata table and a no-op logger.
func New(opts ...Option) *Container {
	c := &Container{
		id:            uuid.NewString(),
		meta:          metadata.NewTable(),
		log:           zap.NewNop(),
		registrations: make(map[Key]Builder),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChild returns a new container whose parent is c. The child starts
// with an empty registration set and shares the parent's metadata source
// and logger.
func (c *Container) CreateChild(description string) *Container {
	return &Container{
		id:            uuid.NewString(),
		description:   description,
		parent:        c,
		meta:          c.meta,
		log:           c.log,
		registrations: make(map[Key]Builder),
	}
}

// ID returns the container's unique identifier.
func (c *Container) ID() string { return c.id }

// Description returns the container's label.
func (c *Container) Description() string { return c.description }

// Parent returns the parent container, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// ── Registration ──────────────────────────────────────────────────────────────

// Apply registers a concrete type under every service contract its metadata
// declares, qualified by name and version, with a single shared builder —
// one concrete type implementing several contracts shares one construction
// strategy and, for singletons, one cached instance.
//
// objectType may be a reflect.Type or a prototype value (a T or *T).
// params and props are string-encoded constructor parameters and
// post-construction properties handed to the builder.
//
// Fails with InvalidArgumentError for a nil or non-instantiable type,
// MissingMetadataError when the type declares no contracts, and
// DuplicateRegistrationError when any resulting key is already present —
// in which case nothing is registered.
//
// Returns the container so registrations chain:
//
//	_, err := c.Apply(SystemClock{}, nil, nil, "", "")
func (c *Container) Apply(objectType any, params, props map[string]string, name, version string) (*Container, error) {
	t, err := concreteTypeOf(objectType)
	if err != nil {
		return c, err
	}

	descriptor, ok := c.meta.Describe(t)
	if !ok || len(descriptor.Contracts) == 0 {
		return c, NewMissingMetadataError(t)
	}

	var builder Builder
	if descriptor.Lifetime == metadata.Singleton {
		builder = NewSingletonBuilder(t, params, props)
	} else {
		builder = NewTransientBuilder(t, params, props)
	}
	if err := builder.Connect(c); err != nil {
		return c, err
	}

	keys := make([]Key, len(descriptor.Contracts))
	for i, contract := range descriptor.Contracts {
		keys[i] = KeyOf(contract, name, version)
	}

	if err := c.insert(keys, builder); err != nil {
		return c, err
	}

	c.log.Debug("service registered",
		zap.String("container", c.id),
		zap.String("type", t.String()),
		zap.String("lifetime", descriptor.Lifetime.String()),
		zap.Int("contracts", len(keys)),
	)
	return c, nil
}

// ApplyInstance registers a pre-built value as the singleton for the key
// (contract, name, version). No metadata lookup and no deferred
// construction: the supplied instance is the singleton.
func (c *Container) ApplyInstance(contract reflect.Type, instance any, name, version string) (*Container, error) {
	if contract == nil {
		return c, NewInvalidArgumentError(nil, "contract type is nil", nil)
	}
	if instance == nil {
		return c, NewInvalidArgumentError(contract, "instance is nil", nil)
	}
	if it := reflect.TypeOf(instance); !it.AssignableTo(contract) {
		return c, NewInvalidArgumentError(contract,
			fmt.Sprintf("instance of type %s does not satisfy the contract", it), nil)
	}

	builder := &instanceBuilder{value: instance}
	if err := builder.Connect(c); err != nil {
		return c, err
	}

	key := KeyOf(contract, name, version)
	if err := c.insert([]Key{key}, builder); err != nil {
		return c, err
	}

	c.log.Debug("instance registered",
		zap.String("container", c.id),
		zap.Stringer("key", key),
	)
	return c, nil
}

// Provide is the generic form of ApplyInstance: it registers instance as
// the singleton for contract C.
//
//	_, err := registry.Provide[Clock](c, &SystemClock{}, "", "")
func Provide[C any](c *Container, instance C, name, version string) (*Container, error) {
	return c.ApplyInstance(TypeOf[C](), instance, name, version)
}

// insert is the atomic "insert if absent" step: either every key is added
// and bound to builder, or none is.
func (c *Container) insert(keys []Key, builder Builder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if _, exists := c.registrations[k]; exists {
			return NewDuplicateRegistrationError(k)
		}
	}
	for _, k := range keys {
		c.registrations[k] = builder
	}
	return nil
}

// concreteTypeOf normalizes the Apply objectType argument to a concrete
// struct type.
func concreteTypeOf(objectType any) (reflect.Type, error) {
	if objectType == nil {
		return nil, NewInvalidArgumentError(nil, "object type is nil", nil)
	}
	t, ok := objectType.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(objectType)
	}
	if err := construct.Check(t); err != nil {
		return nil, NewInvalidArgumentError(t, "type is not instantiable", err)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve looks up the unqualified key for service, walking up the parent
// chain on a local miss. A completely unregistered service is an absence
// (ok=false, nil error), not a failure; a registered service whose
// construction fails returns a non-nil error.
func (c *Container) Resolve(service reflect.Type) (any, bool, error) {
	return c.lookup(Unqualified(service))
}

// ResolveNamed looks up (service, name, version).
//
// On a local miss the parent is queried with the service type only: the
// qualifiers are dropped, so a qualified lookup that misses locally can be
// answered by the parent's unqualified registration. Long-standing behavior,
// kept deliberately; see the package documentation.
func (c *Container) ResolveNamed(service reflect.Type, name, version string) (any, bool, error) {
	return c.lookup(KeyOf(service, name, version))
}

func (c *Container) lookup(key Key) (any, bool, error) {
	c.mu.RLock()
	builder, ok := c.registrations[key]
	c.mu.RUnlock()

	if ok {
		instance, err := builder.Build()
		if err != nil {
			c.log.Debug("resolution failed",
				zap.String("container", c.id),
				zap.Stringer("key", key),
				zap.Error(err),
			)
			return nil, false, err
		}
		return instance, true, nil
	}

	if c.parent != nil {
		return c.parent.lookup(Unqualified(key.Service))
	}
	return nil, false, nil
}

// ── Generic helpers ───────────────────────────────────────────────────────────

// Get resolves the unqualified contract T.
//
//	clock, ok, err := registry.Get[Clock](c)
func Get[T any](c *Container) (T, bool, error) {
	return GetNamed[T](c, "", "")
}

// GetNamed resolves contract T qualified by name and version.
func GetNamed[T any](c *Container, name, version string) (T, bool, error) {
	var zero T
	instance, ok, err := c.ResolveNamed(TypeOf[T](), name, version)
	if err != nil || !ok {
		return zero, ok, err
	}
	typed, isT := instance.(T)
	if !isT {
		return zero, true, fmt.Errorf("registry: %s resolved to %T, want %T", TypeOf[T](), instance, zero)
	}
	return typed, true, nil
}

// MustGet resolves the unqualified contract T and panics on absence or
// failure. For bootstrap paths and tests where a miss is a programming
// error.
func MustGet[T any](c *Container) T {
	v, ok, err := Get[T](c)
	if err != nil {
		panic(fmt.Sprintf("registry: MustGet[%s]: %v", TypeOf[T](), err))
	}
	if !ok {
		panic(fmt.Sprintf("registry: MustGet[%s]: service not registered", TypeOf[T]()))
	}
	return v
}

// ── Introspection ─────────────────────────────────────────────────────────────

// ServiceInfo describes one registration, for diagnostics.
type ServiceInfo struct {
	Key      string `json:"key"`
	Lifetime string `json:"lifetime"`
	Resolved bool   `json:"resolved"`
}

// Snapshot returns the container's local registrations, sorted by key.
// Parent registrations are not included; walk Parent() to inspect the chain.
func (c *Container) Snapshot() []ServiceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ServiceInfo, 0, len(c.registrations))
	for key, builder := range c.registrations {
		info := ServiceInfo{Key: key.String()}
		switch b := builder.(type) {
		case *SingletonBuilder:
			info.Lifetime = metadata.Singleton.String()
			info.Resolved = b.resolved()
		case *TransientBuilder:
			info.Lifetime = metadata.Transient.String()
		case *instanceBuilder:
			info.Lifetime = metadata.Singleton.String()
			info.Resolved = true
		case *deferredBuilder:
			info.Lifetime = "deferred"
		default:
			info.Lifetime = "unknown"
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
