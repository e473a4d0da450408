package metadata

import (
	"reflect"
	"sync"
)

// ── Lifetime ──────────────────────────────────────────────────────────────────

// Lifetime controls how many instances the registry builds for a declared type.
type Lifetime int

const (
	// Singleton builds one instance on first resolution and reuses it for
	// every subsequent resolution, across all contracts the type declares.
	Singleton Lifetime = iota

	// Transient builds a fresh instance on every resolution.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// ── Descriptor ────────────────────────────────────────────────────────────────

// Descriptor is the plain value a metadata source produces for a concrete
// type: which service contracts it satisfies, and with what lifetime.
//
// The registry consumes descriptors and nothing else — where they come from
// (manual declaration, code generation, a config file) is not its concern.
type Descriptor struct {
	// Contracts lists the service identities the type is registered under.
	// Typically interface types, but a concrete type may declare itself.
	Contracts []reflect.Type

	// Lifetime selects singleton or transient construction.
	Lifetime Lifetime
}

// Source answers "what services does this concrete type provide?".
type Source interface {
	// Describe returns the descriptor for objectType, or ok=false when the
	// source knows nothing about it.
	Describe(objectType reflect.Type) (Descriptor, bool)
}

// ── Table ─────────────────────────────────────────────────────────────────────

// Table is an in-memory, concurrency-safe Source populated by explicit
// Declare calls.
//
//	meta := metadata.NewTable().
//	    Declare(reflect.TypeOf(SystemClock{}), metadata.Descriptor{
//	        Contracts: []reflect.Type{metadata.Contract[Clock]()},
//	        Lifetime:  metadata.Singleton,
//	    })
type Table struct {
	mu      sync.RWMutex
	entries map[reflect.Type]Descriptor
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[reflect.Type]Descriptor)}
}

// Declare records the descriptor for objectType and returns the table for
// chaining. Declaring the same type again replaces the previous descriptor —
// a table is a description store, not a registry; uniqueness is enforced at
// registration time by the container.
func (t *Table) Declare(objectType reflect.Type, d Descriptor) *Table {
	if objectType.Kind() == reflect.Pointer {
		objectType = objectType.Elem()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[objectType] = d
	return t
}

// Describe implements Source.
func (t *Table) Describe(objectType reflect.Type) (Descriptor, bool) {
	if objectType.Kind() == reflect.Pointer {
		objectType = objectType.Elem()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.entries[objectType]
	return d, ok
}

// ── Self-describing types ─────────────────────────────────────────────────────

// SelfDescriber is implemented by types that carry their own descriptor.
type SelfDescriber interface {
	ServiceDescriptor() Descriptor
}

var selfDescriberType = reflect.TypeOf((*SelfDescriber)(nil)).Elem()

// selfSource describes any type whose pointer implements SelfDescriber by
// calling ServiceDescriptor on a zero value.
type selfSource struct{}

// Self returns a Source backed by the SelfDescriber interface.
func Self() Source { return selfSource{} }

func (selfSource) Describe(objectType reflect.Type) (Descriptor, bool) {
	if objectType.Kind() == reflect.Pointer {
		objectType = objectType.Elem()
	}
	if objectType.Kind() != reflect.Struct {
		return Descriptor{}, false
	}
	if !reflect.PointerTo(objectType).Implements(selfDescriberType) {
		return Descriptor{}, false
	}
	d := reflect.New(objectType).Interface().(SelfDescriber)
	return d.ServiceDescriptor(), true
}

// ── Composition ───────────────────────────────────────────────────────────────

// chain consults sources in order; first match wins.
type chain []Source

// Sources combines several sources into one. Earlier sources shadow later
// ones for types both describe.
func Sources(srcs ...Source) Source { return chain(srcs) }

func (c chain) Describe(objectType reflect.Type) (Descriptor, bool) {
	for _, s := range c {
		if d, ok := s.Describe(objectType); ok {
			return d, ok
		}
	}
	return Descriptor{}, false
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Contract returns the reflect.Type of the contract T. Works for interface
// types, which reflect.TypeOf cannot name directly.
//
//	metadata.Contract[Clock]()        // the Clock interface type
//	metadata.Contract[*SystemClock]() // a concrete pointer type
func Contract[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
