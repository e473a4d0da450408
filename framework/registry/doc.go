// Package registry provides an inversion-of-control service registry:
// a concurrency-safe catalog mapping a service identity to the strategy
// that produces an object satisfying it, with hierarchical parent/child
// composition.
//
// # Identity
//
// A service identity is a Key: the contract type plus optional name and
// version qualifiers. Keys are plain comparable values:
//
//	registry.Unqualified(registry.TypeOf[Clock]())
//	registry.KeyOf(registry.TypeOf[Clock](), "utc", "2")
//
// # Registration
//
// Apply registers a concrete type under every contract its metadata
// declares. The metadata source is an external collaborator — the registry
// only consumes the descriptor it produces:
//
//	meta := metadata.NewTable().
//	    Declare(reflect.TypeOf(SystemClock{}), metadata.Descriptor{
//	        Contracts: []reflect.Type{metadata.Contract[Clock]()},
//	        Lifetime:  metadata.Singleton,
//	    })
//
//	c := registry.New(registry.WithMetadata(meta))
//	_, err := c.Apply(SystemClock{}, nil, nil, "", "")
//
// A pre-built value can be registered directly; the value is the singleton:
//
//	_, err := registry.Provide[Clock](c, &SystemClock{}, "", "")
//
// A key may be registered at most once per container. Re-registration fails
// with DuplicateRegistrationError and leaves the first registration intact.
//
// # Resolution
//
//	clock, ok, err := registry.Get[Clock](c)
//
// ok=false with a nil error means "not configured" — absence is a normal
// outcome, not a failure. A non-nil error means a registered service failed
// to build; the ConstructionError from the deepest failing dependency
// propagates unchanged to the caller.
//
// # Lifetimes
//
// A TransientBuilder constructs a fresh instance on every resolution. A
// SingletonBuilder constructs lazily, exactly once, even when many
// goroutines race the first resolution; all of them observe the same
// instance. A type registered under several contracts shares one builder,
// so a singleton is one instance across all of its contracts.
//
// # Hierarchy
//
// CreateChild returns a container that consults its own registrations
// first and falls back to its parent. A child registration shadows an
// identically-keyed parent registration; a child never mutates its parent.
//
// Note one deliberate quirk: when a qualified lookup misses locally, the
// parent is queried with the service type ONLY — name and version are
// dropped. A child lookup for (Clock, name="utc") that has no local entry
// will match the parent's unqualified Clock registration. This is
// long-standing behavior that callers depend on; it is kept as-is rather
// than propagating qualifiers up the chain.
//
// # Providers
//
// ServiceProvider groups related registrations; ProviderRegistry manages
// their Register/Boot phases, including deferred providers that are only
// loaded when one of their keys is first resolved.
package registry
