package registry

import (
	"fmt"
	"reflect"
)

// ── Key ───────────────────────────────────────────────────────────────────────

// Key is the identity a service is registered and looked up under: the
// contract type plus optional name and version qualifiers.
//
// Key is a comparable value — two keys are equal exactly when all three
// components are equal — so it is used directly as the registration map key.
// It is built fresh at registration and at every lookup; it never points
// into container state.
type Key struct {
	Service reflect.Type
	Name    string
	Version string
}

// KeyOf builds a key. Empty name and version mean "unqualified".
func KeyOf(service reflect.Type, name, version string) Key {
	return Key{Service: service, Name: name, Version: version}
}

// Unqualified returns the key for service with no name or version.
func Unqualified(service reflect.Type) Key {
	return Key{Service: service}
}

// Qualified reports whether the key carries a name or version qualifier.
func (k Key) Qualified() bool {
	return k.Name != "" || k.Version != ""
}

// String renders the key for diagnostics and logs.
//
//	main.Clock
//	main.Clock[name=utc]
//	main.Clock[name=utc version=2]
func (k Key) String() string {
	service := "<nil>"
	if k.Service != nil {
		service = k.Service.String()
	}
	switch {
	case k.Name != "" && k.Version != "":
		return fmt.Sprintf("%s[name=%s version=%s]", service, k.Name, k.Version)
	case k.Name != "":
		return fmt.Sprintf("%s[name=%s]", service, k.Name)
	case k.Version != "":
		return fmt.Sprintf("%s[version=%s]", service, k.Version)
	default:
		return service
	}
}

// TypeOf returns the reflect.Type of T, including interface types.
//
//	registry.TypeOf[Clock]()  // the Clock interface type
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
