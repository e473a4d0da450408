package registry

import (
	"errors"
	"fmt"
	"reflect"
)

// ── Sentinels ─────────────────────────────────────────────────────────────────

var (
	// ErrNotConnected is the cause of a ConstructionError when Build is
	// called on a builder that was never connected to a container.
	ErrNotConnected = errors.New("builder not connected to a container")

	// ErrAlreadyConnected is returned when Connect is called with a second,
	// different container. A builder belongs to one container for life.
	ErrAlreadyConnected = errors.New("builder already connected to another container")
)

// ── InvalidArgumentError ──────────────────────────────────────────────────────

// InvalidArgumentError reports a nil or non-instantiable object type, or an
// otherwise unusable argument, passed to a registration call.
type InvalidArgumentError struct {
	Type   reflect.Type // may be nil
	Reason string
	Err    error // underlying cause, may be nil
}

func (e *InvalidArgumentError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("registry: invalid argument %s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("registry: invalid argument %s: %s", name, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(t reflect.Type, reason string, err error) *InvalidArgumentError {
	return &InvalidArgumentError{Type: t, Reason: reason, Err: err}
}

// ── MissingMetadataError ──────────────────────────────────────────────────────

// MissingMetadataError reports a type registered via Apply whose metadata
// declares no service contracts.
type MissingMetadataError struct {
	Type reflect.Type
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("registry: %s declares no service contracts", e.Type)
}

// NewMissingMetadataError creates a MissingMetadataError.
func NewMissingMetadataError(t reflect.Type) *MissingMetadataError {
	return &MissingMetadataError{Type: t}
}

// ── DuplicateRegistrationError ────────────────────────────────────────────────

// DuplicateRegistrationError reports a key registered twice within the same
// container. The original registration is left intact.
type DuplicateRegistrationError struct {
	Key Key
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registry: %s is already registered in this container", e.Key)
}

// NewDuplicateRegistrationError creates a DuplicateRegistrationError.
func NewDuplicateRegistrationError(k Key) *DuplicateRegistrationError {
	return &DuplicateRegistrationError{Key: k}
}

// ── ConstructionError ─────────────────────────────────────────────────────────

// ConstructionError reports that a builder could not produce an instance:
// a bad parameter, an unresolved nested dependency, or a failure in the
// construction collaborator. It propagates unchanged from the point of
// failure to the top-level resolution caller.
type ConstructionError struct {
	Type reflect.Type
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("registry: building %s: %v", e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// NewConstructionError wraps err as a ConstructionError for objectType.
// A ConstructionError passed in is returned as-is so nested resolution
// failures are not double-wrapped.
func NewConstructionError(objectType reflect.Type, err error) *ConstructionError {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConstructionError{Type: objectType, Err: err}
}
