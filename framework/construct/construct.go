package construct

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ── Collaborator contracts ────────────────────────────────────────────────────

// Resolver resolves a dependency service by its contract type. It is
// satisfied by *registry.Container; this package only needs the lookup shape.
type Resolver interface {
	Resolve(service reflect.Type) (any, bool, error)
}

// Initializer is an optional hook: when the constructed type implements it,
// Init is called after constructor parameters are applied and before
// post-construction properties.
type Initializer interface {
	Init() error
}

// ── Errors ────────────────────────────────────────────────────────────────────

var (
	// ErrNilType is returned when no object type was supplied.
	ErrNilType = errors.New("construct: object type is nil")

	// ErrUnresolvedDependency marks an interface field the resolver could
	// not satisfy.
	ErrUnresolvedDependency = errors.New("construct: unresolved dependency")
)

// TypeError reports a type that cannot be instantiated.
type TypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("construct: %s: %s", typeName(e.Type), e.Reason)
}

// FieldError reports a failure applying a parameter or property to a field.
type FieldError struct {
	Type  reflect.Type
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("construct: %s.%s: %v", typeName(e.Type), e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// ── Instantiability ───────────────────────────────────────────────────────────

// Check reports whether objectType denotes a concrete, instantiable type:
// a struct or pointer-to-struct. Interfaces, nil types, and non-struct kinds
// are rejected.
func Check(objectType reflect.Type) error {
	if objectType == nil {
		return ErrNilType
	}
	t := objectType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return nil
	case reflect.Interface:
		return &TypeError{Type: objectType, Reason: "interface types are not instantiable"}
	default:
		return &TypeError{Type: objectType, Reason: "only struct types can be constructed"}
	}
}

// ── Construction ──────────────────────────────────────────────────────────────

// New builds an instance of objectType (a struct or pointer-to-struct type)
// and returns it as a pointer to the struct.
//
// Construction proceeds in three phases:
//
//  1. Constructor parameters: every exported field named in params is set
//     from its string-encoded value; every remaining exported interface
//     field is resolved through r (a missing dependency is an error, so
//     interface fields are required); exported pointer-to-struct fields are
//     resolved when r knows them and left nil otherwise.
//  2. If the instance implements Initializer, Init is called.
//  3. Properties: every exported field named in props is set from its
//     string-encoded value.
//
// Any failure aborts construction; no partially built instance escapes.
func New(objectType reflect.Type, params, props map[string]string, r Resolver) (any, error) {
	if err := Check(objectType); err != nil {
		return nil, err
	}
	st := objectType
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}

	for name := range params {
		if f, ok := st.FieldByName(name); !ok || !f.IsExported() {
			return nil, &FieldError{Type: st, Field: name, Err: errors.New("no such field for constructor parameter")}
		}
	}

	pv := reflect.New(st)
	elem := pv.Elem()

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		if raw, ok := params[f.Name]; ok {
			if err := setScalar(elem.Field(i), raw); err != nil {
				return nil, &FieldError{Type: st, Field: f.Name, Err: err}
			}
			continue
		}
		switch f.Type.Kind() {
		case reflect.Interface:
			if r == nil {
				return nil, &FieldError{Type: st, Field: f.Name, Err: ErrUnresolvedDependency}
			}
			dep, found, err := r.Resolve(f.Type)
			if err != nil {
				return nil, &FieldError{Type: st, Field: f.Name, Err: err}
			}
			if !found {
				return nil, &FieldError{Type: st, Field: f.Name, Err: ErrUnresolvedDependency}
			}
			dv := reflect.ValueOf(dep)
			if !dv.Type().AssignableTo(f.Type) {
				return nil, &FieldError{Type: st, Field: f.Name,
					Err: fmt.Errorf("resolved %s, not assignable to %s", dv.Type(), f.Type)}
			}
			elem.Field(i).Set(dv)
		case reflect.Pointer:
			// Optional dependency: injected when registered, nil otherwise.
			if r == nil || f.Type.Elem().Kind() != reflect.Struct {
				continue
			}
			dep, found, err := r.Resolve(f.Type)
			if err != nil {
				return nil, &FieldError{Type: st, Field: f.Name, Err: err}
			}
			if found {
				dv := reflect.ValueOf(dep)
				if dv.Type().AssignableTo(f.Type) {
					elem.Field(i).Set(dv)
				}
			}
		}
	}

	out := pv.Interface()
	if init, ok := out.(Initializer); ok {
		if err := init.Init(); err != nil {
			return nil, fmt.Errorf("construct: %s: init: %w", st, err)
		}
	}

	for name, raw := range props {
		f, ok := st.FieldByName(name)
		if !ok || !f.IsExported() {
			return nil, &FieldError{Type: st, Field: name, Err: errors.New("no such field for property")}
		}
		if err := setScalar(elem.FieldByName(name), raw); err != nil {
			return nil, &FieldError{Type: st, Field: name, Err: err}
		}
	}

	return out, nil
}

// setScalar converts a string-encoded value to the field's kind.
func setScalar(v reflect.Value, raw string) error {
	if !v.CanSet() {
		return errors.New("field cannot be set")
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind %s for string-encoded value", v.Kind())
	}
	return nil
}
