package databind

import (
	"reflect"

	"github.com/go-drift/databind/pkg/errors"
	"github.com/go-drift/databind/pkg/value"
)

// TypeRegistry owns the variable definitions of all registered host
// shapes, keyed by their Go type. Registration happens once at setup;
// definitions are shared and live for the process lifetime.
type TypeRegistry struct {
	types map[reflect.Type]Definition
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: map[reflect.Type]Definition{}}
}

// Lookup returns the definition registered for t, or nil.
func (r *TypeRegistry) Lookup(t reflect.Type) Definition {
	return r.types[t]
}

// scalarOrLookup returns the registered definition for t,
// auto-creating a scalar definition for recognized leaf types.
func (r *TypeRegistry) scalarOrLookup(t reflect.Type) Definition {
	if def, ok := r.types[t]; ok {
		return def
	}
	factory, ok := scalarFactories[t]
	if !ok {
		return nil
	}
	def := factory()
	r.types[t] = def
	return def
}

// scalarFactories maps the recognized leaf types to their scalar
// definition constructors.
var scalarFactories = map[reflect.Type]func() Definition{
	reflect.TypeFor[bool](): func() Definition {
		return newScalarDefinition(value.Bool, value.Value.AsBool)
	},
	reflect.TypeFor[int](): func() Definition {
		return newScalarDefinition(value.Int, value.Value.AsInt)
	},
	reflect.TypeFor[float32](): func() Definition {
		return newScalarDefinition(
			func(f float32) value.Value { return value.Float(float64(f)) },
			func(v value.Value) (float32, bool) {
				f, ok := v.AsFloat()
				return float32(f), ok
			})
	},
	reflect.TypeFor[float64](): func() Definition {
		return newScalarDefinition(value.Float, value.Value.AsFloat)
	},
	reflect.TypeFor[string](): func() Definition {
		return newScalarDefinition(value.String, value.Value.AsString)
	},
	reflect.TypeFor[value.Vec2](): func() Definition {
		return newScalarDefinition(value.V2, value.Value.AsVec2)
	},
	reflect.TypeFor[value.Vec3](): func() Definition {
		return newScalarDefinition(value.V3, value.Value.AsVec3)
	},
	reflect.TypeFor[value.Vec4](): func() Definition {
		return newScalarDefinition(value.V4, value.Value.AsVec4)
	},
	reflect.TypeFor[value.Color](): func() Definition {
		return newScalarDefinition(value.Col, value.Value.AsColor)
	},
}

// StructHandle is returned by RegisterStruct. An invalid handle
// signals a failed registration; callers must check Valid before
// registering members or binding.
type StructHandle[T any] struct {
	registry *TypeRegistry
	def      *structDefinition
}

// Valid reports whether the registration succeeded.
func (h StructHandle[T]) Valid() bool {
	return h.registry != nil && h.def != nil
}

// Definition returns the underlying definition, or nil for invalid
// handles.
func (h StructHandle[T]) Definition() Definition {
	if !h.Valid() {
		return nil
	}
	return h.def
}

// ArrayHandle is returned by RegisterSlice.
type ArrayHandle struct {
	def Definition
}

// Valid reports whether the registration succeeded.
func (h ArrayHandle) Valid() bool {
	return h.def != nil
}

// Definition returns the underlying definition, or nil for invalid
// handles.
func (h ArrayHandle) Definition() Definition {
	return h.def
}

// RegisterStruct registers T as a struct shape. Members are attached
// afterwards with Member. Registering the same type twice fails and
// returns an invalid handle.
func RegisterStruct[T any](r *TypeRegistry) StructHandle[T] {
	t := reflect.TypeFor[T]()
	if _, exists := r.types[t]; exists {
		errors.Reportf(errors.KindRegistration, "databind.RegisterStruct", "%v: %s", ErrAlreadyRegistered, t)
		return StructHandle[T]{}
	}
	def := &structDefinition{members: map[string]structMember{}}
	r.types[t] = def
	return StructHandle[T]{registry: r, def: def}
}

// Member registers a named member of T through an accessor returning a
// pointer to the member within its enclosing struct. Recognized scalar
// member types auto-create their definitions; struct and array member
// types must have been registered beforehand, otherwise registration
// fails at setup time and the returned handle is invalid.
func Member[T, M any](h StructHandle[T], name string, access func(*T) *M) StructHandle[T] {
	if !h.Valid() {
		errors.Reportf(errors.KindRegistration, "databind.Member", "member %q added to an invalid struct handle", name)
		return h
	}
	memberType := reflect.TypeFor[M]()
	def := h.registry.scalarOrLookup(memberType)
	if def == nil {
		errors.Reportf(errors.KindRegistration, "databind.Member", "member %q: %v: %s", name, ErrNotRegistered, memberType)
		return StructHandle[T]{}
	}
	if _, exists := h.def.members[name]; exists {
		errors.Reportf(errors.KindRegistration, "databind.Member", "member %q already registered", name)
		return StructHandle[T]{}
	}
	h.def.members[name] = structMember{
		def: def,
		access: func(loc any) any {
			return access(loc.(*T))
		},
	}
	return h
}

// RegisterSlice registers []E as an array shape. The element shape
// must already be registered, or be a recognized scalar type.
func RegisterSlice[E any](r *TypeRegistry) ArrayHandle {
	elemType := reflect.TypeFor[E]()
	element := r.scalarOrLookup(elemType)
	if element == nil {
		errors.Reportf(errors.KindRegistration, "databind.RegisterSlice", "element: %v: %s", ErrNotRegistered, elemType)
		return ArrayHandle{}
	}
	sliceType := reflect.TypeFor[[]E]()
	if _, exists := r.types[sliceType]; exists {
		errors.Reportf(errors.KindRegistration, "databind.RegisterSlice", "%v: %s", ErrAlreadyRegistered, sliceType)
		return ArrayHandle{}
	}
	def := &arrayDefinition{
		element: element,
		length: func(loc any) int {
			return len(*loc.(*[]E))
		},
		at: func(loc any, index int) any {
			return &(*loc.(*[]E))[index]
		},
	}
	r.types[sliceType] = def
	return ArrayHandle{def: def}
}
