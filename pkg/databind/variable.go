package databind

import (
	"fmt"

	"github.com/go-drift/databind/pkg/value"
)

// VariableKind identifies the shape of a variable definition. The set
// is closed: exactly three definition implementations exist.
type VariableKind int

const (
	// ScalarKind is a typed leaf value.
	ScalarKind VariableKind = iota
	// ArrayKind is an indexable sequence of one element shape.
	ArrayKind
	// StructKind is a named-member record.
	StructKind
)

func (k VariableKind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case ArrayKind:
		return "array"
	default:
		return "struct"
	}
}

// Definition is the shared, type-erased descriptor for one host
// shape. One definition is registered per distinct shape and shared by
// every Variable referencing that shape; definitions live for the
// model's lifetime.
//
// Locations are typed host pointers erased to any; a definition only
// ever receives locations of the shape it was registered for.
type Definition interface {
	Kind() VariableKind

	// Get reads the scalar at loc. Fails with ErrValueNotScalar on
	// arrays and structs.
	Get(loc any) (value.Value, error)
	// Set converts v and writes it to the scalar at loc. A
	// type-incompatible value fails with ErrConversion and leaves the
	// target unmodified.
	Set(loc any, v value.Value) error
	// Length returns the current element count of the array at loc,
	// and 0 for non-arrays.
	Length(loc any) int
	// Child navigates one address entry down from loc.
	Child(loc any, entry AddressEntry) (Variable, error)
}

// Variable is an ephemeral, non-owning handle to one host value: a
// definition plus a location. The zero Variable denotes "unresolved".
type Variable struct {
	def Definition
	loc any
}

// Valid reports whether the handle resolved.
func (v Variable) Valid() bool {
	return v.def != nil && v.loc != nil
}

// Kind returns the variable's shape, or ScalarKind for the zero
// Variable.
func (v Variable) Kind() VariableKind {
	if v.def == nil {
		return ScalarKind
	}
	return v.def.Kind()
}

// Get reads the scalar value.
func (v Variable) Get() (value.Value, error) {
	if !v.Valid() {
		return value.Value{}, ErrUnresolved
	}
	return v.def.Get(v.loc)
}

// Set writes a scalar value.
func (v Variable) Set(val value.Value) error {
	if !v.Valid() {
		return ErrUnresolved
	}
	return v.def.Set(v.loc, val)
}

// Length returns the array length.
func (v Variable) Length() int {
	if !v.Valid() {
		return 0
	}
	return v.def.Length(v.loc)
}

// Child navigates one address entry down.
func (v Variable) Child(entry AddressEntry) (Variable, error) {
	if !v.Valid() {
		return Variable{}, ErrUnresolved
	}
	return v.def.Child(v.loc, entry)
}

// scalarDefinition wraps paired read/write closures over one concrete
// leaf type.
type scalarDefinition struct {
	get func(loc any) value.Value
	set func(loc any, v value.Value) bool
}

func (d *scalarDefinition) Kind() VariableKind {
	return ScalarKind
}

func (d *scalarDefinition) Get(loc any) (value.Value, error) {
	return d.get(loc), nil
}

func (d *scalarDefinition) Set(loc any, v value.Value) error {
	if !d.set(loc, v) {
		return fmt.Errorf("%w: cannot assign %s", ErrConversion, v.Kind())
	}
	return nil
}

func (d *scalarDefinition) Length(loc any) int {
	return 0
}

func (d *scalarDefinition) Child(loc any, entry AddressEntry) (Variable, error) {
	return Variable{}, ErrLeafHasNoChildren
}

func newScalarDefinition[T any](wrap func(T) value.Value, convert func(value.Value) (T, bool)) *scalarDefinition {
	return &scalarDefinition{
		get: func(loc any) value.Value {
			return wrap(*loc.(*T))
		},
		set: func(loc any, v value.Value) bool {
			converted, ok := convert(v)
			if !ok {
				return false
			}
			*loc.(*T) = converted
			return true
		},
	}
}

// arrayDefinition navigates an indexable container of one element
// shape.
type arrayDefinition struct {
	element Definition
	length  func(loc any) int
	at      func(loc any, index int) any
}

func (d *arrayDefinition) Kind() VariableKind {
	return ArrayKind
}

func (d *arrayDefinition) Get(loc any) (value.Value, error) {
	return value.Value{}, ErrValueNotScalar
}

func (d *arrayDefinition) Set(loc any, v value.Value) error {
	return ErrValueNotScalar
}

func (d *arrayDefinition) Length(loc any) int {
	return d.length(loc)
}

func (d *arrayDefinition) Child(loc any, entry AddressEntry) (Variable, error) {
	if !entry.IsIndex() {
		return Variable{}, fmt.Errorf("%w: expected an index, got member %q", ErrIndexOutOfBounds, entry.Name)
	}
	length := d.length(loc)
	if entry.Index < 0 || entry.Index >= length {
		return Variable{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, entry.Index, length)
	}
	return Variable{def: d.element, loc: d.at(loc, entry.Index)}, nil
}

// structMember pairs a member's definition with the accessor captured
// at registration time.
type structMember struct {
	def    Definition
	access func(loc any) any
}

// structDefinition navigates a name→member table.
type structDefinition struct {
	members map[string]structMember
}

func (d *structDefinition) Kind() VariableKind {
	return StructKind
}

func (d *structDefinition) Get(loc any) (value.Value, error) {
	return value.Value{}, ErrValueNotScalar
}

func (d *structDefinition) Set(loc any, v value.Value) error {
	return ErrValueNotScalar
}

func (d *structDefinition) Length(loc any) int {
	return 0
}

func (d *structDefinition) Child(loc any, entry AddressEntry) (Variable, error) {
	if entry.IsIndex() {
		return Variable{}, fmt.Errorf("%w: expected a member name, got index %d", ErrMemberNotFound, entry.Index)
	}
	member, ok := d.members[entry.Name]
	if !ok {
		return Variable{}, fmt.Errorf("%w: %q", ErrMemberNotFound, entry.Name)
	}
	return Variable{def: member.def, loc: member.access(loc)}, nil
}
