package databind

import (
	"reflect"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/errors"
	"github.com/go-drift/databind/pkg/value"
)

// TransformFunc is a named external function invocable from the pipe
// syntax in data expressions. The first argument is the piped-in
// value; args are the explicit call arguments. Returning false aborts
// the expression run.
type TransformFunc func(v value.Value, args []value.Value) (value.Value, bool)

// Model owns the root bindings of one data model, the per-element
// alias overrides introduced by for-views, the transform registry, and
// the set of root names dirtied since the last update pass. A Model is
// single-writer: bindings and the dirty set are mutated only between
// or within update passes, never concurrently.
type Model struct {
	registry *TypeRegistry
	doc      *document.Document

	roots      map[string]Variable
	dirty      map[string]struct{}
	aliases    map[document.Ref]map[string]Address
	transforms map[string]TransformFunc

	views       Views
	controllers Controllers
}

// NewModel creates a model over the given registry and document. The
// model installs itself as the document's removal observer so views,
// controllers, and aliases attached to destroyed elements are dropped
// automatically.
func NewModel(registry *TypeRegistry, doc *document.Document) *Model {
	m := &Model{
		registry:   registry,
		doc:        doc,
		roots:      map[string]Variable{},
		dirty:      map[string]struct{}{},
		aliases:    map[document.Ref]map[string]Address{},
		transforms: map[string]TransformFunc{},
	}
	m.controllers.byElement = map[document.Ref][]Controller{}
	doc.SetRemovalObserver(m.onElementRemove)
	return m
}

// Document returns the bound document.
func (m *Model) Document() *document.Document {
	return m.doc
}

// BindValue registers a named scalar root over the host value at ptr.
func BindValue[T any](m *Model, name string, ptr *T) error {
	return m.bind(name, ptr, m.registry.scalarOrLookup(reflect.TypeFor[T]()), ScalarKind)
}

// BindTypeValue registers a named struct root. T must have been
// registered with RegisterStruct.
func BindTypeValue[T any](m *Model, name string, ptr *T) error {
	return m.bind(name, ptr, m.registry.Lookup(reflect.TypeFor[T]()), StructKind)
}

// BindContainer registers a named array root. []E must have been
// registered with RegisterSlice.
func BindContainer[E any](m *Model, name string, ptr *[]E) error {
	return m.bind(name, ptr, m.registry.Lookup(reflect.TypeFor[[]E]()), ArrayKind)
}

func (m *Model) bind(name string, loc any, def Definition, kind VariableKind) error {
	op := "databind.Bind"
	if def == nil {
		errors.Reportf(errors.KindRegistration, op, "root %q: %v", name, ErrNotRegistered)
		return ErrNotRegistered
	}
	if def.Kind() != kind {
		errors.Reportf(errors.KindRegistration, op, "root %q: registered type is a %s, not a %s", name, def.Kind(), kind)
		return ErrNotRegistered
	}
	if _, exists := m.roots[name]; exists {
		errors.Reportf(errors.KindRegistration, op, "root %q: %v", name, ErrAlreadyBound)
		return ErrAlreadyBound
	}
	m.roots[name] = Variable{def: def, loc: loc}
	return nil
}

// ResolveAddress parses an address string and resolves its root name,
// preferring the nearest per-element alias override found by walking
// the element's ancestor chain over the model's global root table.
// Failure yields an empty Address and a warning.
func (m *Model) ResolveAddress(addressStr string, element document.Ref) Address {
	address := ParseAddress(addressStr)
	if len(address) == 0 {
		errors.Report(&errors.BindError{
			Op: "databind.ResolveAddress", Kind: errors.KindResolution,
			Address: addressStr, Err: errorMalformedAddress,
		})
		return nil
	}

	rootName := address[0].Name
	for ref := element; !ref.IsZero(); ref = m.doc.Parent(ref) {
		if alias, ok := m.aliases[ref][rootName]; ok {
			resolved := make(Address, 0, len(alias)+len(address)-1)
			resolved = append(resolved, alias...)
			resolved = append(resolved, address[1:]...)
			return resolved
		}
	}

	if _, ok := m.roots[rootName]; !ok {
		errors.Report(&errors.BindError{
			Op: "databind.ResolveAddress", Kind: errors.KindResolution,
			Address: addressStr, Err: errorUnknownRoot,
		})
		return nil
	}
	return address
}

// GetVariable resolves an address to a variable handle by successive
// child navigation from the root binding, short-circuiting to the zero
// Variable at the first failure.
func (m *Model) GetVariable(address Address) Variable {
	if len(address) == 0 || address[0].IsIndex() {
		return Variable{}
	}
	variable, ok := m.roots[address[0].Name]
	if !ok {
		return Variable{}
	}
	for _, entry := range address[1:] {
		child, err := variable.Child(entry)
		if err != nil {
			errors.Report(&errors.BindError{
				Op: "databind.GetVariable", Kind: errors.KindResolution,
				Address: address.String(), Err: err,
			})
			return Variable{}
		}
		variable = child
	}
	return variable
}

// GetValue reads the scalar at an address, yielding the empty value on
// any failure.
func (m *Model) GetValue(address Address) value.Value {
	variable := m.GetVariable(address)
	if !variable.Valid() {
		return value.Value{}
	}
	v, err := variable.Get()
	if err != nil {
		errors.Report(&errors.BindError{
			Op: "databind.GetValue", Kind: errors.KindResolution,
			Address: address.String(), Err: err,
		})
		return value.Value{}
	}
	return v
}

// SetValue writes the scalar at an address. A type-incompatible value
// fails and leaves the host data unmodified.
func (m *Model) SetValue(address Address, v value.Value) error {
	variable := m.GetVariable(address)
	if !variable.Valid() {
		return ErrUnresolved
	}
	if err := variable.Set(v); err != nil {
		errors.Report(&errors.BindError{
			Op: "databind.SetValue", Kind: errors.KindResolution,
			Address: address.String(), Err: err,
		})
		return err
	}
	return nil
}

// DirtyVariable flags a root name as changed since the last pass. Both
// write-back controllers and direct host mutations call this.
func (m *Model) DirtyVariable(rootName string) {
	m.dirty[rootName] = struct{}{}
}

// takeDirty drains and returns the pending dirty-name set.
func (m *Model) takeDirty() map[string]struct{} {
	if len(m.dirty) == 0 {
		return nil
	}
	dirty := m.dirty
	m.dirty = map[string]struct{}{}
	return dirty
}

// InsertAlias installs a per-element root-name override. For-views use
// this to map their loop variable onto each child's indexed address.
func (m *Model) InsertAlias(element document.Ref, name string, address Address) {
	table := m.aliases[element]
	if table == nil {
		table = map[string]Address{}
		m.aliases[element] = table
	}
	table[name] = address
}

// EraseAliases removes every alias attached to an element.
func (m *Model) EraseAliases(element document.Ref) {
	delete(m.aliases, element)
}

// RegisterTransform installs a named transform. Duplicate names fail.
func (m *Model) RegisterTransform(name string, fn TransformFunc) error {
	if _, exists := m.transforms[name]; exists {
		errors.Reportf(errors.KindRegistration, "databind.RegisterTransform", "transform %q: %v", name, ErrAlreadyBound)
		return ErrAlreadyBound
	}
	m.transforms[name] = fn
	return nil
}

// CallTransform invokes a named transform, returning false for unknown
// names or a failing transform.
func (m *Model) CallTransform(name string, v value.Value, args []value.Value) (value.Value, bool) {
	fn, ok := m.transforms[name]
	if !ok {
		return value.Value{}, false
	}
	return fn(v, args)
}

// AddView queues a view for the update engine; it is registered in the
// dependency table and initialized during the next pass.
func (m *Model) AddView(v View) {
	m.views.Add(v)
}

// AddController registers a write-back controller.
func (m *Model) AddController(c Controller) {
	m.controllers.Add(c)
}

// NotifyValueChanged is the host's callback for a value-edit event on
// an element carrying a value controller: the element's current value
// attribute is written back into the bound variable.
func (m *Model) NotifyValueChanged(element document.Ref) {
	m.controllers.notifyValueChanged(m, element)
}

// TriggerEvent is the host's callback for a named UI event: the
// supplied value is written back through the element's matching event
// controller.
func (m *Model) TriggerEvent(element document.Ref, event string, v value.Value) {
	m.controllers.triggerEvent(m, element, event, v)
}

// Update runs one full update pass: it drains the dirty-name set and
// recomputes exactly the views depending on those names, in element
// depth order. Returns true if any view pushed a change.
func (m *Model) Update() bool {
	return m.views.Update(m, m.takeDirty())
}

func (m *Model) onElementRemove(element document.Ref) {
	m.views.OnElementRemove(element)
	m.controllers.OnElementRemove(element)
	m.EraseAliases(element)
}
