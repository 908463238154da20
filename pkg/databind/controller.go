package databind

import (
	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/errors"
	"github.com/go-drift/databind/pkg/value"
)

// Controller is the write-back direction of a binding: it reacts to
// host-delivered element events by writing into the bound variable and
// dirtying its root name.
type Controller interface {
	// ElementRef identifies the element the controller is attached to.
	ElementRef() document.Ref
	// Valid reports whether the controller resolved its address.
	Valid() bool
}

// controllerBase resolves the target address at construction and
// performs the guarded write shared by all controller kinds: no-op on
// an unchanged value, report on conversion failure, dirty the root on
// success.
type controllerBase struct {
	doc     *document.Document
	ref     document.Ref
	address Address
	last    value.Value
	hasLast bool
	valid   bool
}

func newControllerBase(m *Model, ref document.Ref, addressStr string) controllerBase {
	b := controllerBase{doc: m.Document(), ref: ref}
	b.address = m.ResolveAddress(addressStr, ref)
	b.valid = len(b.address) > 0
	return b
}

func (b *controllerBase) ElementRef() document.Ref {
	return b.ref
}

func (b *controllerBase) Valid() bool {
	return b.valid
}

func (b *controllerBase) setValue(m *Model, v value.Value) {
	if b.hasLast && v.Equal(b.last) {
		return
	}
	if err := m.SetValue(b.address, v); err != nil {
		return
	}
	b.last = v
	b.hasLast = true
	m.DirtyVariable(b.address[0].Name)
}

// ValueController writes the element's value attribute back into its
// bound variable whenever the host reports a value-edit event on the
// element.
type ValueController struct {
	controllerBase
}

func NewValueController(m *Model, ref document.Ref, addressStr string) *ValueController {
	return &ValueController{newControllerBase(m, ref, addressStr)}
}

func (c *ValueController) onValueChanged(m *Model) {
	el, ok := c.doc.Resolve(c.ref)
	if !ok {
		c.valid = false
		return
	}
	raw, _ := el.Attribute("value")
	c.setValue(m, value.String(raw))
}

// EventController writes the value supplied with a named UI event back
// into its bound variable.
type EventController struct {
	controllerBase
	event string
}

func NewEventController(m *Model, ref document.Ref, event, addressStr string) *EventController {
	c := &EventController{controllerBase: newControllerBase(m, ref, addressStr), event: event}
	if event == "" {
		errors.Reportf(errors.KindRegistration, "databind.NewEventController", "empty event name for address %q", addressStr)
		c.valid = false
	}
	return c
}

// Event returns the event name the controller listens for.
func (c *EventController) Event() string {
	return c.event
}

func (c *EventController) trigger(m *Model, v value.Value) {
	c.setValue(m, v)
}

// Controllers owns the write-back controllers of a model, keyed by
// element so event dispatch is a map hit.
type Controllers struct {
	byElement map[document.Ref][]Controller
}

// Add registers a controller under its element.
func (cs *Controllers) Add(c Controller) {
	if c == nil || !c.Valid() {
		return
	}
	ref := c.ElementRef()
	cs.byElement[ref] = append(cs.byElement[ref], c)
}

// OnElementRemove purges every controller attached to the element.
func (cs *Controllers) OnElementRemove(element document.Ref) {
	delete(cs.byElement, element)
}

func (cs *Controllers) notifyValueChanged(m *Model, element document.Ref) {
	for _, c := range cs.byElement[element] {
		if vc, ok := c.(*ValueController); ok && vc.Valid() {
			vc.onValueChanged(m)
		}
	}
}

func (cs *Controllers) triggerEvent(m *Model, element document.Ref, event string, v value.Value) {
	for _, c := range cs.byElement[element] {
		if ec, ok := c.(*EventController); ok && ec.Valid() && ec.event == event {
			ec.trigger(m, v)
		}
	}
}
