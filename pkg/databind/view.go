package databind

import (
	"strings"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/errors"
)

// View is one reactive output binding from the data model into the
// document. Views are owned by the update engine; an invalid view no
// longer updates and is purged from the engine's tables.
type View interface {
	// Update recomputes the view's expressions and pushes the result
	// into the document, returning true if anything visible changed.
	Update(m *Model) bool
	// VariableNames lists the root names the view depends on.
	VariableNames() []string
	// ElementRef identifies the element the view is attached to.
	ElementRef() document.Ref
	// ElementDepth orders views outer-first within an update pass.
	ElementDepth() int
	// Valid reports whether the view can still update.
	Valid() bool
}

// viewBase carries the element reference and depth bookkeeping shared
// by all view kinds. The reference is generational: once the element
// is removed, resolution fails and the view invalidates itself.
type viewBase struct {
	doc   *document.Document
	ref   document.Ref
	depth int
	valid bool
}

func newViewBase(doc *document.Document, ref document.Ref) viewBase {
	return viewBase{doc: doc, ref: ref, depth: doc.Depth(ref), valid: true}
}

func (b *viewBase) element() document.Element {
	el, ok := b.doc.Resolve(b.ref)
	if !ok {
		b.valid = false
		return nil
	}
	return el
}

func (b *viewBase) invalidate() {
	b.valid = false
}

func (b *viewBase) ElementRef() document.Ref {
	return b.ref
}

func (b *viewBase) ElementDepth() int {
	return b.depth
}

func (b *viewBase) Valid() bool {
	return b.valid
}

// textEntry is one {{...}} placeholder within a text node: the byte
// position it occupies in the static skeleton, its expression, and the
// last rendered value.
type textEntry struct {
	index int
	expr  *Expression
	value string
}

// TextView renders a text node containing inline {{expression}}
// placeholders. The static text around the placeholders is captured at
// construction; each update re-evaluates only the expressions and
// reassembles the node when any rendering changed.
type TextView struct {
	viewBase
	text    string
	entries []textEntry
}

// NewTextView scans the element's current text for placeholders and
// compiles them. A text without placeholders, an unterminated
// placeholder, or a failing compilation yields an invalid view.
func NewTextView(m *Model, ref document.Ref) *TextView {
	v := &TextView{viewBase: newViewBase(m.Document(), ref)}
	el := v.element()
	if el == nil {
		return v
	}

	text := el.Text()
	var sb strings.Builder
	for {
		begin := strings.Index(text, "{{")
		if begin < 0 {
			sb.WriteString(text)
			break
		}
		end := strings.Index(text[begin+2:], "}}")
		if end < 0 {
			errors.Reportf(errors.KindParse, "databind.NewTextView", "unterminated placeholder in text %q", el.Text())
			v.invalidate()
			return v
		}
		sb.WriteString(text[:begin])
		v.entries = append(v.entries, textEntry{
			index: sb.Len(),
			expr:  NewExpression(strings.TrimSpace(text[begin+2 : begin+2+end])),
		})
		text = text[begin+2+end+2:]
	}

	if len(v.entries) == 0 {
		v.invalidate()
		return v
	}

	v.text = sb.String()
	iface := NewExpressionInterface(m, ref)
	for _, entry := range v.entries {
		if !entry.expr.Compile(iface) {
			v.invalidate()
			return v
		}
	}
	return v
}

func (v *TextView) Update(m *Model) bool {
	el := v.element()
	if el == nil {
		return false
	}
	iface := NewExpressionInterface(m, v.ref)
	changed := false
	for i := range v.entries {
		rendered := v.entries[i].expr.Run(iface).String()
		if rendered != v.entries[i].value {
			v.entries[i].value = rendered
			changed = true
		}
	}
	if changed {
		el.SetText(v.buildText())
	}
	return changed
}

func (v *TextView) buildText() string {
	var sb strings.Builder
	previous := 0
	for i := range v.entries {
		sb.WriteString(v.text[previous:v.entries[i].index])
		sb.WriteString(v.entries[i].value)
		previous = v.entries[i].index
	}
	sb.WriteString(v.text[previous:])
	return sb.String()
}

func (v *TextView) VariableNames() []string {
	var names []string
	seen := map[string]struct{}{}
	for _, entry := range v.entries {
		for _, name := range entry.expr.VariableNames() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// singleView shares the compile-once, push-on-change cycle of the
// attribute, style, and class views: one target name, one expression,
// and an apply step that writes the rendered value to the element.
type singleView struct {
	viewBase
	target string
	expr   *Expression
	value  string
	first  bool
	apply  func(el document.Element, target, rendered string)
}

func newSingleView(m *Model, ref document.Ref, target, expression string, apply func(document.Element, string, string)) *singleView {
	v := &singleView{
		viewBase: newViewBase(m.Document(), ref),
		target:   target,
		expr:     NewExpression(expression),
		first:    true,
		apply:    apply,
	}
	if !v.expr.Compile(NewExpressionInterface(m, ref)) {
		v.invalidate()
	}
	return v
}

func (v *singleView) Update(m *Model) bool {
	el := v.element()
	if el == nil {
		return false
	}
	rendered := v.expr.Run(NewExpressionInterface(m, v.ref)).String()
	if !v.first && rendered == v.value {
		return false
	}
	v.first = false
	v.value = rendered
	v.apply(el, v.target, rendered)
	return true
}

func (v *singleView) VariableNames() []string {
	return v.expr.VariableNames()
}

// AttributeView binds one element attribute to an expression.
type AttributeView struct {
	singleView
}

func NewAttributeView(m *Model, ref document.Ref, attribute, expression string) *AttributeView {
	return &AttributeView{*newSingleView(m, ref, attribute, expression,
		func(el document.Element, target, rendered string) {
			el.SetAttribute(target, rendered)
		})}
}

// StyleView binds one style property to an expression.
type StyleView struct {
	singleView
}

func NewStyleView(m *Model, ref document.Ref, property, expression string) *StyleView {
	return &StyleView{*newSingleView(m, ref, property, expression,
		func(el document.Element, target, rendered string) {
			el.SetProperty(target, rendered)
		})}
}

// ClassView toggles one class name on the truth of an expression.
type ClassView struct {
	viewBase
	class string
	expr  *Expression
	state bool
	first bool
}

func NewClassView(m *Model, ref document.Ref, class, expression string) *ClassView {
	v := &ClassView{
		viewBase: newViewBase(m.Document(), ref),
		class:    class,
		expr:     NewExpression(expression),
		first:    true,
	}
	if !v.expr.Compile(NewExpressionInterface(m, ref)) {
		v.invalidate()
	}
	return v
}

func (v *ClassView) Update(m *Model) bool {
	el := v.element()
	if el == nil {
		return false
	}
	state := v.expr.Run(NewExpressionInterface(m, v.ref)).Bool()
	if !v.first && state == v.state {
		return false
	}
	v.first = false
	v.state = state
	el.SetClass(v.class, state)
	return true
}

func (v *ClassView) VariableNames() []string {
	return v.expr.VariableNames()
}

// IfView toggles element visibility on the truth of an expression by
// setting and removing the display property. The element stays in the
// tree either way, so its own bindings keep updating while hidden.
type IfView struct {
	viewBase
	expr  *Expression
	state bool
	first bool
}

func NewIfView(m *Model, ref document.Ref, expression string) *IfView {
	v := &IfView{
		viewBase: newViewBase(m.Document(), ref),
		expr:     NewExpression(expression),
		first:    true,
	}
	if !v.expr.Compile(NewExpressionInterface(m, ref)) {
		v.invalidate()
	}
	return v
}

func (v *IfView) Update(m *Model) bool {
	el := v.element()
	if el == nil {
		return false
	}
	state := v.expr.Run(NewExpressionInterface(m, v.ref)).Bool()
	if !v.first && state == v.state {
		return false
	}
	v.first = false
	v.state = state
	if state {
		el.RemoveProperty("display")
	} else {
		el.SetProperty("display", "none")
	}
	return true
}

func (v *IfView) VariableNames() []string {
	return v.expr.VariableNames()
}

// ForView repeats sibling elements for each element of a bound array.
// The view's own element is the hidden template; clones are inserted
// before it, each aliased to its indexed address. Diffing is tail-only:
// a length change creates or destroys trailing clones, and value
// changes within surviving indices flow through the clones' own views.
type ForView struct {
	viewBase
	alias    string
	address  Address
	children []document.Ref
	instance func() document.Element
	expand   func(document.Ref)
}

// NewForView parses a binding of the form "alias : address" (or just
// "address", defaulting the alias to "it") and hides the template
// element. instance clones the template content for one iteration;
// expand is called on each fresh clone so the host can bind the
// clone's own directives.
func NewForView(m *Model, ref document.Ref, binding string, instance func() document.Element, expand func(document.Ref)) *ForView {
	v := &ForView{
		viewBase: newViewBase(m.Document(), ref),
		alias:    "it",
		instance: instance,
		expand:   expand,
	}

	parts := strings.Split(binding, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	addressStr := ""
	switch {
	case len(parts) == 1 && parts[0] != "":
		addressStr = parts[0]
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		v.alias = parts[0]
		addressStr = parts[1]
	default:
		errors.Reportf(errors.KindParse, "databind.NewForView", "invalid iteration binding %q, expected 'alias : address'", binding)
		v.invalidate()
		return v
	}

	v.address = m.ResolveAddress(addressStr, ref)
	if len(v.address) == 0 {
		v.invalidate()
		return v
	}

	if el := v.element(); el != nil {
		el.SetProperty("display", "none")
	}
	return v
}

func (v *ForView) Update(m *Model) bool {
	el := v.element()
	if el == nil {
		return false
	}
	variable := m.GetVariable(v.address)
	if !variable.Valid() || variable.Kind() != ArrayKind {
		errors.Report(&errors.BindError{
			Op: "databind.ForView", Kind: errors.KindResolution,
			Address: v.address.String(), Err: ErrNotAnArray,
		})
		return false
	}

	length := variable.Length()
	if length == len(v.children) {
		return false
	}

	for i := len(v.children); i < length; i++ {
		child := v.instance()
		childRef := v.doc.InsertBefore(v.ref, child)
		if childRef.IsZero() {
			break
		}
		childAddress := make(Address, 0, len(v.address)+1)
		childAddress = append(childAddress, v.address...)
		childAddress = append(childAddress, IndexEntry(i))
		m.InsertAlias(childRef, v.alias, childAddress)
		// The alias must be in place before the clone's own directives
		// bind, so its expressions resolve through it.
		if v.expand != nil {
			v.expand(childRef)
		}
		v.children = append(v.children, childRef)
	}

	for len(v.children) > length {
		last := v.children[len(v.children)-1]
		v.children = v.children[:len(v.children)-1]
		m.EraseAliases(last)
		v.doc.Remove(last)
	}

	return true
}

func (v *ForView) VariableNames() []string {
	return []string{v.address[0].Name}
}
