package databind

import (
	"strings"

	"github.com/go-drift/databind/pkg/document"
)

// Directive attribute names. A prefixed directive carries its target
// in the attribute name and its expression in the attribute value.
const (
	DirectiveAttrPrefix  = "data-attr-"
	DirectiveStylePrefix = "data-style-"
	DirectiveClassPrefix = "data-class-"
	DirectiveEventPrefix = "data-event-"
	DirectiveIf          = "data-if"
	DirectiveFor         = "data-for"
	DirectiveValue       = "data-value"
)

// CloneFunc produces one fresh iteration element from a repeated
// template element. The host owns element construction, so cloning is
// delegated to it.
type CloneFunc func(template document.Ref) document.Element

// DirectiveBinder walks an element subtree and instantiates the views
// and controllers its directive attributes describe.
type DirectiveBinder struct {
	model *Model
	clone CloneFunc
}

// NewDirectiveBinder creates a binder over the model. clone may be nil
// when the tree contains no repetition directives.
func NewDirectiveBinder(m *Model, clone CloneFunc) *DirectiveBinder {
	return &DirectiveBinder{model: m, clone: clone}
}

// BindTree binds ref and its descendants. An element carrying a
// repetition directive becomes a hidden template: only its for-view is
// bound, and its other directives are deferred to each iteration
// clone.
func (b *DirectiveBinder) BindTree(ref document.Ref) {
	el, ok := b.model.Document().Resolve(ref)
	if !ok {
		return
	}

	if binding, found := el.Attribute(DirectiveFor); found {
		template := ref
		b.model.AddView(NewForView(b.model, ref, binding,
			func() document.Element { return b.clone(template) },
			func(clone document.Ref) { b.bindElement(clone) }))
		return
	}

	b.bindElement(ref)
	for _, child := range b.model.Document().Children(ref) {
		b.BindTree(child)
	}
}

func (b *DirectiveBinder) bindElement(ref document.Ref) {
	el, ok := b.model.Document().Resolve(ref)
	if !ok {
		return
	}

	for name, expression := range el.Attributes() {
		switch {
		case name == DirectiveIf:
			b.model.AddView(NewIfView(b.model, ref, expression))
		case name == DirectiveValue:
			b.model.AddController(NewValueController(b.model, ref, expression))
		case strings.HasPrefix(name, DirectiveAttrPrefix):
			b.model.AddView(NewAttributeView(b.model, ref, name[len(DirectiveAttrPrefix):], expression))
		case strings.HasPrefix(name, DirectiveStylePrefix):
			b.model.AddView(NewStyleView(b.model, ref, name[len(DirectiveStylePrefix):], expression))
		case strings.HasPrefix(name, DirectiveClassPrefix):
			b.model.AddView(NewClassView(b.model, ref, name[len(DirectiveClassPrefix):], expression))
		case strings.HasPrefix(name, DirectiveEventPrefix):
			b.model.AddController(NewEventController(b.model, ref, name[len(DirectiveEventPrefix):], expression))
		}
	}

	if strings.Contains(el.Text(), "{{") {
		b.model.AddView(NewTextView(b.model, ref))
	}
}
