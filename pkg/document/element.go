package document

// BasicElement is a plain, map-backed Element implementation used by
// tests and examples. Hosts with a real element tree implement the
// Element interface on their own types instead.
type BasicElement struct {
	tag        string
	text       string
	attributes map[string]string
	properties map[string]string
	classes    map[string]bool
}

// NewBasicElement creates an element with the given tag and initial
// attributes. The attribute map is copied.
func NewBasicElement(tag string, attributes map[string]string) *BasicElement {
	e := &BasicElement{tag: tag, attributes: map[string]string{}}
	for name, v := range attributes {
		e.attributes[name] = v
	}
	return e
}

// Clone returns a fresh element with the same tag, text, and
// attributes, and empty properties and classes.
func (e *BasicElement) Clone() *BasicElement {
	c := NewBasicElement(e.tag, e.attributes)
	c.text = e.text
	return c
}

func (e *BasicElement) Tag() string {
	return e.tag
}

func (e *BasicElement) Text() string {
	return e.text
}

func (e *BasicElement) SetText(text string) {
	e.text = text
}

func (e *BasicElement) Attribute(name string) (string, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

func (e *BasicElement) SetAttribute(name, value string) {
	e.attributes[name] = value
}

func (e *BasicElement) Attributes() map[string]string {
	out := make(map[string]string, len(e.attributes))
	for name, v := range e.attributes {
		out[name] = v
	}
	return out
}

func (e *BasicElement) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *BasicElement) SetProperty(name, value string) {
	if e.properties == nil {
		e.properties = map[string]string{}
	}
	e.properties[name] = value
}

func (e *BasicElement) RemoveProperty(name string) {
	delete(e.properties, name)
}

func (e *BasicElement) HasClass(name string) bool {
	return e.classes[name]
}

func (e *BasicElement) SetClass(name string, enabled bool) {
	if e.classes == nil {
		e.classes = map[string]bool{}
	}
	if enabled {
		e.classes[name] = true
	} else {
		delete(e.classes, name)
	}
}
