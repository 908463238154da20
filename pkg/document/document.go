// Package document holds the minimal element-tree contract the data
// binding runtime needs from its document collaborator: a slot table
// of elements addressed by generational references, so a destroyed
// element is always detectable rather than dangling.
package document

// Element is the side-effect surface views push results into and
// controllers read UI-originated values from. The concrete element
// tree, its layout, and its rendering live outside this module.
type Element interface {
	Tag() string

	Text() string
	SetText(text string)

	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	// Attributes returns a snapshot of all attributes.
	Attributes() map[string]string

	Property(name string) (string, bool)
	SetProperty(name, value string)
	RemoveProperty(name string)

	HasClass(name string) bool
	SetClass(name string, enabled bool)
}

// Ref is a weak, generational reference to an element slot. The zero
// Ref is invalid. A Ref left over from a removed element fails to
// resolve instead of reaching recycled storage.
type Ref struct {
	index      uint32
	generation uint32
}

// IsZero reports whether r is the invalid reference.
func (r Ref) IsZero() bool {
	return r.generation == 0
}

type slot struct {
	element    Element
	generation uint32
	parent     Ref
	children   []Ref
	depth      int
	live       bool
}

// Document is a slot table of live elements. It is not safe for
// concurrent use; the binding runtime assumes a single logical update
// pass per frame.
type Document struct {
	slots []slot
	free  []uint32

	// onRemove, if set, observes every removed element reference,
	// including descendants of a removed subtree. The binding layer
	// uses it to drop views, controllers, and aliases.
	onRemove func(Ref)
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// SetRemovalObserver registers the observer invoked for each removed
// element reference.
func (d *Document) SetRemovalObserver(fn func(Ref)) {
	d.onRemove = fn
}

// AppendChild inserts an element as the last child of parent. A zero
// parent inserts a root element at depth 0.
func (d *Document) AppendChild(parent Ref, e Element) Ref {
	ref := d.alloc(parent, e)
	if p, ok := d.slotFor(parent); ok {
		p.children = append(p.children, ref)
	}
	return ref
}

// InsertBefore inserts an element as a sibling immediately preceding
// anchor. It returns the zero Ref if anchor does not resolve or is a
// root element.
func (d *Document) InsertBefore(anchor Ref, e Element) Ref {
	anchorSlot, ok := d.slotFor(anchor)
	if !ok {
		return Ref{}
	}
	parent := anchorSlot.parent
	if _, ok := d.slotFor(parent); !ok {
		return Ref{}
	}
	ref := d.alloc(parent, e)
	// alloc can grow the slot table; the parent slot must be
	// re-resolved afterwards.
	parentSlot, ok := d.slotFor(parent)
	if !ok {
		return Ref{}
	}
	for i, child := range parentSlot.children {
		if child == anchor {
			parentSlot.children = append(parentSlot.children[:i], append([]Ref{ref}, parentSlot.children[i:]...)...)
			return ref
		}
	}
	parentSlot.children = append(parentSlot.children, ref)
	return ref
}

// Remove destroys an element and its entire subtree. Every removed
// reference is reported to the removal observer; outstanding Refs to
// removed elements stop resolving immediately.
func (d *Document) Remove(ref Ref) {
	s, ok := d.slotFor(ref)
	if !ok {
		return
	}
	if p, ok := d.slotFor(s.parent); ok {
		for i, child := range p.children {
			if child == ref {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	d.removeSubtree(ref)
}

// Resolve dereferences ref, returning false for the zero Ref and for
// removed elements.
func (d *Document) Resolve(ref Ref) (Element, bool) {
	s, ok := d.slotFor(ref)
	if !ok {
		return nil, false
	}
	return s.element, true
}

// Parent returns the parent reference, or the zero Ref for roots and
// unresolvable references.
func (d *Document) Parent(ref Ref) Ref {
	s, ok := d.slotFor(ref)
	if !ok {
		return Ref{}
	}
	return s.parent
}

// Depth returns the element's depth in the containment tree; roots are
// at depth 0. Unresolvable references report -1.
func (d *Document) Depth(ref Ref) int {
	s, ok := d.slotFor(ref)
	if !ok {
		return -1
	}
	return s.depth
}

// Children returns a snapshot of the element's child references.
func (d *Document) Children(ref Ref) []Ref {
	s, ok := d.slotFor(ref)
	if !ok {
		return nil
	}
	out := make([]Ref, len(s.children))
	copy(out, s.children)
	return out
}

func (d *Document) alloc(parent Ref, e Element) Ref {
	depth := 0
	if p, ok := d.slotFor(parent); ok {
		depth = p.depth + 1
	} else {
		parent = Ref{}
	}
	if n := len(d.free); n > 0 {
		index := d.free[n-1]
		d.free = d.free[:n-1]
		s := &d.slots[index]
		s.element = e
		s.parent = parent
		s.children = nil
		s.depth = depth
		s.live = true
		return Ref{index: index, generation: s.generation}
	}
	d.slots = append(d.slots, slot{
		element:    e,
		generation: 1,
		parent:     parent,
		depth:      depth,
		live:       true,
	})
	return Ref{index: uint32(len(d.slots) - 1), generation: 1}
}

func (d *Document) slotFor(ref Ref) (*slot, bool) {
	if ref.IsZero() || int(ref.index) >= len(d.slots) {
		return nil, false
	}
	s := &d.slots[ref.index]
	if !s.live || s.generation != ref.generation {
		return nil, false
	}
	return s, true
}

func (d *Document) removeSubtree(ref Ref) {
	s, ok := d.slotFor(ref)
	if !ok {
		return
	}
	children := s.children
	s.element = nil
	s.children = nil
	s.live = false
	s.generation++
	d.free = append(d.free, ref.index)
	if d.onRemove != nil {
		d.onRemove(ref)
	}
	for _, child := range children {
		d.removeSubtree(child)
	}
}
