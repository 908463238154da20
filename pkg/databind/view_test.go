package databind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/databind/pkg/document"
)

func TestTextView(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)

	el := document.NewBasicElement("span", nil)
	el.SetText("Rating: {{rating}} of 5, leader {{invader.name}}.")
	ref := doc.AppendChild(document.Ref{}, el)

	m.AddView(NewTextView(m, ref))
	require.True(t, m.Update(), "initial pass should render the text")
	require.Equal(t, "Rating: 4.5 of 5, leader Delightful invader.", el.Text())

	data.Rating = 2
	m.DirtyVariable("rating")
	require.True(t, m.Update())
	require.Equal(t, "Rating: 2 of 5, leader Delightful invader.", el.Text())

	// A pass with the same values pushes nothing.
	m.DirtyVariable("rating")
	require.False(t, m.Update())
}

func TestTextViewUnterminatedPlaceholder(t *testing.T) {
	captureErrors(t)
	m, doc := newGameModel(t, sampleData())

	el := document.NewBasicElement("span", nil)
	el.SetText("broken {{rating")
	ref := doc.AppendChild(document.Ref{}, el)

	v := NewTextView(m, ref)
	require.False(t, v.Valid())
}

func TestAttributeStyleClassViews(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)

	el := document.NewBasicElement("img", nil)
	ref := doc.AppendChild(document.Ref{}, el)

	m.AddView(NewAttributeView(m, ref, "src", "invader.sprite"))
	m.AddView(NewStyleView(m, ref, "width", "rating * 10 + 'px'"))
	m.AddView(NewClassView(m, ref, "dangerous", "rating > 4"))
	require.True(t, m.Update())

	src, _ := el.Attribute("src")
	require.Equal(t, "icon-invader", src)
	width, _ := el.Property("width")
	require.Equal(t, "45px", width)
	require.True(t, el.HasClass("dangerous"))

	data.Rating = 1
	m.DirtyVariable("rating")
	require.True(t, m.Update())
	width, _ = el.Property("width")
	require.Equal(t, "10px", width)
	require.False(t, el.HasClass("dangerous"))
}

func TestIfViewTogglesDisplay(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)

	el := document.NewBasicElement("div", nil)
	ref := doc.AppendChild(document.Ref{}, el)

	m.AddView(NewIfView(m, ref, "rating >= 3"))
	require.True(t, m.Update())
	_, hidden := el.Property("display")
	require.False(t, hidden, "a true condition leaves the element visible")

	data.Rating = 1
	m.DirtyVariable("rating")
	require.True(t, m.Update())
	display, _ := el.Property("display")
	require.Equal(t, "none", display)

	// The element stays in the tree while hidden.
	_, ok := doc.Resolve(ref)
	require.True(t, ok)
}

func bindForTemplate(t *testing.T, m *Model, doc *document.Document) (document.Ref, document.Ref) {
	t.Helper()
	root := doc.AppendChild(document.Ref{}, document.NewBasicElement("body", nil))
	template := document.NewBasicElement("div", map[string]string{
		DirectiveFor:    "inv : invaders",
		"data-attr-src": "inv.sprite",
	})
	template.SetText("{{inv.name}}")
	templateRef := doc.AppendChild(root, template)

	binder := NewDirectiveBinder(m, func(ref document.Ref) document.Element {
		el, ok := doc.Resolve(ref)
		require.True(t, ok)
		clone := el.(*document.BasicElement).Clone()
		return clone
	})
	binder.BindTree(root)
	return root, templateRef
}

func iterationTexts(t *testing.T, doc *document.Document, root, template document.Ref) []string {
	t.Helper()
	var texts []string
	for _, child := range doc.Children(root) {
		if child == template {
			continue
		}
		el, ok := doc.Resolve(child)
		require.True(t, ok)
		texts = append(texts, el.Text())
	}
	return texts
}

func TestForViewGrowsAndShrinksTail(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)
	root, template := bindForTemplate(t, m, doc)

	require.True(t, m.Update())
	require.Equal(t, []string{"Angry invader", "Harmless invader", "Deceitful invader"},
		iterationTexts(t, doc, root, template))

	// The clones' own attribute directives bind too, through the alias.
	firstClone, ok := doc.Resolve(doc.Children(root)[0])
	require.True(t, ok)
	src, _ := firstClone.Attribute("src")
	require.Equal(t, "icon-invader", src)

	// The template itself stays hidden.
	templateEl, _ := doc.Resolve(template)
	display, _ := templateEl.Property("display")
	require.Equal(t, "none", display)

	// Growing appends exactly the new tail indices.
	data.Invaders = append(data.Invaders,
		invader{Name: "Fourth invader"},
		invader{Name: "Fifth invader"})
	m.DirtyVariable("invaders")
	require.True(t, m.Update())
	require.Equal(t, []string{"Angry invader", "Harmless invader", "Deceitful invader", "Fourth invader", "Fifth invader"},
		iterationTexts(t, doc, root, template))

	// Shrinking destroys trailing iterations only.
	data.Invaders = data.Invaders[:2]
	m.DirtyVariable("invaders")
	require.True(t, m.Update())
	require.Equal(t, []string{"Angry invader", "Harmless invader"},
		iterationTexts(t, doc, root, template))
}

func TestForViewValueChangeFlowsThroughAlias(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)
	root, template := bindForTemplate(t, m, doc)

	require.True(t, m.Update())

	data.Invaders[1].Name = "Renamed invader"
	m.DirtyVariable("invaders")
	require.True(t, m.Update())
	require.Equal(t, []string{"Angry invader", "Renamed invader", "Deceitful invader"},
		iterationTexts(t, doc, root, template))
}

func TestForViewInvalidBinding(t *testing.T) {
	captureErrors(t)
	m, doc := newGameModel(t, sampleData())
	ref := doc.AppendChild(document.Ref{}, document.NewBasicElement("div", nil))

	for _, binding := range []string{"", " : ", "a : b : c", "inv : nosuchroot"} {
		v := NewForView(m, ref, binding, nil, nil)
		require.False(t, v.Valid(), "binding %q should not validate", binding)
	}
}

// countingView records its update order for scheduling tests.
type countingView struct {
	ref     document.Ref
	depth   int
	names   []string
	updates int
	log     *[]string
	label   string
}

func (v *countingView) Update(m *Model) bool {
	v.updates++
	if v.log != nil {
		*v.log = append(*v.log, v.label)
	}
	return true
}

func (v *countingView) VariableNames() []string  { return v.names }
func (v *countingView) ElementRef() document.Ref { return v.ref }
func (v *countingView) ElementDepth() int        { return v.depth }
func (v *countingView) Valid() bool              { return true }

func TestUpdateDeduplicatesViews(t *testing.T) {
	captureErrors(t)
	m, doc := newGameModel(t, sampleData())
	ref := doc.AppendChild(document.Ref{}, document.NewBasicElement("div", nil))

	v := &countingView{ref: ref, names: []string{"rating", "invaders"}}
	m.AddView(v)
	require.True(t, m.Update())
	require.Equal(t, 1, v.updates)

	// Dirtying both dependencies still updates the view once.
	m.DirtyVariable("rating")
	m.DirtyVariable("invaders")
	require.True(t, m.Update())
	require.Equal(t, 2, v.updates)

	// A clean pass touches nothing.
	require.False(t, m.Update())
	require.Equal(t, 2, v.updates)
}

func TestUpdateOrdersByElementDepth(t *testing.T) {
	captureErrors(t)
	m, doc := newGameModel(t, sampleData())
	root := doc.AppendChild(document.Ref{}, document.NewBasicElement("body", nil))
	child := doc.AppendChild(root, document.NewBasicElement("div", nil))
	grandchild := doc.AppendChild(child, document.NewBasicElement("span", nil))

	var order []string
	// Added shallowest-last to prove ordering is by depth, not insertion.
	m.AddView(&countingView{ref: grandchild, depth: 2, names: []string{"rating"}, log: &order, label: "grandchild"})
	m.AddView(&countingView{ref: child, depth: 1, names: []string{"rating"}, log: &order, label: "child"})
	m.AddView(&countingView{ref: root, depth: 0, names: []string{"rating"}, log: &order, label: "root"})

	require.True(t, m.Update())
	require.Equal(t, []string{"root", "child", "grandchild"}, order)
}

func TestUpdateDrainsReentrantDirtying(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)
	ref := doc.AppendChild(document.Ref{}, document.NewBasicElement("div", nil))

	// This view bumps the rating on its first update, dirtying a root
	// mid-pass. The pass must settle within its retry loop.
	bumped := false
	bumper := &reentrantView{ref: ref, names: []string{"invaders"}, update: func(m *Model) bool {
		if !bumped {
			bumped = true
			data.Rating = 5
			m.DirtyVariable("rating")
		}
		return true
	}}
	m.AddView(bumper)

	watcher := &countingView{ref: ref, names: []string{"rating"}}
	m.AddView(watcher)

	require.True(t, m.Update())
	require.Equal(t, 2, watcher.updates, "watcher runs once when added and once for the mid-pass dirty")
	require.Empty(t, m.takeDirty(), "the pass should leave no pending dirty names")
}

type reentrantView struct {
	ref    document.Ref
	names  []string
	update func(m *Model) bool
}

func (v *reentrantView) Update(m *Model) bool     { return v.update(m) }
func (v *reentrantView) VariableNames() []string  { return v.names }
func (v *reentrantView) ElementRef() document.Ref { return v.ref }
func (v *reentrantView) ElementDepth() int        { return 0 }
func (v *reentrantView) Valid() bool              { return true }

func TestViewsPurgedOnElementRemove(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)

	root := doc.AppendChild(document.Ref{}, document.NewBasicElement("body", nil))
	el := document.NewBasicElement("span", nil)
	el.SetText("{{rating}}")
	ref := doc.AppendChild(root, el)

	m.AddView(NewTextView(m, ref))
	require.True(t, m.Update())
	require.Equal(t, "4.5", el.Text())

	doc.Remove(ref)
	data.Rating = 3
	m.DirtyVariable("rating")
	require.False(t, m.Update(), "views on removed elements must not update")
	require.Equal(t, "4.5", el.Text())
}

func TestForViewRemovalDropsAliases(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)
	root, template := bindForTemplate(t, m, doc)

	require.True(t, m.Update())
	require.Len(t, iterationTexts(t, doc, root, template), 3)

	data.Invaders = nil
	m.DirtyVariable("invaders")
	require.True(t, m.Update())
	require.Empty(t, iterationTexts(t, doc, root, template))
	require.Empty(t, m.aliases, "aliases of destroyed iterations must be erased")
}
