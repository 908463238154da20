package databind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/value"
)

func TestResolveAddressPrefersNearestAlias(t *testing.T) {
	captureErrors(t)
	m, doc := newGameModel(t, sampleData())

	root := doc.AppendChild(document.Ref{}, document.NewBasicElement("body", nil))
	child := doc.AppendChild(root, document.NewBasicElement("div", nil))
	grandchild := doc.AppendChild(child, document.NewBasicElement("span", nil))

	m.InsertAlias(root, "it", ParseAddress("invaders[0]"))
	m.InsertAlias(child, "it", ParseAddress("invaders[2]"))

	// The nearest ancestor's alias wins; remaining entries are spliced on.
	resolved := m.ResolveAddress("it.name", grandchild)
	require.Equal(t, "invaders[2].name", resolved.String())

	resolved = m.ResolveAddress("it.name", root)
	require.Equal(t, "invaders[0].name", resolved.String())

	// Without an alias in scope the name must be a bound root.
	require.Nil(t, m.ResolveAddress("it.name", document.Ref{}))
	require.Equal(t, "rating", m.ResolveAddress("rating", grandchild).String())

	m.EraseAliases(child)
	resolved = m.ResolveAddress("it.name", grandchild)
	require.Equal(t, "invaders[0].name", resolved.String())
}

func TestDirectiveBinderFullSurface(t *testing.T) {
	captureErrors(t)
	data := sampleData()
	m, doc := newGameModel(t, data)

	root := doc.AppendChild(document.Ref{}, document.NewBasicElement("body", nil))

	img := document.NewBasicElement("img", map[string]string{
		"data-attr-src":        "invader.sprite",
		"data-style-width":     "rating * 10 + 'px'",
		"data-class-dangerous": "rating > 4",
		"data-if":              "rating >= 3",
	})
	doc.AppendChild(root, img)

	label := document.NewBasicElement("span", nil)
	label.SetText("{{invader.name}} rated {{rating}}")
	doc.AppendChild(root, label)

	input := document.NewBasicElement("input", map[string]string{
		"data-value":       "rating",
		"data-event-click": "invader.name",
		"value":            "4.5",
	})
	inputRef := doc.AppendChild(root, input)

	binder := NewDirectiveBinder(m, nil)
	binder.BindTree(root)
	require.True(t, m.Update())

	src, _ := img.Attribute("src")
	require.Equal(t, "icon-invader", src)
	width, _ := img.Property("width")
	require.Equal(t, "45px", width)
	require.True(t, img.HasClass("dangerous"))
	_, hidden := img.Property("display")
	require.False(t, hidden)
	require.Equal(t, "Delightful invader rated 4.5", label.Text())

	input.SetAttribute("value", "1.5")
	m.NotifyValueChanged(inputRef)
	require.Equal(t, 1.5, data.Rating)
	m.TriggerEvent(inputRef, "click", value.String("Event invader"))
	require.Equal(t, "Event invader", data.Invader.Name)

	require.True(t, m.Update())
	width, _ = img.Property("width")
	require.Equal(t, "15px", width)
	require.False(t, img.HasClass("dangerous"))
	display, _ := img.Property("display")
	require.Equal(t, "none", display)
	require.Equal(t, "Event invader rated 1.5", label.Text())
}
