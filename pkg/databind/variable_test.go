package databind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/value"
)

type invader struct {
	Name   string
	Sprite string
	Damage []int
}

type gameData struct {
	Rating   float64
	Invader  invader
	Invaders []invader
}

func registerGameTypes(t *testing.T) *TypeRegistry {
	t.Helper()
	registry := NewTypeRegistry()

	require.True(t, RegisterSlice[int](registry).Valid())

	h := RegisterStruct[invader](registry)
	require.True(t, h.Valid())
	h = Member(h, "name", func(v *invader) *string { return &v.Name })
	h = Member(h, "sprite", func(v *invader) *string { return &v.Sprite })
	h = Member(h, "damage", func(v *invader) *[]int { return &v.Damage })
	require.True(t, h.Valid())

	require.True(t, RegisterSlice[invader](registry).Valid())

	g := RegisterStruct[gameData](registry)
	g = Member(g, "rating", func(v *gameData) *float64 { return &v.Rating })
	g = Member(g, "invader", func(v *gameData) *invader { return &v.Invader })
	g = Member(g, "invaders", func(v *gameData) *[]invader { return &v.Invaders })
	require.True(t, g.Valid())

	return registry
}

func newGameModel(t *testing.T, data *gameData) (*Model, *document.Document) {
	t.Helper()
	doc := document.NewDocument()
	m := NewModel(registerGameTypes(t), doc)
	require.NoError(t, BindValue(m, "rating", &data.Rating))
	require.NoError(t, BindTypeValue(m, "invader", &data.Invader))
	require.NoError(t, BindContainer(m, "invaders", &data.Invaders))
	return m, doc
}

func sampleData() *gameData {
	return &gameData{
		Rating:  4.5,
		Invader: invader{Name: "Delightful invader", Sprite: "icon-invader", Damage: []int{3, 6, 7}},
		Invaders: []invader{
			{Name: "Angry invader", Sprite: "icon-invader", Damage: []int{1, 2}},
			{Name: "Harmless invader", Sprite: "icon-flag", Damage: nil},
			{Name: "Deceitful invader", Sprite: "icon-money", Damage: []int{10}},
		},
	}
}

func TestVariableNavigation(t *testing.T) {
	data := sampleData()
	m, _ := newGameModel(t, data)

	cases := []struct {
		address string
		want    value.Value
	}{
		{"rating", value.Float(4.5)},
		{"invader.name", value.String("Delightful invader")},
		{"invader.damage[1]", value.Int(6)},
		{"invaders[0].name", value.String("Angry invader")},
		{"invaders[2].damage[0]", value.Int(10)},
	}
	for _, tc := range cases {
		got := m.GetValue(ParseAddress(tc.address))
		require.True(t, got.Equal(tc.want), "GetValue(%s) = %v, want %v", tc.address, got, tc.want)
	}

	variable := m.GetVariable(ParseAddress("invaders"))
	require.True(t, variable.Valid())
	require.Equal(t, ArrayKind, variable.Kind())
	require.Equal(t, 3, variable.Length())
}

func TestVariableSetWritesThrough(t *testing.T) {
	data := sampleData()
	m, _ := newGameModel(t, data)

	addr := ParseAddress("invader.damage[1]")
	require.NoError(t, m.SetValue(addr, value.String("199")))
	require.Equal(t, 199, data.Invader.Damage[1])
	require.True(t, m.GetValue(addr).Equal(value.Int(199)))
}

func TestVariableSetIncompatibleLeavesTargetUnchanged(t *testing.T) {
	data := sampleData()
	m, _ := newGameModel(t, data)

	addr := ParseAddress("invader.damage[1]")
	err := m.SetValue(addr, value.String("banana"))
	require.ErrorIs(t, err, ErrConversion)
	require.Equal(t, 6, data.Invader.Damage[1])
}

func TestVariableResolutionFailures(t *testing.T) {
	data := sampleData()
	m, _ := newGameModel(t, data)

	for _, address := range []string{
		"invader.height",     // unknown member
		"invader.damage[9]",  // out of bounds
		"rating.anything",    // navigation below a scalar
		"invaders.name",      // member name on an array
		"unbound.name",       // unknown root
	} {
		v := m.GetVariable(ParseAddress(address))
		require.False(t, v.Valid(), "address %q should not resolve", address)
	}

	// Non-scalar endpoints resolve but refuse Get.
	v := m.GetVariable(ParseAddress("invader"))
	require.True(t, v.Valid())
	_, err := v.Get()
	require.ErrorIs(t, err, ErrValueNotScalar)
}

func TestRegistrationFailures(t *testing.T) {
	registry := NewTypeRegistry()

	first := RegisterStruct[invader](registry)
	require.True(t, first.Valid())
	require.False(t, RegisterStruct[invader](registry).Valid(), "duplicate struct registration must fail")

	// A member whose type was never registered invalidates the handle.
	type unregistered struct{ n int }
	h := RegisterStruct[gameData](registry)
	bad := Member(h, "oops", func(v *gameData) *unregistered { return nil })
	require.False(t, bad.Valid())

	// Duplicate member names fail.
	first = Member(first, "name", func(v *invader) *string { return &v.Name })
	require.True(t, first.Valid())
	require.False(t, Member(first, "name", func(v *invader) *string { return &v.Name }).Valid())
}

func TestBindFailures(t *testing.T) {
	data := sampleData()
	doc := document.NewDocument()
	m := NewModel(registerGameTypes(t), doc)

	require.NoError(t, BindValue(m, "rating", &data.Rating))
	require.ErrorIs(t, BindValue(m, "rating", &data.Rating), ErrAlreadyBound)

	type unregistered struct{ n int }
	var u unregistered
	require.ErrorIs(t, BindTypeValue(m, "mystery", &u), ErrNotRegistered)
}
