// Package value provides the dynamically-typed value passed between
// bound host data, data expressions, and views. A Value holds one of a
// closed set of scalar kinds; the zero Value is the empty value.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the payload of a Value.
type Kind int

const (
	// KindNone is the empty value, carried by the zero Value.
	KindNone Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindInt holds a signed integer.
	KindInt
	// KindFloat holds a 64-bit float.
	KindFloat
	// KindString holds a string.
	KindString
	// KindVec2 holds a 2D vector.
	KindVec2
	// KindVec3 holds a 3D vector.
	KindVec3
	// KindVec4 holds a 4D vector.
	KindVec4
	// KindColor holds an ARGB color.
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindColor:
		return "color"
	default:
		return "none"
	}
}

// Value is a tagged dynamic value. Values are immutable and copied by
// value; the zero Value reports KindNone and converts to the defaults
// of every target type.
type Value struct {
	kind Kind
	num  float64
	str  string
	vec  Vec4
	col  Color
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int wraps an integer.
func Int(i int) Value {
	return Value{kind: KindInt, num: float64(i)}
}

// Float wraps a float.
func Float(f float64) Value {
	return Value{kind: KindFloat, num: f}
}

// String wraps a string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// V2 wraps a 2D vector.
func V2(v Vec2) Value {
	return Value{kind: KindVec2, vec: Vec4{X: v.X, Y: v.Y}}
}

// V3 wraps a 3D vector.
func V3(v Vec3) Value {
	return Value{kind: KindVec3, vec: Vec4{X: v.X, Y: v.Y, Z: v.Z}}
}

// V4 wraps a 4D vector.
func V4(v Vec4) Value {
	return Value{kind: KindVec4, vec: v}
}

// Col wraps a color.
func Col(c Color) Value {
	return Value{kind: KindColor, col: c}
}

// Kind returns the payload kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Empty reports whether v is the empty value.
func (v Value) Empty() bool {
	return v.kind == KindNone
}

// IsString reports whether v holds a string. Binary operators use this
// to decide between numeric and string semantics at execution time.
func (v Value) IsString() bool {
	return v.kind == KindString
}

// Float converts v to a float, losing information where necessary.
// Bools become 0 or 1, strings are parsed (0 on failure), and
// non-numeric kinds become 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindBool, KindInt, KindFloat:
		return v.num
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int converts v to an integer by way of Float, truncating.
func (v Value) Int() int {
	return int(v.Float())
}

// Bool converts v to its truthiness: bools are themselves, numbers are
// true when nonzero, and strings are true for "true", "1", or any
// string parsing to a nonzero number.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool, KindInt, KindFloat:
		return v.num != 0
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "true", "1":
			return true
		case "false", "0", "":
			return false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return err == nil && f != 0
	default:
		return false
	}
}

// String renders v as text. Bools render as "1" and "0", floats in
// the shortest round-trip form, vectors as comma-separated components,
// and colors as #RRGGBBAA.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.num != 0 {
			return "1"
		}
		return "0"
	case KindInt:
		return strconv.Itoa(int(v.num))
	case KindFloat:
		return formatFloat(v.num)
	case KindString:
		return v.str
	case KindVec2:
		return formatFloat(v.vec.X) + ", " + formatFloat(v.vec.Y)
	case KindVec3:
		return formatFloat(v.vec.X) + ", " + formatFloat(v.vec.Y) + ", " + formatFloat(v.vec.Z)
	case KindVec4:
		return formatFloat(v.vec.X) + ", " + formatFloat(v.vec.Y) + ", " + formatFloat(v.vec.Z) + ", " + formatFloat(v.vec.W)
	case KindColor:
		return v.col.Hex()
	default:
		return ""
	}
}

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

// AsBool converts v to a bool for assignment into host data. Only
// bools, numbers, and the literal strings "true"/"false"/"1"/"0"
// convert; everything else fails.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool, KindInt, KindFloat:
		return v.num != 0, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

// AsInt converts v to an int for assignment into host data.
func (v Value) AsInt() (int, bool) {
	switch v.kind {
	case KindBool:
		return int(v.num), true
	case KindInt:
		return int(v.num), true
	case KindFloat:
		return int(v.num), true
	case KindString:
		s := strings.TrimSpace(v.str)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// AsFloat converts v to a float for assignment into host data.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindBool, KindInt, KindFloat:
		return v.num, true
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// AsString converts v to a string for assignment into host data.
// Every scalar kind renders to text, so this fails only for the empty
// value.
func (v Value) AsString() (string, bool) {
	if v.kind == KindNone {
		return "", false
	}
	return v.String(), true
}

// AsVec2 converts v to a 2D vector, parsing "x, y" strings.
func (v Value) AsVec2() (Vec2, bool) {
	switch v.kind {
	case KindVec2:
		return Vec2{X: v.vec.X, Y: v.vec.Y}, true
	case KindString:
		if parts, ok := parseComponents(v.str, 2); ok {
			return Vec2{X: parts[0], Y: parts[1]}, true
		}
	}
	return Vec2{}, false
}

// AsVec3 converts v to a 3D vector, parsing "x, y, z" strings.
func (v Value) AsVec3() (Vec3, bool) {
	switch v.kind {
	case KindVec3:
		return Vec3{X: v.vec.X, Y: v.vec.Y, Z: v.vec.Z}, true
	case KindString:
		if parts, ok := parseComponents(v.str, 3); ok {
			return Vec3{X: parts[0], Y: parts[1], Z: parts[2]}, true
		}
	}
	return Vec3{}, false
}

// AsVec4 converts v to a 4D vector, parsing "x, y, z, w" strings.
func (v Value) AsVec4() (Vec4, bool) {
	switch v.kind {
	case KindVec4:
		return v.vec, true
	case KindString:
		if parts, ok := parseComponents(v.str, 4); ok {
			return Vec4{X: parts[0], Y: parts[1], Z: parts[2], W: parts[3]}, true
		}
	}
	return Vec4{}, false
}

// AsColor converts v to a color, parsing hex notation and the SVG 1.1
// color names.
func (v Value) AsColor() (Color, bool) {
	switch v.kind {
	case KindColor:
		return v.col, true
	case KindString:
		return ParseColor(v.str)
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseComponents(s string, count int) ([]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != count {
		return nil, false
	}
	out := make([]float64, count)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
