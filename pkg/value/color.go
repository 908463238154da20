package value

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is stored as ARGB (0xAARRGGBB).
type Color uint32

// RGBA8 constructs a Color from red, green, blue, alpha bytes (all 0-255).
func RGBA8(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB constructs an opaque Color from red, green, blue bytes.
func RGB(r, g, b uint8) Color {
	return RGBA8(r, g, b, 0xFF)
}

// Components returns the red, green, blue, alpha bytes.
func (c Color) Components() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// Hex renders the color as #RRGGBBAA.
func (c Color) Hex() string {
	r, g, b, a := c.Components()
	return "#" + hexByte(r) + hexByte(g) + hexByte(b) + hexByte(a)
}

// ParseColor parses #RGB, #RRGGBB, and #RRGGBBAA hex notation as well
// as the SVG 1.1 color names ("red", "cornflowerblue", ...).
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if s[0] == '#' {
		return parseHexColor(s[1:])
	}
	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return 0, false
	}
	return RGBA8(named.R, named.G, named.B, named.A), true
}

func parseHexColor(s string) (Color, bool) {
	switch len(s) {
	case 3:
		// #RGB doubles each nibble.
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
		fallthrough
	case 6:
		s += "ff"
		fallthrough
	case 8:
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return 0, false
		}
		return RGBA8(uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n)), true
	default:
		return 0, false
	}
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
