package epdmock

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// Color is an opaque color token: a CSS color name ("black", "red") or a hex
// value ("#000", "#1a2b3c", "#1a2b3c80").
//
// The empty Color stands for ColorOn in every operation that takes a color.
// Tokens that name no color draw nothing.
type Color string

const (
	// ColorOn is the foreground (ink) color.
	ColorOn Color = "black"
	// ColorOff is the background (paper) color.
	ColorOff Color = "white"
)

// orOn substitutes the foreground for the empty token.
func (c Color) orOn() Color {
	if c == "" {
		return ColorOn
	}
	return c
}

// resolve maps the token onto a gg color. ok is false for unknown tokens.
func (c Color) resolve() (col gg.RGBA, ok bool) {
	s := strings.ToLower(strings.TrimSpace(string(c.orOn())))
	if strings.HasPrefix(s, "#") {
		switch len(s) {
		case 4, 5, 7, 9:
			if strings.Trim(s[1:], "0123456789abcdef") != "" {
				return gg.RGBA{}, false
			}
			return gg.Hex(s), true
		}
		return gg.RGBA{}, false
	}
	if s == "transparent" {
		return gg.Transparent, true
	}
	named, found := colornames.Map[s]
	if !found {
		return gg.RGBA{}, false
	}
	return gg.FromColor(named), true
}

// Code renders the color as a firmware expression.
func (c Color) Code() string {
	switch c.orOn() {
	case ColorOn:
		return "COLOR_ON"
	case ColorOff:
		return "COLOR_OFF"
	}
	col, ok := c.resolve()
	if !ok {
		return "COLOR_ON"
	}
	return fmt.Sprintf("Color(0x%02X%02X%02X)",
		uint8(col.R*255+0.5), uint8(col.G*255+0.5), uint8(col.B*255+0.5))
}
