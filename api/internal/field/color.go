package field

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"inkify/api/internal/apperr"
)

// Color is an 8-bit RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// Transparent is the default background and shadow colour.
var Transparent = Color{}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Hex returns "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

var errNotHex = errors.New("expected 3, 4, 6 or 8 hex digits")

// ParseColor accepts #rgb, #rgba, #rrggbb, #rrggbbaa (the '#' is optional),
// W3C colour names and "transparent".
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	name := strings.ToLower(raw)
	if name == "transparent" {
		return Transparent, nil
	}
	if tc, ok := tcell.ColorNames[name]; ok {
		r, g, b := tc.RGB()
		return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
	}

	c, err := parseHex(strings.TrimPrefix(raw, "#"))
	if err != nil {
		return Color{}, apperr.Wrap(apperr.InvalidColor, err, "invalid color: `"+s+"`")
	}
	return c, nil
}

func parseHex(digits string) (Color, error) {
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, errNotHex
		}
	}

	var rgb, alpha string
	switch len(digits) {
	case 3, 6:
		rgb, alpha = digits, "ff"
	case 4:
		rgb, alpha = digits[:3], strings.Repeat(digits[3:], 2)
	case 8:
		rgb, alpha = digits[:6], digits[6:]
	default:
		return Color{}, errNotHex
	}

	cc, err := colorful.Hex("#" + rgb)
	if err != nil {
		return Color{}, err
	}
	a, err := strconv.ParseUint(alpha, 16, 8)
	if err != nil {
		return Color{}, err
	}
	r, g, b := cc.RGB255()
	return Color{R: r, G: g, B: b, A: uint8(a)}, nil
}
