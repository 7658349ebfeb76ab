package indent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultOpacity is the alpha applied to every colour of the default palette.
const DefaultOpacity = 0.15

// ErrInvalidColor is returned when a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is an 8-bit RGB colour with a straight alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA creates a colour from its components. Alpha is clamped to [0, 1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: clampAlpha(a)}
}

// String formats the colour as a CSS rgba() expression.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B,
		strconv.FormatFloat(c.A, 'f', -1, 64))
}

// WithAlpha returns a copy of the colour with a different alpha.
func (c Color) WithAlpha(a float64) Color {
	c.A = clampAlpha(a)
	return c
}

// Over composites the colour onto an opaque background and returns the
// resulting 8-bit RGB triple.
func (c Color) Over(bgR, bgG, bgB uint8) (r, g, b uint8) {
	bg := colorful.Color{R: float64(bgR) / 255, G: float64(bgG) / 255, B: float64(bgB) / 255}
	fg := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return bg.BlendRgb(fg, c.A).Clamped().RGB255()
}

// ParseColor parses "rgba(r, g, b, a)", "rgb(r, g, b)", "#rgb", "#rrggbb"
// and "#rrggbbaa". Colours without an explicit alpha are opaque.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")"):
		return parseFunctional(s, lower[len("rgba("):len(lower)-1], 4)
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		return parseFunctional(s, lower[len("rgb("):len(lower)-1], 3)
	case strings.HasPrefix(lower, "#"):
		return parseHex(s, lower)
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

func parseFunctional(orig, body string, want int) (Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w: %q: expected %d components", ErrInvalidColor, orig, want)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: component %d: %v", ErrInvalidColor, orig, i+1, err)
		}
		rgb[i] = uint8(v)
	}

	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("%w: %q: alpha must be in [0, 1]", ErrInvalidColor, orig)
		}
		alpha = a
	}

	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

func parseHex(orig, lower string) (Color, error) {
	alpha := 1.0
	hex := lower
	if len(lower) == 9 {
		a, err := strconv.ParseUint(lower[7:9], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
		}
		alpha = float64(a) / 255
		hex = lower[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, orig, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: alpha}, nil
}

func clampAlpha(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Palette is the ordered set of indentation colours.
type Palette [PaletteSize]Color

// DefaultPalette returns pink, orange, blue, green, yellow, red and cyan at
// DefaultOpacity.
func DefaultPalette() Palette {
	return Palette{
		RGBA(255, 105, 180, DefaultOpacity),
		RGBA(255, 165, 0, DefaultOpacity),
		RGBA(0, 100, 255, DefaultOpacity),
		RGBA(0, 255, 0, DefaultOpacity),
		RGBA(255, 255, 0, DefaultOpacity),
		RGBA(255, 0, 0, DefaultOpacity),
		RGBA(0, 255, 255, DefaultOpacity),
	}
}

// ForDepth returns the colour used for an indentation depth.
func (p Palette) ForDepth(depth int) Color {
	return p[DepthColor(depth)]
}

// WithOpacity returns a copy of the palette with every alpha replaced.
func (p Palette) WithOpacity(a float64) Palette {
	for i := range p {
		p[i] = p[i].WithAlpha(a)
	}
	return p
}

// ParsePalette parses exactly PaletteSize colour strings.
func ParsePalette(specs []string) (Palette, error) {
	var p Palette
	if len(specs) != PaletteSize {
		return p, fmt.Errorf("palette needs %d colors, got %d", PaletteSize, len(specs))
	}
	for i, s := range specs {
		c, err := ParseColor(s)
		if err != nil {
			return p, fmt.Errorf("palette color %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}
