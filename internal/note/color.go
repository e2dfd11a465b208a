package note

import (
	"fmt"
	"math/rand/v2"
)

// Color is one of the fixed sticky-note colors.
type Color string

const (
	Yellow Color = "yellow"
	Pink   Color = "pink"
	Blue   Color = "blue"
	Green  Color = "green"
	Purple Color = "purple"
)

// Palette lists every valid color in display order.
var Palette = []Color{Yellow, Pink, Blue, Green, Purple}

// legacyColors maps the class names written by the browser version of the
// board onto palette colors.
var legacyColors = map[string]Color{
	"bg-yellow-200": Yellow,
	"bg-pink-200":   Pink,
	"bg-blue-200":   Blue,
	"bg-green-200":  Green,
	"bg-purple-200": Purple,
}

// ParseColor resolves a palette name or a legacy class name.
func ParseColor(s string) (Color, error) {
	for _, c := range Palette {
		if string(c) == s {
			return c, nil
		}
	}
	if c, ok := legacyColors[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown note color %q", s)
}

// Valid reports whether c is part of the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// UnmarshalText accepts palette names and legacy class names.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RandomColor picks a palette color uniformly at random.
func RandomColor(r *rand.Rand) Color {
	return Palette[r.IntN(len(Palette))]
}
