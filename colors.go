package rgbfx

// This file contains the color model shared by all effects. Colors are
// 8 bit RGB triples matching what the lighting server consumes. Option
// strings accept color names, "#RRGGBB" hex, "R,G,B" triples and the
// literal "random".

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"
)

type Color struct {
	R, G, B uint8
}

var (
	Red       = Color{255, 0, 0}
	Orange    = Color{255, 127, 0}
	Yellow    = Color{255, 255, 0}
	Green     = Color{0, 255, 0}
	Blue      = Color{0, 0, 255}
	Indigo    = Color{75, 0, 130}
	Violet    = Color{148, 0, 211}
	White     = Color{255, 255, 255}
	Black     = Color{0, 0, 0}
	Cyan      = Color{0, 255, 255}
	Magenta   = Color{255, 0, 255}
	Pink      = Color{255, 192, 203}
	Brown     = Color{165, 42, 42}
	Gray      = Color{128, 128, 128}
	LightGray = Color{211, 211, 211}
	DarkGray  = Color{169, 169, 169}
	LightBlue = Color{173, 216, 230}
)

var namedColors = map[string]Color{
	"red":        Red,
	"orange":     Orange,
	"yellow":     Yellow,
	"green":      Green,
	"blue":       Blue,
	"indigo":     Indigo,
	"violet":     Violet,
	"white":      White,
	"black":      Black,
	"cyan":       Cyan,
	"magenta":    Magenta,
	"pink":       Pink,
	"brown":      Brown,
	"gray":       Gray,
	"light_gray": LightGray,
	"dark_gray":  DarkGray,
	"light_blue": LightBlue,
}

// Rainbow is the fixed color progression used by effects that cycle
// hues.  Index arithmetic into this slice wraps modulo its length.
var Rainbow = []Color{Red, Orange, Yellow, Green, Blue, Indigo, Violet}

// Palette returns every named color except black, the pool effects draw
// random strike and flash colors from.
func Palette() (colors []Color) {
	colors = make([]Color, 0, len(namedColors)-1)
	for _, c := range namedColors {
		if c == Black {
			continue
		}
		colors = append(colors, c)
	}
	return colors
}

// RandomColor draws each channel uniformly.
func RandomColor() Color {
	return Color{uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256))}
}

// ParseColor turns a color option value into a Color.  A draw requested
// with "random" is resolved here, once, not per frame.
func ParseColor(spec string) (c Color, err errors.Error) {
	s := strings.ToLower(strings.TrimSpace(spec))

	if s == "random" {
		return RandomColor(), nil
	}

	if c, isNamed := namedColors[s]; isNamed {
		return c, nil
	}

	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return Black, errors.New("invalid color format").With("color", spec).With("stack", stack.Trace().TrimRuntime())
		}
		parsed, errGo := colorful.Hex(s)
		if errGo != nil {
			return Black, errors.Wrap(errGo, "invalid color format").With("color", spec).With("stack", stack.Trace().TrimRuntime())
		}
		c.R, c.G, c.B = parsed.RGB255()
		return c, nil
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Black, errors.New("invalid color format").With("color", spec).With("stack", stack.Trace().TrimRuntime())
		}
		channels := [3]uint8{}
		for i, part := range parts {
			v, errGo := strconv.Atoi(strings.TrimSpace(part))
			if errGo != nil {
				return Black, errors.Wrap(errGo, "invalid color format").With("color", spec).With("stack", stack.Trace().TrimRuntime())
			}
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			channels[i] = uint8(v)
		}
		return Color{channels[0], channels[1], channels[2]}, nil
	}

	return Black, errors.New("invalid color format").With("color", spec).With("stack", stack.Trace().TrimRuntime())
}

// ParseBrightness turns a brightness option value into a scalar in
// [0,1].  Accepted forms are a float, a percentage such as "50%", or
// "random" which is drawn once at parse time.
func ParseBrightness(spec string) (b float64, err errors.Error) {
	s := strings.ToLower(strings.TrimSpace(spec))

	if s == "random" {
		return rand.Float64(), nil
	}

	value := s
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		value = strings.TrimSuffix(s, "%")
		scale = 0.01
	}

	v, errGo := strconv.ParseFloat(value, 64)
	if errGo != nil {
		return 0, errors.Wrap(errGo, "invalid brightness format").With("brightness", spec).With("stack", stack.Trace().TrimRuntime())
	}

	v *= scale
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, nil
}

// LerpColor interpolates per channel between a and b.  t is clamped to
// [0,1] so 0 yields a and 1 yields b exactly.
func LerpColor(a Color, b Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

// Scale multiplies every channel by factor, clamping to the valid
// channel range.
func Scale(c Color, factor float64) Color {
	scale := func(v uint8) uint8 {
		scaled := math.Floor(float64(v) * factor)
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return uint8(scaled)
	}
	return Color{scale(c.R), scale(c.G), scale(c.B)}
}
