package colormap

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme names a predefined color scheme.
type Theme string

const (
	PlasmaTheme    Theme = "plasma"    // Dark blue to purple to yellow
	ClassicTheme   Theme = "classic"   // Blue to red transition
	GrayscaleTheme Theme = "grayscale" // Black to white transition
	JungleTheme    Theme = "jungle"    // Dark green to yellow transition
	ThermalTheme   Theme = "thermal"   // Black to red to yellow to white
	MarineTheme    Theme = "marine"    // Deep blue to cyan to white

	DefaultTheme = PlasmaTheme
)

var themes = map[Theme]struct{}{
	PlasmaTheme:    {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// plasmaStops are evenly spaced samples of the perceptually uniform plasma map.
var plasmaStops = []string{
	"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
	"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
}

// ParseTheme validates a theme name.
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return DefaultTheme, nil
	}
	if _, ok := themes[t]; !ok {
		return "", fmt.Errorf("unknown color theme: %s", name)
	}
	return t, nil
}

// Stops returns n evenly spaced colors of theme as hex strings, lowest first.
func Stops(theme Theme, n int) []string {
	if n < 2 {
		n = 2
	}
	fn := getTheme(theme)
	out := make([]string, n)
	for i := range out {
		c, _ := colorful.MakeColor(fn(float64(i) / float64(n-1)))
		out[i] = c.Hex()
	}
	return out
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.Color {
	return colorful.Hsv(math.Mod(hsv.H, 360), clamp01(hsv.S), clamp01(hsv.V)).Clamped()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func plasma() func(float64) color.Color {
	stops := make([]colorful.Color, len(plasmaStops))
	for i, h := range plasmaStops {
		stops[i], _ = colorful.Hex(h)
	}
	segments := float64(len(stops) - 1)

	return func(v float64) color.Color {
		v = clamp01(v)
		pos := v * segments
		i := int(pos)
		if i >= len(stops)-1 {
			return stops[len(stops)-1]
		}
		return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped()
	}
}

func getTheme(theme Theme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(v float64) color.Color {
			return HSV{
				H: 240 - (v * 240),
				S: 0.9 + (v * 0.1),
				V: math.Pow(v, 0.7),
			}.RGB()
		}

	case GrayscaleTheme:
		return func(v float64) color.Color {
			g := uint8(math.Pow(clamp01(v), 0.7) * 255)
			return color.RGBA{R: g, G: g, B: g, A: 255}
		}

	case JungleTheme:
		return func(v float64) color.Color {
			return HSV{
				H: 120 - (v * 60),
				S: 1.0,
				V: 0.3 + (math.Pow(v, 0.6) * 0.7),
			}.RGB()
		}

	case ThermalTheme:
		return func(v float64) color.Color {
			v = clamp01(v)
			if v < 0.33 {
				return color.RGBA{R: uint8((v * 3) * 255), A: 255}
			}
			if v < 0.66 {
				return color.RGBA{R: 255, G: uint8(((v - 0.33) * 3) * 255), A: 255}
			}
			return color.RGBA{R: 255, G: 255, B: uint8(math.Min(1, (v-0.66)*3) * 255), A: 255}
		}

	case MarineTheme:
		return func(v float64) color.Color {
			return HSV{
				H: 240 - (v * 60),
				S: 1.0 - (v * 0.8),
				V: 0.3 + (math.Pow(v, 0.6) * 0.7),
			}.RGB()
		}

	default:
		return plasma()
	}
}
