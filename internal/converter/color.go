package converter

import (
	"fmt"
	"math"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// Placeholder colors used when a source style cannot be reproduced.
const (
	defaultColor = "#000000"

	gradientFallbackColor = "#888888"

	patternPlaceholderColor   = "#e3f2fd"
	patternPlaceholderOpacity = 0.7

	unknownFillColor = "#cccccc"

	// invalidFillColor flags a fill that could not be translated.
	invalidFillColor   = "#ff0000"
	invalidFillOpacity = 0.5
)

// ColorValue is a translated color: an rgb() string plus a separate
// opacity, matching the host fill model.
type ColorValue struct {
	Color   string
	Opacity float64
}

// Fill returns the color as a solid host fill.
func (c ColorValue) Fill() host.Fill {
	return host.Fill{Color: c.Color, Opacity: c.Opacity}
}

// TranslateColor converts a Sketch color. Channels are clamped to [0, 1]
// before scaling; a nil color is opaque black and a zero alpha counts as
// fully opaque.
func TranslateColor(c *sketch.Color) ColorValue {
	if c == nil {
		return ColorValue{Color: defaultColor, Opacity: 1}
	}

	return ColorValue{
		Color:   fmt.Sprintf("rgb(%d, %d, %d)", channel(c.Red), channel(c.Green), channel(c.Blue)),
		Opacity: alpha(c.Alpha),
	}
}

func channel(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func alpha(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// TranslateFill converts one fill descriptor. Gradients degrade to the
// color of their first stop and pattern fills to a placeholder color.
func TranslateFill(f sketch.Fill) host.Fill {
	if f.Invalid != nil {
		return host.Fill{Color: invalidFillColor, Opacity: invalidFillOpacity}
	}

	switch f.Type {
	case sketch.FillSolid:
		return TranslateColor(f.Color).Fill()
	case sketch.FillGradient:
		if g := f.Gradient; g != nil && len(g.Stops) > 0 && g.Stops[0].Color != nil {
			return TranslateColor(g.Stops[0].Color).Fill()
		}
		return host.Fill{Color: gradientFallbackColor, Opacity: 1}
	case sketch.FillPattern:
		return host.Fill{Color: patternPlaceholderColor, Opacity: patternPlaceholderOpacity}
	default:
		return host.Fill{Color: unknownFillColor, Opacity: 1}
	}
}

// TranslateBorder converts a border to a host stroke. It returns nil for
// a nil or unreadable border.
func TranslateBorder(b *sketch.Border) *host.Stroke {
	if b == nil || b.Invalid != nil {
		return nil
	}

	color := TranslateColor(b.Color)
	thickness := b.Thickness
	if thickness == 0 {
		thickness = 1
	}
	opacity := color.Opacity
	if opacity == 0 {
		opacity = 1
	}

	return &host.Stroke{
		Color:   color.Color,
		Opacity: opacity,
		Width:   math.Max(0, thickness),
	}
}

// TranslateGradient converts a gradient fill into a native host gradient
// with every stop. Import uses it only when full gradients are enabled;
// the default is the first-stop color of TranslateFill.
func TranslateGradient(f sketch.Fill) host.Fill {
	g := f.Gradient
	if f.Invalid != nil || g == nil || g.Stops == nil {
		return host.Fill{Color: gradientFallbackColor, Opacity: 1}
	}

	stops := make([]host.GradientStop, 0, len(g.Stops))
	for _, s := range g.Stops {
		stop := host.GradientStop{
			Position: clamp01(s.Position),
			Color:    host.RGBA{A: 1},
		}
		if c := s.Color; c != nil {
			stop.Color = host.RGBA{
				R: clamp01(c.Red),
				G: clamp01(c.Green),
				B: clamp01(c.Blue),
				A: alpha(c.Alpha),
			}
		}
		stops = append(stops, stop)
	}

	gradient := &host.Gradient{Stops: stops}
	if g.Type == sketch.GradientRadial {
		gradient.Type = host.GradientRadial
		gradient.Handles = []host.Point{
			{X: 0.5, Y: 0.5},
			{X: 1, Y: 0.5},
			{X: 0.5, Y: 1},
		}
	} else {
		from := sketch.Point{X: 0, Y: 0}
		to := sketch.Point{X: 1, Y: 1}
		if g.From != nil {
			from = *g.From
		}
		if g.To != nil {
			to = *g.To
		}
		gradient.Type = host.GradientLinear
		gradient.Handles = []host.Point{
			{X: clamp01(from.X), Y: clamp01(from.Y)},
			{X: clamp01(to.X), Y: clamp01(to.Y)},
			{X: clamp01(from.X), Y: clamp01(to.Y)},
		}
	}

	return host.Fill{Opacity: fillOpacity(f), Gradient: gradient}
}

// TranslateImageFill converts a pattern fill into a host image fill when
// its image can be located, and into the pattern placeholder otherwise.
func TranslateImageFill(f sketch.Fill, images *ImageStore) host.Fill {
	if f.Invalid == nil && f.Image != "" {
		if img, ok := images.Lookup(f.Image); ok && img.DataURL != "" {
			return host.Fill{ImageData: img.DataURL, Opacity: fillOpacity(f)}
		}
	}
	return host.Fill{Color: patternPlaceholderColor, Opacity: patternPlaceholderOpacity}
}

func fillOpacity(f sketch.Fill) float64 {
	if f.Opacity == nil || *f.Opacity == 0 {
		return 1
	}
	return *f.Opacity
}
