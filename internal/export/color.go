package export

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/yuanying/sketch2penpot/internal/host"
)

// ParseColor parses the color strings produced by the importer: "#rgb",
// "#rrggbb" and "rgb(r, g, b)".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[len("rgb("):len(s)-1], ",")
		if len(parts) != 3 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
			}
			ch[i] = uint8(v)
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
}

func parseHex(hex string) (color.NRGBA, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color #%s", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color #%s", hex)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// fillColor returns the paint color of a fill with its opacity applied. A
// gradient is painted with the color of its first stop.
func fillColor(f host.Fill) (color.NRGBA, bool) {
	var c color.NRGBA
	switch {
	case f.Color != "":
		parsed, err := ParseColor(f.Color)
		if err != nil {
			return color.NRGBA{}, false
		}
		c = parsed
	case f.Gradient != nil && len(f.Gradient.Stops) > 0:
		s := f.Gradient.Stops[0].Color
		c = color.NRGBA{R: unit(s.R), G: unit(s.G), B: unit(s.B), A: unit(s.A)}
	default:
		return color.NRGBA{}, false
	}
	c.A = uint8(math.Round(float64(c.A) * clampUnit(f.Opacity)))
	return c, true
}

func unit(v float64) uint8 {
	return uint8(math.Round(clampUnit(v) * 255))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// cssColor formats a fill as a CSS color with alpha.
func cssColor(f host.Fill) string {
	c, ok := fillColor(f)
	if !ok {
		return ""
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}
