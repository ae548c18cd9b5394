package host

// Fill is a host fill. Color and opacity are kept apart because the host
// fill model separates them.
type Fill struct {
	Color     string    `json:"fillColor,omitempty" msgpack:"fillColor,omitempty"`
	Opacity   float64   `json:"fillOpacity" msgpack:"fillOpacity"`
	Gradient  *Gradient `json:"fillColorGradient,omitempty" msgpack:"fillColorGradient,omitempty"`
	ImageData string    `json:"fillImage,omitempty" msgpack:"fillImage,omitempty"`
}

// Stroke is a host stroke
type Stroke struct {
	Color   string  `json:"strokeColor" msgpack:"strokeColor"`
	Opacity float64 `json:"strokeOpacity" msgpack:"strokeOpacity"`
	Width   float64 `json:"strokeWidth" msgpack:"strokeWidth"`
}

// GradientType is the host gradient kind
type GradientType string

const (
	GradientLinear GradientType = "gradient-linear"
	GradientRadial GradientType = "gradient-radial"
)

// Gradient is a native host gradient
type Gradient struct {
	Type    GradientType   `json:"type" msgpack:"type"`
	Handles []Point        `json:"gradientHandlePositions" msgpack:"gradientHandlePositions"`
	Stops   []GradientStop `json:"gradientStops" msgpack:"gradientStops"`
}

// Point is a normalized position
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// GradientStop is a gradient color stop with channels in [0, 1]
type GradientStop struct {
	Position float64 `json:"position" msgpack:"position"`
	Color    RGBA    `json:"color" msgpack:"color"`
}

// RGBA is a color with channels in [0, 1]
type RGBA struct {
	R float64 `json:"r" msgpack:"r"`
	G float64 `json:"g" msgpack:"g"`
	B float64 `json:"b" msgpack:"b"`
	A float64 `json:"a" msgpack:"a"`
}
