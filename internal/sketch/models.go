package sketch

// Document represents a parsed Sketch document as handed over by the UI
type Document struct {
	Document map[string]any
	Pages    []Page // nil when the "pages" key is absent
	Symbols  []Symbol
	Images   map[string]Image // reference id -> image data
	Meta     map[string]any
}

// Page represents one Sketch page
type Page struct {
	Name   string
	Layers []Layer
}

// Symbol represents a symbol master. Only the name is carried.
type Symbol struct {
	Name string
}

// Image holds the data of an embedded bitmap
type Image struct {
	DataURL string
	Name    string
}

// ImageRef references an entry of Document.Images
type ImageRef string

// Color is a Sketch color with channels in [0, 1]
type Color struct {
	Red   float64
	Green float64
	Blue  float64
	Alpha float64 // 0 is treated as fully opaque
}

// Frame is the position and size of a layer relative to its parent
type Frame struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Point is a normalized gradient handle position
type Point struct {
	X float64
	Y float64
}

// FillType discriminates fill descriptors
type FillType int

const (
	FillUnknown  FillType = -1
	FillSolid    FillType = 0
	FillGradient FillType = 1
	FillPattern  FillType = 4
)

// GradientType discriminates gradient shapes
type GradientType int

const (
	GradientLinear GradientType = 0
	GradientRadial GradientType = 1
)

// Fill is one entry of a style's fill list
type Fill struct {
	Type      FillType
	Color     *Color
	Gradient  *Gradient
	Image     ImageRef
	Opacity   *float64 // contextSettings.opacity of the fill itself
	IsEnabled *bool
	Invalid   error // set when the entry or the member its type reads is malformed
}

// Enabled reports whether the fill takes part in rendering.
// Fills are enabled unless explicitly disabled.
func (f Fill) Enabled() bool {
	return f.IsEnabled == nil || *f.IsEnabled
}

// Border is one entry of a style's border list
type Border struct {
	Color     *Color
	Thickness float64
	IsEnabled *bool
	Invalid   error
}

// Enabled reports whether the border takes part in rendering.
func (b Border) Enabled() bool {
	return b.IsEnabled == nil || *b.IsEnabled
}

// Gradient describes a gradient fill
type Gradient struct {
	Type  GradientType
	From  *Point
	To    *Point
	Stops []GradientStop
}

// GradientStop is one color stop of a gradient
type GradientStop struct {
	Position float64
	Color    *Color
}

// Style is the style block of a layer
type Style struct {
	Fills        []Fill
	Borders      []Border
	Opacity      *float64 // contextSettings.opacity
	CornerRadius float64  // borderOptions.cornerRadius
}

// AttributedString is the text content of a text layer
type AttributedString struct {
	String     string
	Attributes []RunAttributes
}

// RunAttributes is one attribute run of an attributed string
type RunAttributes struct {
	FontName  string
	FontSize  float64
	Color     *Color
	Alignment *int // paragraph alignment code, 0-3
}
