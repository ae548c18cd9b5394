package sketch

// Layer discriminator tags
const (
	ClassRectangle  = "rectangle"
	ClassOval       = "oval"
	ClassPolygon    = "polygon"
	ClassStar       = "star"
	ClassTriangle   = "triangle"
	ClassText       = "text"
	ClassGroup      = "group"
	ClassArtboard   = "artboard"
	ClassBitmap     = "bitmap"
	ClassImage      = "image"
	ClassShapeGroup = "shapeGroup"

	// ClassSymbolMaster is not dispatched; the container reader collects
	// symbol masters into Document.Symbols.
	ClassSymbolMaster = "symbolMaster"
)

// Layer is a node of the layer tree. The set of implementations is closed:
// every Layer is one of the pointer types declared in this file.
type Layer interface {
	Base() *LayerBase
	isLayer()
}

// Parent is implemented by layers that contain child layers.
type Parent interface {
	Layer
	Children() []Layer
}

// LayerBase holds the attributes shared by every layer kind
type LayerBase struct {
	Class string // original _class tag
	Name  string
	Frame *Frame
	Style *Style
}

// Base returns the shared attributes.
func (b *LayerBase) Base() *LayerBase { return b }

func (*LayerBase) isLayer() {}

// Class returns the tag of l, or "" when l is nil.
func Class(l Layer) string {
	if l == nil {
		return ""
	}
	return l.Base().Class
}

// Rectangle is a "rectangle" layer
type Rectangle struct {
	LayerBase
}

// Oval is an "oval" layer
type Oval struct {
	LayerBase
}

// Polygon is a "polygon", "star" or "triangle" layer
type Polygon struct {
	LayerBase
}

// Text is a "text" layer
type Text struct {
	LayerBase
	AttributedString *AttributedString
}

// Group is a "group" layer
type Group struct {
	LayerBase
	Layers []Layer
}

// Children returns the child layers.
func (g *Group) Children() []Layer { return g.Layers }

// Artboard is an "artboard" layer
type Artboard struct {
	LayerBase
	BackgroundColor *Color
	Layers          []Layer
}

// Children returns the child layers.
func (a *Artboard) Children() []Layer { return a.Layers }

// Bitmap is a "bitmap" or "image" layer
type Bitmap struct {
	LayerBase
	Image ImageRef
}

// ShapeGroup is a "shapeGroup" layer
type ShapeGroup struct {
	LayerBase
	Layers []Layer
}

// Children returns the child layers.
func (s *ShapeGroup) Children() []Layer { return s.Layers }

// Unsupported is any layer whose tag has no dedicated kind, including
// layers without a tag.
type Unsupported struct {
	LayerBase
}

// newLayer returns the empty variant for class.
func newLayer(class string) Layer {
	base := LayerBase{Class: class}
	switch class {
	case ClassRectangle:
		return &Rectangle{LayerBase: base}
	case ClassOval:
		return &Oval{LayerBase: base}
	case ClassPolygon, ClassStar, ClassTriangle:
		return &Polygon{LayerBase: base}
	case ClassText:
		return &Text{LayerBase: base}
	case ClassGroup:
		return &Group{LayerBase: base}
	case ClassArtboard:
		return &Artboard{LayerBase: base}
	case ClassBitmap, ClassImage:
		return &Bitmap{LayerBase: base}
	case ClassShapeGroup:
		return &ShapeGroup{LayerBase: base}
	default:
		return &Unsupported{LayerBase: base}
	}
}
