// Package host declares the capabilities the importer needs from the design
// tool that owns the document model.
package host

import "errors"

// ErrRefused is returned (wrapped) when the host declines to create a page
// or shape.
var ErrRefused = errors.New("host refused to create object")

// Kind identifies the type of a host shape
type Kind string

const (
	KindRectangle Kind = "rect"
	KindEllipse   Kind = "ellipse"
	KindText      Kind = "text"
	KindGroup     Kind = "group"
	KindFrame     Kind = "frame"
)

// TextAlign is the horizontal alignment of a text shape
type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignRight   TextAlign = "right"
	AlignCenter  TextAlign = "center"
	AlignJustify TextAlign = "justify"
)

// Shape is a mutable shape handle owned by the host
type Shape interface {
	ID() string
	Kind() Kind
	SetName(name string)
	SetPosition(x, y float64)
	Resize(width, height float64) error
	SetFills(fills []Fill) error
	SetStrokes(strokes []Stroke) error
	SetOpacity(opacity float64)
}

// Rounded is implemented by shapes that support corner radii.
type Rounded interface {
	Shape
	SetCornerRadius(rx, ry float64) error
}

// Text is a text shape
type Text interface {
	Shape
	SetFontFamily(family string)
	SetFontSize(size float64)
	SetTextAlign(align TextAlign)
}

// Container accepts child shapes. Attachment order is stacking order.
type Container interface {
	AppendChild(child Shape) error
}

// Group is a plain container shape
type Group interface {
	Shape
	Container
}

// Frame is a board-like container shape
type Frame interface {
	Shape
	Container
}

// Page is a host page
type Page interface {
	Container
	ID() string
	Name() string
	SetName(name string)
}

// Document is the host document API
type Document interface {
	// CurrentPage returns the page the user is looking at, or nil.
	CurrentPage() Page
	CreatePage() (Page, error)
	CreateRectangle() (Shape, error)
	CreateEllipse() (Shape, error)
	CreateText(content string) (Text, error)
	CreateGroup() (Group, error)
	CreateFrame() (Frame, error)
	// Close tears the plugin down.
	Close() error
}
