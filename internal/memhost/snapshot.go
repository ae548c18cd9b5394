package memhost

import (
	"slices"

	"github.com/yuanying/sketch2penpot/internal/host"
)

// Snapshot is a read-only copy of the document tree
type Snapshot struct {
	CurrentPageID string         `json:"currentPageId" msgpack:"currentPageId"`
	Pages         []PageSnapshot `json:"pages" msgpack:"pages"`
}

// PageSnapshot is a read-only copy of a page
type PageSnapshot struct {
	ID     string          `json:"id" msgpack:"id"`
	Name   string          `json:"name" msgpack:"name"`
	Shapes []ShapeSnapshot `json:"shapes" msgpack:"shapes"`
}

// ShapeSnapshot is a read-only copy of a shape and its children
type ShapeSnapshot struct {
	ID          string          `json:"id" msgpack:"id"`
	Kind        host.Kind       `json:"type" msgpack:"type"`
	Name        string          `json:"name" msgpack:"name"`
	X           float64         `json:"x" msgpack:"x"`
	Y           float64         `json:"y" msgpack:"y"`
	Width       float64         `json:"width" msgpack:"width"`
	Height      float64         `json:"height" msgpack:"height"`
	Opacity     float64         `json:"opacity" msgpack:"opacity"`
	Fills       []host.Fill     `json:"fills,omitempty" msgpack:"fills,omitempty"`
	Strokes     []host.Stroke   `json:"strokes,omitempty" msgpack:"strokes,omitempty"`
	RX          float64         `json:"rx,omitempty" msgpack:"rx,omitempty"`
	RY          float64         `json:"ry,omitempty" msgpack:"ry,omitempty"`
	Content     string          `json:"characters,omitempty" msgpack:"characters,omitempty"`
	FontFamily  string          `json:"fontFamily,omitempty" msgpack:"fontFamily,omitempty"`
	FontSize    float64         `json:"fontSize,omitempty" msgpack:"fontSize,omitempty"`
	TextAlign   host.TextAlign  `json:"textAlign,omitempty" msgpack:"textAlign,omitempty"`
	ResizeCalls int             `json:"-" msgpack:"-"`
	Children    []ShapeSnapshot `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Snapshot copies the current state of the document.
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	var snap Snapshot
	if d.current != nil {
		snap.CurrentPageID = d.current.id
	}
	for _, p := range d.pages {
		snap.Pages = append(snap.Pages, PageSnapshot{
			ID:     p.id,
			Name:   p.name,
			Shapes: snapshotShapes(p.children),
		})
	}
	return snap
}

func snapshotShapes(shapes []*Shape) []ShapeSnapshot {
	if len(shapes) == 0 {
		return nil
	}
	out := make([]ShapeSnapshot, 0, len(shapes))
	for _, s := range shapes {
		out = append(out, ShapeSnapshot{
			ID:          s.id,
			Kind:        s.kind,
			Name:        s.name,
			X:           s.x,
			Y:           s.y,
			Width:       s.width,
			Height:      s.height,
			Opacity:     s.opacity,
			Fills:       slices.Clone(s.fills),
			Strokes:     slices.Clone(s.strokes),
			RX:          s.rx,
			RY:          s.ry,
			Content:     s.content,
			FontFamily:  s.fontFamily,
			FontSize:    s.fontSize,
			TextAlign:   s.textAlign,
			ResizeCalls: s.resizes,
			Children:    snapshotShapes(s.children),
		})
	}
	return out
}

// Page returns the snapshot of the page with the given id.
func (s Snapshot) Page(id string) (PageSnapshot, bool) {
	for _, p := range s.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return PageSnapshot{}, false
}

// CountShapes returns the number of shapes on every page, nested ones included.
func (s Snapshot) CountShapes() int {
	n := 0
	for _, p := range s.Pages {
		n += countShapes(p.Shapes)
	}
	return n
}

func countShapes(shapes []ShapeSnapshot) int {
	n := len(shapes)
	for _, s := range shapes {
		n += countShapes(s.Children)
	}
	return n
}
