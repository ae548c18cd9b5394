// Package memhost is an in-memory implementation of the host document API.
// It backs the CLI and the message bridge, and lets tests observe every
// shape the importer creates.
package memhost

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/yuanying/sketch2penpot/internal/host"
)

var (
	ErrForeignShape = errors.New("shape does not belong to this document")
	ErrSelfAppend   = errors.New("shape cannot contain itself")
	ErrNotRounded   = errors.New("shape kind has no corner radius")
	ErrClosed       = errors.New("document is closed")
)

const defaultShapeSize = 100

// Options configures failure injection. The zero value is a well-behaved host.
type Options struct {
	// Refuse lists shape kinds whose creation is refused.
	Refuse []host.Kind
	// RefusePages refuses page creation.
	RefusePages bool
	// NoCurrentPage makes CurrentPage return nil.
	NoCurrentPage bool
	// FailResize makes every Resize call fail.
	FailResize bool
	// RejectFills lists shape kinds whose SetFills calls fail.
	RejectFills []host.Kind
	// OnAppend, when set, runs before a child is attached; a non-nil error
	// aborts the attachment.
	OnAppend func(child *Shape) error
}

// Stats counts host calls relevant to page handling
type Stats struct {
	PagesCreated  int
	ShapesCreated int
}

// Document is an in-memory host document
type Document struct {
	mu      sync.Mutex
	opts    Options
	pages   []*Page
	current *Page
	stats   Stats
	closed  bool
}

// New creates a document with one current page named "Page 1".
func New(opts Options) *Document {
	d := &Document{opts: opts}
	d.current = d.newPage("Page 1")
	return d
}

func (d *Document) newPage(name string) *Page {
	p := &Page{doc: d, id: uuid.New().String(), name: name}
	d.pages = append(d.pages, p)
	return p
}

// CurrentPage implements host.Document.
func (d *Document) CurrentPage() host.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.opts.NoCurrentPage || d.current == nil {
		return nil
	}
	return d.current
}

// CreatePage implements host.Document.
func (d *Document) CreatePage() (host.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.opts.RefusePages {
		return nil, fmt.Errorf("create page: %w", host.ErrRefused)
	}
	d.stats.PagesCreated++
	return d.newPage(fmt.Sprintf("Page %d", len(d.pages)+1)), nil
}

// CreateRectangle implements host.Document.
func (d *Document) CreateRectangle() (host.Shape, error) {
	s, err := d.createShape(host.KindRectangle, "Rectangle")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateEllipse implements host.Document.
func (d *Document) CreateEllipse() (host.Shape, error) {
	s, err := d.createShape(host.KindEllipse, "Ellipse")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateText implements host.Document.
func (d *Document) CreateText(content string) (host.Text, error) {
	s, err := d.createShape(host.KindText, content)
	if err != nil {
		return nil, err
	}
	s.content = content
	return s, nil
}

// CreateGroup implements host.Document.
func (d *Document) CreateGroup() (host.Group, error) {
	s, err := d.createShape(host.KindGroup, "Group")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateFrame implements host.Document.
func (d *Document) CreateFrame() (host.Frame, error) {
	s, err := d.createShape(host.KindFrame, "Board")
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Document) createShape(kind host.Kind, name string) (*Shape, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if slices.Contains(d.opts.Refuse, kind) {
		return nil, fmt.Errorf("create %s: %w", kind, host.ErrRefused)
	}
	d.stats.ShapesCreated++

	s := &Shape{
		doc:     d,
		id:      uuid.New().String(),
		kind:    kind,
		name:    name,
		opacity: 1,
	}
	if kind != host.KindGroup && kind != host.KindText {
		s.width, s.height = defaultShapeSize, defaultShapeSize
	}
	return s, nil
}

// Close implements host.Document.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Stats returns the page and shape counters.
func (d *Document) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Page is an in-memory host page
type Page struct {
	doc      *Document
	id       string
	name     string
	children []*Shape
}

// ID implements host.Page.
func (p *Page) ID() string { return p.id }

// Name implements host.Page.
func (p *Page) Name() string {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.name
}

// SetName implements host.Page.
func (p *Page) SetName(name string) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	p.name = name
}

// AppendChild implements host.Container.
func (p *Page) AppendChild(child host.Shape) error {
	return p.doc.attach(&p.children, nil, child)
}

// Shape is an in-memory host shape. A single type serves every kind; the
// kind decides which optional capabilities are honoured.
type Shape struct {
	doc      *Document
	parent   *Shape
	siblings *[]*Shape // list the shape is currently attached to

	id       string
	kind     host.Kind
	name     string
	x, y     float64
	width    float64
	height   float64
	fills    []host.Fill
	strokes  []host.Stroke
	opacity  float64
	rx, ry   float64
	resizes  int
	children []*Shape

	content    string
	fontFamily string
	fontSize   float64
	textAlign  host.TextAlign
}

// ID implements host.Shape.
func (s *Shape) ID() string { return s.id }

// Kind implements host.Shape.
func (s *Shape) Kind() host.Kind { return s.kind }

// SetName implements host.Shape.
func (s *Shape) SetName(name string) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.name = name
}

// SetPosition implements host.Shape.
func (s *Shape) SetPosition(x, y float64) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.x, s.y = x, y
}

// Resize implements host.Shape.
func (s *Shape) Resize(width, height float64) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.resizes++
	if s.doc.opts.FailResize {
		return fmt.Errorf("resize %s to %vx%v: rejected", s.kind, width, height)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("resize %s to %vx%v: negative size", s.kind, width, height)
	}
	s.width, s.height = width, height
	return nil
}

// SetFills implements host.Shape.
func (s *Shape) SetFills(fills []host.Fill) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	if slices.Contains(s.doc.opts.RejectFills, s.kind) {
		return fmt.Errorf("set fills on %s: rejected", s.kind)
	}
	s.fills = slices.Clone(fills)
	return nil
}

// SetStrokes implements host.Shape.
func (s *Shape) SetStrokes(strokes []host.Stroke) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.strokes = slices.Clone(strokes)
	return nil
}

// SetOpacity implements host.Shape.
func (s *Shape) SetOpacity(opacity float64) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.opacity = opacity
}

// SetCornerRadius implements host.Rounded for rectangles.
func (s *Shape) SetCornerRadius(rx, ry float64) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	if s.kind != host.KindRectangle {
		return fmt.Errorf("%w: %s", ErrNotRounded, s.kind)
	}
	s.rx, s.ry = rx, ry
	return nil
}

// SetFontFamily implements host.Text.
func (s *Shape) SetFontFamily(family string) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.fontFamily = family
}

// SetFontSize implements host.Text.
func (s *Shape) SetFontSize(size float64) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.fontSize = size
}

// SetTextAlign implements host.Text.
func (s *Shape) SetTextAlign(align host.TextAlign) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.textAlign = align
}

// AppendChild implements host.Container for groups and frames.
func (s *Shape) AppendChild(child host.Shape) error {
	if s.kind != host.KindGroup && s.kind != host.KindFrame {
		return fmt.Errorf("%s cannot contain shapes", s.kind)
	}
	return s.doc.attach(&s.children, s, child)
}

// attach moves child to the end of list. A shape attached elsewhere is
// detached first.
func (d *Document) attach(list *[]*Shape, parent *Shape, child host.Shape) error {
	c, ok := child.(*Shape)
	if !ok || c == nil || c.doc != d {
		return ErrForeignShape
	}
	if c == parent {
		return ErrSelfAppend
	}
	if d.opts.OnAppend != nil {
		if err := d.opts.OnAppend(c); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c.siblings != nil {
		*c.siblings = slices.DeleteFunc(*c.siblings, func(s *Shape) bool { return s == c })
	}
	*list = append(*list, c)
	c.siblings = list
	c.parent = parent
	return nil
}
