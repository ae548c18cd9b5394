package converter

import (
	"fmt"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// Default artboard size (a common mobile viewport) used when the source
// frame has no width or height.
const (
	defaultArtboardWidth  = 375
	defaultArtboardHeight = 812
)

var (
	imagePlaceholderFill   = host.Fill{Color: "#f0f0f0", Opacity: 1}
	imagePlaceholderStroke = host.Stroke{Color: "#999999", Opacity: 0.5, Width: 1}

	unsupportedFill   = host.Fill{Color: "#ffebee", Opacity: 0.8}
	unsupportedStroke = host.Stroke{Color: "#f44336", Opacity: 0.8, Width: 2}
)

func attach(parent host.Container, shape host.Shape) error {
	if err := parent.AppendChild(shape); err != nil {
		return fmt.Errorf("attach %s: %w", shape.Kind(), err)
	}
	return nil
}

func (w *walker) createRectangle(layer *sketch.Rectangle, parent host.Container) (host.Shape, error) {
	shape, err := w.doc.CreateRectangle()
	if err != nil {
		return nil, fmt.Errorf("create rectangle: %w", err)
	}
	applyBasics(shape, &layer.LayerBase, w.log)
	ApplyStyle(shape, layer.Style, w.style, w.log)
	return shape, attach(parent, shape)
}

func (w *walker) createEllipse(layer *sketch.Oval, parent host.Container) (host.Shape, error) {
	shape, err := w.doc.CreateEllipse()
	if err != nil {
		return nil, fmt.Errorf("create ellipse: %w", err)
	}
	applyBasics(shape, &layer.LayerBase, w.log)
	ApplyStyle(shape, layer.Style, w.style, w.log)
	return shape, attach(parent, shape)
}

// createGeometric renders polygons, stars and triangles as rectangles and
// marks the approximation in the name.
func (w *walker) createGeometric(layer *sketch.Polygon, parent host.Container) (host.Shape, error) {
	shape, err := w.doc.CreateRectangle()
	if err != nil {
		return nil, fmt.Errorf("create rectangle for %s: %w", layer.Class, err)
	}
	applyBasics(shape, &layer.LayerBase, w.log)
	ApplyStyle(shape, layer.Style, w.style, w.log)
	if layer.Name != "" {
		shape.SetName(fmt.Sprintf("%s (%s)", layer.Name, layer.Class))
	}
	return shape, attach(parent, shape)
}

func (w *walker) createText(layer *sketch.Text, parent host.Container) (host.Shape, error) {
	text, err := w.doc.CreateText(textContent(layer))
	if err != nil {
		return nil, fmt.Errorf("create text: %w", err)
	}
	applyBasics(text, &layer.LayerBase, w.log)
	ApplyTextStyle(text, layer, w.style, w.log)
	return text, attach(parent, text)
}

func (w *walker) createImagePlaceholder(layer *sketch.Bitmap, parent host.Container) (host.Shape, error) {
	shape, err := w.doc.CreateRectangle()
	if err != nil {
		return nil, fmt.Errorf("create image placeholder: %w", err)
	}
	applyBasics(shape, &layer.LayerBase, w.log)

	if layer.Name != "" {
		shape.SetName(layer.Name + " (Image)")
	} else {
		shape.SetName("Imported Image")
	}

	if img, ref, ok := w.session.Images.FindForLayer(layer); ok {
		w.log.Debug("image data located for placeholder", "ref", ref, "image", img.Name)
	}

	w.setMarker(shape, imagePlaceholderFill, imagePlaceholderStroke)
	return shape, attach(parent, shape)
}

func (w *walker) createPlaceholder(layer *sketch.Unsupported, parent host.Container) (host.Shape, error) {
	shape, err := w.doc.CreateRectangle()
	if err != nil {
		return nil, fmt.Errorf("create placeholder: %w", err)
	}
	applyBasics(shape, &layer.LayerBase, w.log)

	name := layer.Name
	if name == "" {
		name = "Unknown"
	}
	shape.SetName(fmt.Sprintf("%s (%s)", name, layer.Class))

	w.setMarker(shape, unsupportedFill, unsupportedStroke)
	return shape, attach(parent, shape)
}

// setMarker forces the fixed fill and stroke of a placeholder shape.
func (w *walker) setMarker(shape host.Shape, fill host.Fill, stroke host.Stroke) {
	if err := shape.SetFills([]host.Fill{fill}); err != nil {
		w.log.Warn("failed to apply placeholder fill", "shape", shape.ID(), "error", err)
	}
	if err := shape.SetStrokes([]host.Stroke{stroke}); err != nil {
		w.log.Warn("failed to apply placeholder stroke", "shape", shape.ID(), "error", err)
	}
}

func (w *walker) createArtboard(layer *sketch.Artboard, parent host.Container) (host.Frame, error) {
	frame, err := w.doc.CreateFrame()
	if err != nil {
		return nil, fmt.Errorf("create frame: %w", err)
	}

	if layer.Name != "" {
		frame.SetName(layer.Name)
	}

	if f := layer.Frame; f != nil {
		frame.SetPosition(f.X, f.Y)
		width, height := f.Width, f.Height
		if width == 0 {
			width = defaultArtboardWidth
		}
		if height == 0 {
			height = defaultArtboardHeight
		}
		if err := frame.Resize(width, height); err != nil {
			w.log.Warn("failed to resize artboard", "shape", frame.ID(), "error", err)
		}
	}

	if layer.BackgroundColor != nil {
		if err := frame.SetFills([]host.Fill{TranslateColor(layer.BackgroundColor).Fill()}); err != nil {
			w.log.Warn("failed to apply background color", "shape", frame.ID(), "error", err)
		}
	}

	if err := attach(parent, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// createGroup serves both groups and shape groups. Only the position is
// applied; a group's size follows its children.
func (w *walker) createGroup(base *sketch.LayerBase, parent host.Container) (host.Group, error) {
	group, err := w.doc.CreateGroup()
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	if base.Name != "" {
		group.SetName(base.Name)
	}
	if f := base.Frame; f != nil {
		group.SetPosition(f.X, f.Y)
	}

	if err := attach(parent, group); err != nil {
		return nil, err
	}
	return group, nil
}
