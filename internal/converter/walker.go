package converter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// walker turns a layer tree into host shapes, one layer at a time and in
// source order.
type walker struct {
	doc     host.Document
	session *Session
	style   StyleOptions
	log     *slog.Logger
}

func newWalker(doc host.Document, session *Session, opts ConvertOptions) *walker {
	return &walker{
		doc:     doc,
		session: session,
		style: StyleOptions{
			FullGradients: opts.FullGradients,
			Images:        session.Images,
		},
		log: loggerOrDiscard(opts.Logger),
	}
}

// Walk dispatches every layer to parent in order and returns one outcome
// per layer.
func Walk(doc host.Document, session *Session, layers []sketch.Layer, parent host.Container, opts ConvertOptions) []Outcome {
	w := newWalker(doc, session, opts)
	return w.walk(layers, parent)
}

func (w *walker) walk(layers []sketch.Layer, parent host.Container) []Outcome {
	outcomes := make([]Outcome, 0, len(layers))
	for _, layer := range layers {
		outcomes = append(outcomes, w.dispatch(layer, parent))
	}
	return outcomes
}

// dispatch creates the shape for layer under parent and, for container
// layers, recurses into the children with the new container as parent.
// A failure is recorded in the outcome and never propagates to siblings
// or ancestors.
func (w *walker) dispatch(layer sketch.Layer, parent host.Container) (out Outcome) {
	out.Class = sketch.Class(layer)
	if out.Class == "" {
		w.log.Warn("invalid sketch layer: missing class")
		out.Err = ErrNoClass
		return out
	}
	out.Name = layer.Base().Name

	logger := w.log.With("class", out.Class, "name", displayName(out.Name))
	logger.Debug("creating shape")

	defer func() {
		if r := recover(); r != nil {
			out.Shape = nil
			out.Err = &LayerError{Class: out.Class, Name: out.Name, Err: fmt.Errorf("panic: %v", r)}
			logger.Error("error creating shape", "error", out.Err)
		}
	}()

	var (
		shape     host.Shape
		container host.Container
		children  []sketch.Layer
		err       error
	)

	switch l := layer.(type) {
	case *sketch.Rectangle:
		shape, err = w.createRectangle(l, parent)
	case *sketch.Oval:
		shape, err = w.createEllipse(l, parent)
	case *sketch.Polygon:
		shape, err = w.createGeometric(l, parent)
	case *sketch.Text:
		shape, err = w.createText(l, parent)
	case *sketch.Group:
		var g host.Group
		if g, err = w.createGroup(&l.LayerBase, parent); err == nil {
			shape, container, children = g, g, l.Layers
		}
	case *sketch.ShapeGroup:
		var g host.Group
		if g, err = w.createGroup(&l.LayerBase, parent); err == nil {
			shape, container, children = g, g, l.Layers
		}
	case *sketch.Artboard:
		var f host.Frame
		if f, err = w.createArtboard(l, parent); err == nil {
			shape, container, children = f, f, l.Layers
		}
	case *sketch.Bitmap:
		shape, err = w.createImagePlaceholder(l, parent)
	case *sketch.Unsupported:
		logger.Warn("unsupported layer type")
		shape, err = w.createPlaceholder(l, parent)
	default:
		err = fmt.Errorf("unknown layer variant %T", layer)
	}

	if err != nil {
		out.Err = &LayerError{Class: out.Class, Name: out.Name, Err: err}
		if errors.Is(err, host.ErrRefused) {
			logger.Warn("host refused to create shape", "error", err)
		} else {
			logger.Error("error creating shape", "error", err)
		}
		return out
	}

	out.Shape = shape
	logger.Debug("created shape", "kind", shape.Kind())

	if container != nil && len(children) > 0 {
		out.Children = w.walk(children, container)
	}
	return out
}

func displayName(name string) string {
	if name == "" {
		return "Unnamed"
	}
	return name
}
