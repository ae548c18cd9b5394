package sketch

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrNotObject      = errors.New("sketch data is not a JSON object")
	ErrInvalidJSON    = errors.New("sketch data is not valid JSON")
	ErrMalformedEntry = errors.New("malformed entry")
)

// object is a decoded JSON object. Members are read leniently: a member of
// the wrong type reads as absent, so a malformed member never prevents
// reading its siblings.
type object map[string]any

// parseValue decodes raw into a generic tree in a single pass. Blank input
// decodes as null. Nesting beyond the JSON decoder's depth limit (10000
// levels of objects and arrays) is reported as ErrInvalidJSON.
func parseValue(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return v, nil
}

func parseObject(raw []byte) (object, error) {
	v, err := parseValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(v)
	if !ok {
		return nil, ErrNotObject
	}
	return o, nil
}

func asObject(v any) (object, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return object(m), true
}

func (o object) present(key string) bool {
	return o[key] != nil
}

func (o object) number(key string) (float64, bool) {
	f, ok := o[key].(float64)
	return f, ok
}

func (o object) string(key string) (string, bool) {
	s, ok := o[key].(string)
	return s, ok
}

func (o object) boolean(key string) (bool, bool) {
	b, ok := o[key].(bool)
	return b, ok
}

func (o object) object(key string) (object, bool) {
	return asObject(o[key])
}

func (o object) array(key string) ([]any, bool) {
	items, ok := o[key].([]any)
	if ok && items == nil {
		items = []any{}
	}
	return items, ok
}

func (o object) anyMap(key string) map[string]any {
	m, _ := o[key].(map[string]any)
	return m
}

// DecodeDocument decodes a parsed Sketch document as sent by the UI.
// A payload that is blank or not a JSON object yields ErrNotObject and one
// that is not valid JSON yields ErrInvalidJSON. Every member is read
// leniently and malformed members are dropped or marked Invalid.
func DecodeDocument(data []byte) (*Document, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Document: root.anyMap("document"),
		Meta:     root.anyMap("meta"),
	}

	if pages, ok := root.array("pages"); ok {
		doc.Pages = make([]Page, 0, len(pages))
		for _, v := range pages {
			doc.Pages = append(doc.Pages, decodePage(v))
		}
	}

	if symbols, ok := root.array("symbols"); ok {
		for _, v := range symbols {
			var sym Symbol
			if o, ok := asObject(v); ok {
				sym.Name, _ = o.string("name")
			}
			doc.Symbols = append(doc.Symbols, sym)
		}
	}

	if images, ok := root.object("images"); ok {
		doc.Images = make(map[string]Image, len(images))
		for ref := range images {
			o, ok := images.object(ref)
			if !ok {
				continue
			}
			var img Image
			img.DataURL, _ = o.string("dataUrl")
			img.Name, _ = o.string("name")
			doc.Images[ref] = img
		}
	}

	return doc, nil
}

// decodePage decodes one page object. A malformed page yields an empty page.
func decodePage(v any) Page {
	var p Page
	o, ok := asObject(v)
	if !ok {
		return p
	}
	p.Name, _ = o.string("name")
	p.Layers = decodeLayers(o)
	return p
}

func decodeLayers(o object) []Layer {
	items, ok := o.array("layers")
	if !ok {
		return nil
	}
	layers := make([]Layer, 0, len(items))
	for _, v := range items {
		layers = append(layers, decodeLayer(v))
	}
	return layers
}

// DecodeLayer decodes one layer object into its variant. It returns nil
// when raw is not a JSON object.
func DecodeLayer(raw []byte) Layer {
	v, err := parseValue(raw)
	if err != nil {
		return nil
	}
	return decodeLayer(v)
}

func decodeLayer(v any) Layer {
	o, ok := asObject(v)
	if !ok {
		return nil
	}

	layer := newLayer(classTag(o["_class"]))

	base := layer.Base()
	base.Name, _ = o.string("name")
	if f, ok := o.object("frame"); ok {
		base.Frame = decodeFrame(f)
	}
	if s, ok := o.object("style"); ok {
		base.Style = decodeStyle(s)
	}

	switch l := layer.(type) {
	case *Text:
		if as, ok := o.object("attributedString"); ok {
			l.AttributedString = decodeAttributedString(as)
		}
	case *Group:
		l.Layers = decodeLayers(o)
	case *ShapeGroup:
		l.Layers = decodeLayers(o)
	case *Artboard:
		l.Layers = decodeLayers(o)
		if c, err := decodeColor(o["backgroundColor"]); err == nil {
			l.BackgroundColor = c
		}
	case *Bitmap:
		l.Image = decodeImageRef(o["image"])
	}

	return layer
}

// classTag returns the discriminator text of a layer. A tag that is not a
// string keeps its JSON text; null, false and 0 count as no tag.
func classTag(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
	}
	text, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(text)
}

func decodeFrame(o object) *Frame {
	f := &Frame{}
	f.X, _ = o.number("x")
	f.Y, _ = o.number("y")
	f.Width, _ = o.number("width")
	f.Height, _ = o.number("height")
	return f
}

func decodeStyle(o object) *Style {
	s := &Style{}

	if fills, ok := o.array("fills"); ok {
		for _, v := range fills {
			s.Fills = append(s.Fills, decodeFill(v))
		}
	}
	if borders, ok := o.array("borders"); ok {
		for _, v := range borders {
			s.Borders = append(s.Borders, decodeBorder(v))
		}
	}
	if cs, ok := o.object("contextSettings"); ok {
		if v, ok := cs.number("opacity"); ok {
			s.Opacity = &v
		}
	}
	if bo, ok := o.object("borderOptions"); ok {
		s.CornerRadius, _ = bo.number("cornerRadius")
	}

	return s
}

// decodeFill marks a fill Invalid when the entry is not an object or when
// the member its fill type reads is malformed.
func decodeFill(v any) Fill {
	f := Fill{Type: FillUnknown}
	o, ok := asObject(v)
	if !ok {
		f.Invalid = fmt.Errorf("fill: %w", ErrMalformedEntry)
		return f
	}

	if t, ok := o.number("fillType"); ok {
		f.Type = FillType(int(t))
	}
	if v, ok := o.boolean("isEnabled"); ok {
		f.IsEnabled = &v
	}

	color, colorErr := decodeColor(o["color"])
	f.Color = color

	var gradientErr error
	if o.present("gradient") {
		f.Gradient, gradientErr = decodeGradient(o["gradient"])
	}

	switch f.Type {
	case FillSolid:
		if colorErr != nil {
			f.Invalid = fmt.Errorf("fill color: %w", colorErr)
		}
	case FillGradient:
		if gradientErr != nil {
			f.Invalid = fmt.Errorf("fill gradient: %w", gradientErr)
		}
	}

	f.Image = decodeImageRef(o["image"])

	if cs, ok := o.object("contextSettings"); ok {
		if v, ok := cs.number("opacity"); ok {
			f.Opacity = &v
		}
	}

	return f
}

func decodeBorder(v any) Border {
	var b Border
	o, ok := asObject(v)
	if !ok {
		b.Invalid = fmt.Errorf("border: %w", ErrMalformedEntry)
		return b
	}

	if v, ok := o.boolean("isEnabled"); ok {
		b.IsEnabled = &v
	}
	b.Thickness, _ = o.number("thickness")

	color, err := decodeColor(o["color"])
	if err != nil {
		b.Invalid = fmt.Errorf("border color: %w", err)
	}
	b.Color = color

	return b
}

// decodeColor returns nil, nil for an absent color and an error for a
// present value that is not an object.
func decodeColor(v any) (*Color, error) {
	if v == nil {
		return nil, nil
	}
	o, ok := asObject(v)
	if !ok {
		return nil, ErrMalformedEntry
	}
	c := &Color{}
	c.Red, _ = o.number("red")
	c.Green, _ = o.number("green")
	c.Blue, _ = o.number("blue")
	c.Alpha, _ = o.number("alpha")
	return c, nil
}

func decodeGradient(v any) (*Gradient, error) {
	o, ok := asObject(v)
	if !ok {
		return nil, ErrMalformedEntry
	}

	g := &Gradient{}
	if t, ok := o.number("gradientType"); ok {
		g.Type = GradientType(int(t))
	}
	g.From = decodePoint(o["from"])
	g.To = decodePoint(o["to"])

	if !o.present("stops") {
		return g, nil
	}
	stops, ok := o.array("stops")
	if !ok {
		return g, ErrMalformedEntry
	}
	for _, v := range stops {
		var stop GradientStop
		if so, ok := asObject(v); ok {
			stop.Position, _ = so.number("position")
			stop.Color, _ = decodeColor(so["color"])
		}
		g.Stops = append(g.Stops, stop)
	}
	return g, nil
}

// decodePoint accepts {"x":0.5,"y":1} objects and the "{0.5, 1}" strings
// written by Sketch.
func decodePoint(v any) *Point {
	if o, ok := asObject(v); ok {
		p := &Point{}
		p.X, _ = o.number("x")
		p.Y, _ = o.number("y")
		return p
	}
	if s, ok := v.(string); ok {
		return parsePointString(s)
	}
	return nil
}

func parsePointString(s string) *Point {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil
	}
	return &Point{X: x, Y: y}
}

func decodeImageRef(v any) ImageRef {
	o, ok := asObject(v)
	if !ok {
		return ""
	}
	if ref, ok := o.string("_ref"); ok && ref != "" {
		return ImageRef(ref)
	}
	ref, _ := o.string("ref")
	return ImageRef(ref)
}

func decodeAttributedString(o object) *AttributedString {
	as := &AttributedString{}
	as.String, _ = o.string("string")

	runs, ok := o.array("attributes")
	if !ok {
		return as
	}
	for _, v := range runs {
		ro, ok := asObject(v)
		if !ok {
			continue
		}
		as.Attributes = append(as.Attributes, decodeRun(ro))
	}
	return as
}

// decodeRun reads a run either in flattened form or in the Sketch
// "stringAttribute" form where the attributes sit one level deeper.
func decodeRun(o object) RunAttributes {
	if !o.present("MSAttributedStringFontAttribute") {
		if nested, ok := o.object("attributes"); ok {
			o = nested
		}
	}

	var run RunAttributes
	if fa, ok := o.object("MSAttributedStringFontAttribute"); ok {
		if font, ok := fa.object("attributes"); ok {
			run.FontName, _ = font.string("name")
			run.FontSize, _ = font.number("size")
		}
	}
	if c, err := decodeColor(o["MSAttributedStringColorAttribute"]); err == nil {
		run.Color = c
	}
	if ps, ok := o.object("paragraphStyle"); ok {
		if a, ok := ps.number("alignment"); ok {
			align := int(a)
			run.Alignment = &align
		}
	}
	return run
}
