package converter

import (
	"log/slog"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// StyleOptions selects optional translation fidelity.
type StyleOptions struct {
	// FullGradients translates gradient fills with every stop instead of
	// the first stop's color.
	FullGradients bool
	// Images, when set together with FullGradients, lets pattern fills
	// carry their image data.
	Images *ImageStore
}

func (o StyleOptions) translateFill(f sketch.Fill) host.Fill {
	if o.FullGradients && f.Invalid == nil {
		switch f.Type {
		case sketch.FillGradient:
			return TranslateGradient(f)
		case sketch.FillPattern:
			if o.Images != nil {
				return TranslateImageFill(f, o.Images)
			}
		}
	}
	return TranslateFill(f)
}

// ApplyStyle applies the fills, borders, opacity and corner radius of
// style to shape. Each aspect is applied on its own: a host failure on
// one is logged and the others still run.
func ApplyStyle(shape host.Shape, style *sketch.Style, opts StyleOptions, logger *slog.Logger) {
	if style == nil {
		return
	}
	logger = loggerOrDiscard(logger)

	if fills := translateFills(style.Fills, opts); len(fills) > 0 {
		if err := shape.SetFills(fills); err != nil {
			logger.Warn("failed to apply fills", "shape", shape.ID(), "error", err)
		}
	}

	if strokes := translateBorders(style.Borders); len(strokes) > 0 {
		if err := shape.SetStrokes(strokes); err != nil {
			logger.Warn("failed to apply strokes", "shape", shape.ID(), "error", err)
		}
	}

	if o := style.Opacity; o != nil && *o >= 0 && *o <= 1 {
		shape.SetOpacity(*o)
	}

	if style.CornerRadius > 0 && shape.Kind() == host.KindRectangle {
		rounded, ok := shape.(host.Rounded)
		if !ok {
			return
		}
		if err := rounded.SetCornerRadius(style.CornerRadius, style.CornerRadius); err != nil {
			logger.Warn("failed to apply corner radius", "shape", shape.ID(), "error", err)
		}
	}
}

func translateFills(fills []sketch.Fill, opts StyleOptions) []host.Fill {
	var out []host.Fill
	for _, f := range fills {
		if !f.Enabled() {
			continue
		}
		out = append(out, opts.translateFill(f))
	}
	return out
}

func translateBorders(borders []sketch.Border) []host.Stroke {
	var out []host.Stroke
	for i := range borders {
		if !borders[i].Enabled() {
			continue
		}
		if s := TranslateBorder(&borders[i]); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
