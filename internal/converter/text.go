package converter

import (
	"log/slog"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// textAlignments maps Sketch paragraph alignment codes to host alignments.
var textAlignments = map[int]host.TextAlign{
	0: host.AlignLeft,
	1: host.AlignRight,
	2: host.AlignCenter,
	3: host.AlignJustify,
}

const defaultTextContent = "Text"

// textContent returns the plain text of layer, or "Text" when it has none.
func textContent(layer *sketch.Text) string {
	if as := layer.AttributedString; as != nil && as.String != "" {
		return as.String
	}
	return defaultTextContent
}

// ApplyTextStyle applies the first attribute run of the layer's attributed
// string to text, then the layer style. Mixed runs are not supported: the
// whole shape gets one style, and style fills override the run color.
func ApplyTextStyle(text host.Text, layer *sketch.Text, opts StyleOptions, logger *slog.Logger) {
	logger = loggerOrDiscard(logger)

	if as := layer.AttributedString; as != nil && len(as.Attributes) > 0 {
		run := as.Attributes[0]

		if run.FontName != "" {
			text.SetFontFamily(run.FontName)
		}
		if run.FontSize > 0 {
			text.SetFontSize(run.FontSize)
		}

		if run.Color != nil {
			if err := text.SetFills([]host.Fill{TranslateColor(run.Color).Fill()}); err != nil {
				logger.Warn("failed to apply text color", "shape", text.ID(), "error", err)
			}
		}

		if run.Alignment != nil {
			if align, ok := textAlignments[*run.Alignment]; ok {
				text.SetTextAlign(align)
			}
		}
	}

	ApplyStyle(text, layer.Style, opts, logger)
}
