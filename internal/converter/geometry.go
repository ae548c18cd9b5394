package converter

import (
	"log/slog"

	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// ApplyGeometry positions shape from frame. Resize is only called when
// both width and height are non-zero; otherwise the host default size is
// kept. A nil frame leaves the shape untouched.
func ApplyGeometry(shape host.Shape, frame *sketch.Frame, logger *slog.Logger) {
	if frame == nil {
		return
	}

	shape.SetPosition(frame.X, frame.Y)

	if frame.Width != 0 && frame.Height != 0 {
		if err := shape.Resize(frame.Width, frame.Height); err != nil {
			loggerOrDiscard(logger).Warn("failed to resize shape",
				"shape", shape.ID(),
				"width", frame.Width,
				"height", frame.Height,
				"error", err)
		}
	}
}

// applyBasics sets the layer name and geometry on a freshly created shape.
func applyBasics(shape host.Shape, base *sketch.LayerBase, logger *slog.Logger) {
	if base.Name != "" {
		shape.SetName(base.Name)
	}
	ApplyGeometry(shape, base.Frame, logger)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
