package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/memhost"
)

const (
	defaultPreviewSize = 2048
	// maxPreviewPixels bounds the canvas allocated before downscaling.
	maxPreviewPixels = 64 * 1000 * 1000
)

// PreviewOptions configures page previews
type PreviewOptions struct {
	// MaxSize is the longest edge of the preview in pixels.
	MaxSize int
	// Background is the canvas color, "#ffffff" when empty.
	Background string
}

// RenderPreview rasterizes the shapes of page. Shapes are drawn as filled
// boxes in stacking order; ellipses are drawn as ellipses and text as a
// box in its text color. The result is scaled down to fit MaxSize.
func RenderPreview(page memhost.PageSnapshot, opts PreviewOptions) (image.Image, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = defaultPreviewSize
	}
	bg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if opts.Background != "" {
		parsed, err := ParseColor(opts.Background)
		if err != nil {
			return nil, fmt.Errorf("preview background: %w", err)
		}
		bg = parsed
	}

	width, height := pageExtent(page.Shapes)
	w, h := int(math.Ceil(width)), int(math.Ceil(height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	// Draw at a reduced scale when the page is too large to allocate.
	scale := 1.0
	if pixels := float64(w) * float64(h); pixels > maxPreviewPixels {
		scale = math.Sqrt(maxPreviewPixels / pixels)
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	canvas := imaging.New(w, h, bg)
	for _, s := range page.Shapes {
		canvas = drawShape(canvas, s, 0, 0, scale)
	}

	if w > maxSize || h > maxSize {
		return imaging.Fit(canvas, maxSize, maxSize, imaging.Lanczos), nil
	}
	return canvas, nil
}

// WritePreview renders page and encodes it as PNG.
func WritePreview(w io.Writer, page memhost.PageSnapshot, opts PreviewOptions) error {
	img, err := RenderPreview(page, opts)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	return nil
}

func drawShape(canvas *image.NRGBA, s memhost.ShapeSnapshot, offsetX, offsetY, scale float64) *image.NRGBA {
	x, y := offsetX+s.X, offsetY+s.Y

	if s.Width > 0 && s.Height > 0 && len(s.Fills) > 0 {
		if c, ok := fillColor(s.Fills[0]); ok {
			c.A = uint8(math.Round(float64(c.A) * clampUnit(s.Opacity)))
			box := shapeBox{
				X: math.Round(x * scale),
				Y: math.Round(y * scale),
				W: max(1, math.Round(s.Width*scale)),
				H: max(1, math.Round(s.Height*scale)),
			}
			if visible := box.clip(canvas.Bounds()); !visible.Empty() {
				var tile *image.NRGBA
				if s.Kind == host.KindEllipse {
					tile = ellipse(box, visible, c)
				} else {
					tile = imaging.New(visible.Dx(), visible.Dy(), c)
				}
				canvas = imaging.Overlay(canvas, tile, visible.Min, 1)
			}
		}
	}

	for _, c := range s.Children {
		canvas = drawShape(canvas, c, x, y, scale)
	}
	return canvas
}

// shapeBox is a shape's rectangle in canvas pixels. It may extend far past
// the canvas.
type shapeBox struct {
	X, Y, W, H float64
}

// clip returns the part of b inside bounds.
func (b shapeBox) clip(bounds image.Rectangle) image.Rectangle {
	clamp := func(v float64, lo, hi int) int {
		if math.IsNaN(v) || v < float64(lo) {
			return lo
		}
		if v > float64(hi) {
			return hi
		}
		return int(v)
	}
	return image.Rect(
		clamp(b.X, bounds.Min.X, bounds.Max.X),
		clamp(b.Y, bounds.Min.Y, bounds.Max.Y),
		clamp(b.X+b.W, bounds.Min.X, bounds.Max.X),
		clamp(b.Y+b.H, bounds.Min.Y, bounds.Max.Y),
	)
}

// ellipse returns a tile covering visible with the part of the ellipse
// inscribed in box drawn in color c.
func ellipse(box shapeBox, visible image.Rectangle, c color.NRGBA) *image.NRGBA {
	tile := image.NewNRGBA(image.Rect(0, 0, visible.Dx(), visible.Dy()))
	rx, ry := box.W/2, box.H/2
	for row := 0; row < visible.Dy(); row++ {
		dy := (float64(visible.Min.Y+row) - box.Y + 0.5 - ry) / ry
		for col := 0; col < visible.Dx(); col++ {
			dx := (float64(visible.Min.X+col) - box.X + 0.5 - rx) / rx
			if dx*dx+dy*dy <= 1 {
				tile.SetNRGBA(col, row, c)
			}
		}
	}
	return tile
}
