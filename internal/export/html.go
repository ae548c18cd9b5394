package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/memhost"
)

const pageCSS = `body{margin:0;font-family:sans-serif;background:#e5e5e5}
section.page{margin:24px}
section.page>h1{font-size:14px;color:#333}
.canvas{position:relative;background:#fff;overflow:visible}
.shape{position:absolute;box-sizing:border-box}
.shape-ellipse{border-radius:50%}
.shape-text>span{white-space:pre-wrap}`

// BuildHTML renders every page of snap as absolutely positioned boxes.
// Shape positions are relative to the parent shape.
func BuildHTML(snap memhost.Snapshot) (string, error) {
	templateHTML := `<html><head><meta charset="utf-8"/><title></title></head><body></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(templateHTML))
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	head := doc.Find("head")
	head.Find("title").SetText("Imported Sketch document")
	head.AppendHtml("<style>" + pageCSS + "</style>")

	body := doc.Find("body")
	for _, page := range snap.Pages {
		body.AppendHtml(`<section class="page"><h1></h1><div class="canvas"></div></section>`)
		section := body.Children().Last()
		section.SetAttr("id", "page-"+page.ID)
		if page.ID == snap.CurrentPageID {
			section.AddClass("current")
		}
		section.Find("h1").SetText(page.Name)

		canvas := section.Find("div.canvas")
		width, height := pageExtent(page.Shapes)
		canvas.SetAttr("style", fmt.Sprintf("width:%spx;height:%spx", px(width), px(height)))
		for _, s := range page.Shapes {
			appendShape(canvas, s)
		}
	}

	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to generate HTML: %w", err)
	}
	return html, nil
}

func appendShape(parent *goquery.Selection, s memhost.ShapeSnapshot) {
	parent.AppendHtml(`<div class="shape"></div>`)
	el := parent.Children().Last()
	el.AddClass("shape-" + string(s.Kind))
	el.SetAttr("data-id", s.ID)
	el.SetAttr("title", s.Name)
	el.SetAttr("style", shapeStyle(s))

	if s.Kind == host.KindText {
		el.AppendHtml("<span></span>")
		el.Children().Last().SetText(s.Content)
	}
	for _, c := range s.Children {
		appendShape(el, c)
	}
}

func shapeStyle(s memhost.ShapeSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "left:%spx;top:%spx;", px(s.X), px(s.Y))
	if s.Width > 0 && s.Height > 0 {
		fmt.Fprintf(&b, "width:%spx;height:%spx;", px(s.Width), px(s.Height))
	}
	if s.Opacity != 1 {
		fmt.Fprintf(&b, "opacity:%s;", px(s.Opacity))
	}
	if len(s.Fills) > 0 {
		if c := cssColor(s.Fills[0]); c != "" {
			if s.Kind == host.KindText {
				fmt.Fprintf(&b, "color:%s;", c)
			} else {
				fmt.Fprintf(&b, "background:%s;", c)
			}
		}
	}
	if len(s.Strokes) > 0 {
		st := s.Strokes[0]
		if c := cssColor(host.Fill{Color: st.Color, Opacity: st.Opacity}); c != "" {
			fmt.Fprintf(&b, "border:%spx solid %s;", px(st.Width), c)
		}
	}
	if s.RX > 0 {
		fmt.Fprintf(&b, "border-radius:%spx;", px(s.RX))
	}
	if s.Kind == host.KindText {
		if s.FontFamily != "" {
			fmt.Fprintf(&b, "font-family:%s;", strconv.Quote(s.FontFamily))
		}
		if s.FontSize > 0 {
			fmt.Fprintf(&b, "font-size:%spx;", px(s.FontSize))
		}
		if s.TextAlign != "" {
			fmt.Fprintf(&b, "text-align:%s;", s.TextAlign)
		}
	}
	return b.String()
}

// pageExtent returns the size of the box, anchored at the page origin,
// that holds every shape.
func pageExtent(shapes []memhost.ShapeSnapshot) (width, height float64) {
	return extent(shapes, 0, 0)
}

func extent(shapes []memhost.ShapeSnapshot, offsetX, offsetY float64) (width, height float64) {
	for _, s := range shapes {
		x, y := offsetX+s.X, offsetY+s.Y
		width = max(width, x+s.Width)
		height = max(height, y+s.Height)
		cw, ch := extent(s.Children, x, y)
		width = max(width, cw)
		height = max(height, ch)
	}
	return width, height
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
