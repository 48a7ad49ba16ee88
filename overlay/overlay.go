// Package overlay draws a frame graph report as an image: one column per
// executed pass and one lifetime bar per resource.
//
// It is meant for debug HUDs and for the PNG dump of cmd/fgdemo.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/gogpu/framegraph"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultColumnWidth = 28
	defaultLabelWidth  = 168
	rowHeight          = 16
	margin             = 6
)

var (
	background = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	grid       = color.RGBA{R: 48, G: 48, B: 56, A: 255}
	textColor  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	failColor  = color.RGBA{R: 220, G: 64, B: 64, A: 255}

	kindColors = [...]color.RGBA{
		framegraph.KindTargetSet:  {R: 86, G: 156, B: 214, A: 255},
		framegraph.KindBuffer:     {R: 78, G: 201, B: 176, A: 255},
		framegraph.KindTexture:    {R: 197, G: 134, B: 192, A: 255},
		framegraph.KindDependency: {R: 128, G: 128, B: 128, A: 255},
	}
)

// Option configures Render.
type Option func(*options)

type options struct {
	columnWidth int
	labelWidth  int
}

// WithColumnWidth sets the width in pixels of one pass column.
func WithColumnWidth(px int) Option {
	return func(o *options) {
		if px > 2 {
			o.columnWidth = px
		}
	}
}

// WithLabelWidth sets the width in pixels of the resource name column.
func WithLabelWidth(px int) Option {
	return func(o *options) {
		if px >= 0 {
			o.labelWidth = px
		}
	}
}

// Render draws r. Pass cells are shaded by depth, merged passes are drawn
// hollow. Resource bars span the first to the last pass using them; persistent
// resources get a bright outline.
func Render(r framegraph.Report, opts ...Option) *image.RGBA {
	o := options{columnWidth: defaultColumnWidth, labelWidth: defaultLabelWidth}
	for _, opt := range opts {
		opt(&o)
	}
	pr := message.NewPrinter(language.English)

	cols := max(len(r.Passes), 1)
	width := margin*2 + o.labelWidth + cols*o.columnWidth
	height := margin*2 + rowHeight*(3+len(r.Resources))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	x0 := margin + o.labelWidth
	y := margin

	header := fmt.Sprintf("frame %d  %dx%d  acq %d rel %d merged %d barriers %d",
		r.Frame, r.Width, r.Height, r.Acquired, r.Released, r.Merged, r.Barriers)
	hc := textColor
	if r.Failed {
		header += "  FAILED"
		hc = failColor
	}
	label(img, margin, y, header, hc)
	y += rowHeight

	for i := range cols + 1 {
		x := x0 + i*o.columnWidth
		fill(img, image.Rect(x, y, x+1, height-margin), grid)
	}

	maxDepth := 0
	for _, p := range r.Passes {
		maxDepth = max(maxDepth, p.Depth)
	}
	label(img, margin, y, "passes", textColor)
	for i, p := range r.Passes {
		cell := image.Rect(x0+i*o.columnWidth+2, y+2, x0+(i+1)*o.columnWidth-1, y+rowHeight-2)
		c := depthColor(p.Depth, maxDepth)
		if p.Merged {
			outline(img, cell, c)
		} else {
			fill(img, cell, c)
		}
	}
	y += rowHeight

	for i, p := range r.Passes {
		label(img, x0+i*o.columnWidth+2, y, initials(p.Name), textColor)
	}
	y += rowHeight

	for _, res := range r.Resources {
		label(img, margin, y, resourceLabel(pr, res, o.labelWidth), textColor)
		first, last := max(res.First, 0), max(res.Last, res.First)
		bar := image.Rect(x0+first*o.columnWidth+3, y+4, x0+(last+1)*o.columnWidth-2, y+rowHeight-4)
		c := kindColor(res.Kind)
		fill(img, bar, c)
		if res.Lifetime != framegraph.Transient {
			outline(img, bar.Inset(-1), textColor)
		}
		y += rowHeight
	}
	return img
}

// Summary formats r as text, one pass and one resource per line.
// Byte counts use English digit grouping.
func Summary(r framegraph.Report) string {
	pr := message.NewPrinter(language.English)
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %d %dx%d: %d passes, %d merged, %d barriers, %d acquired, %d released",
		r.Frame, r.Width, r.Height, len(r.Passes), r.Merged, r.Barriers, r.Acquired, r.Released)
	if r.Failed {
		sb.WriteString(" (failed)")
	}
	sb.WriteByte('\n')
	for i, p := range r.Passes {
		merged := ""
		if p.Merged {
			merged = " merged"
		}
		fmt.Fprintf(&sb, "  %2d d%d %-20s -> %s%s\n", i, p.Depth, p.Name, p.Output, merged)
	}
	for _, res := range r.Resources {
		fmt.Fprintf(&sb, "  [%d..%d] %s\n", res.First, res.Last, describe(pr, res))
	}
	return sb.String()
}

func describe(pr *message.Printer, res framegraph.ResourceReport) string {
	switch res.Kind {
	case framegraph.KindBuffer:
		return res.Name + " " + res.Lifetime.String() + " " + pr.Sprintf("%dB", res.Bytes)
	case framegraph.KindDependency:
		return res.Name
	default:
		return fmt.Sprintf("%s %s %dx%d", res.Name, res.Lifetime, res.Size.Width, res.Size.Height)
	}
}

// resourceLabel fits the resource description into px pixels of 7px glyphs.
func resourceLabel(pr *message.Printer, res framegraph.ResourceReport, px int) string {
	s := describe(pr, res)
	n := px / basicfont.Face7x13.Advance
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// initials shortens a pass name to fit a column.
func initials(name string) string {
	if len(name) <= 3 {
		return name
	}
	return name[:3]
}

func depthColor(depth, maxDepth int) color.RGBA {
	t := 1.0
	if maxDepth > 0 {
		t = float64(depth) / float64(maxDepth)
	}
	//nolint:gosec // G115: t is in [0, 1]
	return color.RGBA{R: uint8(230 - 140*t), G: uint8(170 - 60*t), B: uint8(60 + 120*t), A: 255}
}

func kindColor(k framegraph.ResourceKind) color.RGBA {
	if int(k) < len(kindColors) {
		return kindColors[k]
	}
	return grid
}

// label draws s with its top-left corner at (x, y).
func label(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent+1),
	}
	d.DrawString(s)
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func outline(dst draw.Image, r image.Rectangle, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
