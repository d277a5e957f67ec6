package epdmock

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/flavioheleno/epdmock/image1bit"
)

// Default surface dimensions, those of a 2.9" e-paper panel.
const (
	DefaultWidth  = 296
	DefaultHeight = 128
)

// TextAlign is the horizontal anchor of printed text relative to x.
// Text is always anchored at its top.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

func (a TextAlign) String() string {
	switch a {
	case AlignCenter:
		return "CENTER"
	case AlignRight:
		return "RIGHT"
	}
	return "LEFT"
}

// Code renders the alignment as a firmware expression.
func (a TextAlign) Code() string {
	return "TextAlign::" + a.String()
}

// anchor is the fraction of the text width left of x.
func (a TextAlign) anchor() float64 {
	switch a {
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	}
	return 0
}

// Gfx is the drawing surface handed to render routines. It mirrors the display
// API of the firmware: device pixel coordinates, a fixed-size canvas, text
// anchored at its top.
//
// Gfx never fails: unknown colors and fonts draw nothing (or keep the previous
// font), coordinates outside the canvas are clipped.
type Gfx struct {
	ctx    *gg.Context
	width  int
	height int

	face     text.Face
	fontSpec string
}

// NewGfx creates a transparent surface of width×height pixels. Non-positive
// dimensions fall back to DefaultWidth×DefaultHeight.
func NewGfx(width, height int) *Gfx {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	ctx := gg.NewContext(width, height)
	ctx.SetLineWidth(1)
	ctx.SetLineCap(gg.LineCapButt)
	ctx.SetLineJoin(gg.LineJoinMiter)

	g := &Gfx{ctx: ctx, width: width, height: height}
	g.setFont(DefaultFontSpec)
	return g
}

// Close releases the underlying surface.
func (g *Gfx) Close() error {
	return g.ctx.Close()
}

// setFont switches the active face. Invalid specs leave the active face alone.
func (g *Gfx) setFont(spec string) {
	if spec == g.fontSpec {
		return
	}
	face, ok := faceFor(spec)
	if !ok {
		return
	}
	g.face = face
	g.fontSpec = spec
	g.ctx.SetFont(face)
}

// paint makes c the current color and reports whether c is drawable.
func (g *Gfx) paint(c Color) bool {
	col, ok := c.resolve()
	if !ok {
		return false
	}
	g.ctx.SetRGBA(col.R, col.G, col.B, col.A)
	return true
}

func (g *Gfx) fill() {
	if err := g.ctx.Fill(); err != nil {
		Logger().Debug("fill failed", "err", err)
	}
}

func (g *Gfx) stroke() {
	if err := g.ctx.Stroke(); err != nil {
		Logger().Debug("stroke failed", "err", err)
	}
}

// Print draws text in ColorOn with its top edge at y, horizontally anchored at
// x according to align.
func (g *Gfx) Print(x, y int, font Font, align TextAlign, s string) {
	g.setFont(font.Spec)
	if g.face == nil || s == "" || !g.paint(ColorOn) {
		return
	}
	w, _ := g.ctx.MeasureString(s)
	baseline := float64(y) + g.face.Metrics().Ascent
	g.ctx.DrawString(s, float64(x)-w*align.anchor(), baseline)
}

// Printf formats args with the C format (see Sprintf) and prints the result.
func (g *Gfx) Printf(x, y int, font Font, align TextAlign, format string, args ...any) {
	g.Print(x, y, font, align, Sprintf(format, args...))
}

// Fill sets every pixel to c.
func (g *Gfx) Fill(c Color) {
	col, ok := c.resolve()
	if !ok {
		return
	}
	g.ctx.ClearWithColor(col)
}

// Clear makes every pixel transparent. Presented frames show transparent
// pixels as paper.
func (g *Gfx) Clear() {
	g.ctx.Clear()
}

// DrawPixelAt sets one pixel to c.
func (g *Gfx) DrawPixelAt(x, y int, c Color) {
	col, ok := c.resolve()
	if !ok {
		return
	}
	g.ctx.SetPixel(x, y, col)
}

// normRect makes w and h non-negative by moving the origin.
func normRect(x, y, w, h int) (int, int, int, int) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return x, y, w, h
}

// Rectangle draws the 1px outline of the w×h rectangle whose top-left pixel is
// (x, y). The outline covers columns x..x+w-1 and rows y..y+h-1.
func (g *Gfx) Rectangle(x, y, w, h int, c Color) {
	x, y, w, h = normRect(x, y, w, h)
	if w == 0 || h == 0 {
		return
	}
	if w <= 2 || h <= 2 {
		g.FilledRectangle(x, y, w, h, c)
		return
	}
	if !g.paint(c) {
		return
	}
	g.ctx.DrawRectangle(float64(x)+0.5, float64(y)+0.5, float64(w-1), float64(h-1))
	g.stroke()
}

// FilledRectangle fills the w×h rectangle whose top-left pixel is (x, y).
func (g *Gfx) FilledRectangle(x, y, w, h int, c Color) {
	x, y, w, h = normRect(x, y, w, h)
	if w == 0 || h == 0 || !g.paint(c) {
		return
	}
	g.ctx.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	g.fill()
}

// Image draws b with its top-left corner at (x, y). A bitmap that has not
// finished loading is skipped.
func (g *Gfx) Image(x, y int, b *Bitmap) {
	if b == nil {
		return
	}
	buf := b.image()
	if buf == nil {
		return
	}
	g.ctx.DrawImage(buf, float64(x), float64(y))
}

// Line strokes a 1px line from (x1, y1) towards (x2, y2). Horizontal and
// vertical lines cover the pixels from the start up to, but not including, the
// end coordinate; they are snapped to pixel centers so they stay 1px wide.
func (g *Gfx) Line(x1, y1, x2, y2 int, c Color) {
	if (x1 == x2 && y1 == y2) || !g.paint(c) {
		return
	}
	fx1, fy1, fx2, fy2 := float64(x1), float64(y1), float64(x2), float64(y2)
	switch {
	case y1 == y2:
		fy1 += 0.5
		fy2 += 0.5
	case x1 == x2:
		fx1 += 0.5
		fx2 += 0.5
	default:
		fx1, fy1, fx2, fy2 = fx1+0.5, fy1+0.5, fx2+0.5, fy2+0.5
	}
	g.ctx.DrawLine(fx1, fy1, fx2, fy2)
	g.stroke()
}

// HorizontalLine draws width pixels to the right of (x, y). The empty color
// means ColorOn.
func (g *Gfx) HorizontalLine(x, y, width int, c Color) {
	g.Line(x, y, x+width, y, c)
}

// VerticalLine draws height pixels downwards from (x, y). The empty color
// means ColorOn.
func (g *Gfx) VerticalLine(x, y, height int, c Color) {
	g.Line(x, y, x, y+height, c)
}

// Circle strokes a 1px circle of radius r around the pixel (cx, cy). The
// empty color means ColorOn.
func (g *Gfx) Circle(cx, cy, r int, c Color) {
	if r < 0 || !g.paint(c) {
		return
	}
	g.ctx.DrawCircle(float64(cx)+0.5, float64(cy)+0.5, float64(r))
	g.stroke()
}

// FilledCircle fills the disc of radius r around the pixel (cx, cy). The
// empty color means ColorOn.
func (g *Gfx) FilledCircle(cx, cy, r int, c Color) {
	if r < 0 || !g.paint(c) {
		return
	}
	g.ctx.DrawCircle(float64(cx)+0.5, float64(cy)+0.5, float64(r)+0.5)
	g.fill()
}

// Width returns the fixed surface width.
func (g *Gfx) Width() int {
	return g.width
}

// Height returns the fixed surface height.
func (g *Gfx) Height() int {
	return g.height
}

// Frame returns a copy of the current surface.
func (g *Gfx) Frame() *image.RGBA {
	_ = g.ctx.FlushGPU()
	img := g.ctx.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// Mono returns the current surface as the panel would show it: ink where the
// surface is dark and opaque, paper elsewhere.
func (g *Gfx) Mono() *image1bit.HorizontalMSB {
	return toMono(g.Frame())
}

func toMono(src image.Image) *image1bit.HorizontalMSB {
	mono := image1bit.NewHorizontalMSB(src.Bounds())
	draw.Draw(mono, mono.Bounds(), src, src.Bounds().Min, draw.Src)
	return mono
}

// SavePNG writes the current surface to path.
func (g *Gfx) SavePNG(path string) error {
	return g.ctx.SavePNG(path)
}
