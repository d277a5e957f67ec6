package epdmock

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/display"

	"github.com/flavioheleno/epdmock/image1bit"
)

var (
	// ErrHalted is returned by every Panel operation after Halt.
	ErrHalted = errors.New("epdmock: panel halted")
	// ErrInvalidBufferSize is returned by Write for a frame of the wrong size.
	ErrInvalidBufferSize = errors.New("epdmock: invalid buffer size")
)

// Sink receives the refreshes of a simulated panel. frame is the panel's
// whole memory after the update; dirty is the region that changed, aligned
// to whole bytes horizontally. full reports a full refresh (the flashing
// update of real e-paper) instead of a partial one.
//
// frame is only valid for the duration of the call.
type Sink interface {
	Flush(frame *image1bit.HorizontalMSB, dirty image.Rectangle, full bool) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame *image1bit.HorizontalMSB, dirty image.Rectangle, full bool) error

// Flush calls f.
func (f SinkFunc) Flush(frame *image1bit.HorizontalMSB, dirty image.Rectangle, full bool) error {
	return f(frame, dirty, full)
}

// PanelOpts is the configuration for a simulated panel.
type PanelOpts struct {
	// Panel dimensions in pixels
	W int // Width (default: 296, must be ≤1024)
	H int // Height (default: 128, must be ≤1024)

	// Partial refreshes between two full refreshes (default: 30, negative
	// disables full refreshes after the first one)
	FullUpdateEvery int
}

// Panel simulates a monochrome e-paper panel. It keeps the panel memory as a
// packed 1 bit frame and forwards only the changed region of every update to
// its Sink.
type Panel struct {
	sink Sink

	rect            image.Rectangle
	fullUpdateEvery int

	// Pixel buffers
	buffer []byte                   // Current panel memory
	next   *image1bit.HorizontalMSB // For lazy double buffering
	stride int

	// State
	inverted bool
	halted   bool
	primed   bool // the first refresh has been sent
	partials int  // partial refreshes since the last full one

	fullRefreshes    int
	partialRefreshes int
}

var _ display.Drawer = (*Panel)(nil)

// NewPanel creates a simulated panel flushing to sink. sink can be nil to
// discard refreshes.
//
// opts can be nil to use defaults (296x128 panel).
func NewPanel(sink Sink, opts *PanelOpts) (*Panel, error) {
	if opts == nil {
		opts = &PanelOpts{W: DefaultWidth, H: DefaultHeight}
	}
	if opts.W <= 0 || opts.W > 1024 {
		return nil, errors.New("epdmock: panel width must be between 1 and 1024")
	}
	if opts.H <= 0 || opts.H > 1024 {
		return nil, errors.New("epdmock: panel height must be between 1 and 1024")
	}
	every := opts.FullUpdateEvery
	if every == 0 {
		every = 30
	}
	if sink == nil {
		sink = SinkFunc(func(*image1bit.HorizontalMSB, image.Rectangle, bool) error { return nil })
	}

	stride := (opts.W + 7) / 8
	return &Panel{
		sink:            sink,
		rect:            image.Rect(0, 0, opts.W, opts.H),
		fullUpdateEvery: every,
		buffer:          make([]byte, stride*opts.H),
		stride:          stride,
	}, nil
}

// ColorModel returns the color model of the panel.
func (p *Panel) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the panel.
func (p *Panel) Bounds() image.Rectangle {
	return p.rect
}

// Frame returns a copy of the panel memory.
func (p *Panel) Frame() *image1bit.HorizontalMSB {
	f := image1bit.NewHorizontalMSB(p.rect)
	copy(f.Pix, p.buffer)
	return f
}

// Refreshes returns the number of full and partial refreshes sent so far.
func (p *Panel) Refreshes() (full, partial int) {
	return p.fullRefreshes, p.partialRefreshes
}

// Write replaces the whole panel memory with raw pixels in HorizontalMSB
// format. The data must be exactly ((W+7)/8)*H bytes. A Write is always a full
// refresh.
func (p *Panel) Write(pixels []byte) (int, error) {
	if p.halted {
		return 0, ErrHalted
	}
	if len(pixels) != len(p.buffer) {
		return 0, ErrInvalidBufferSize
	}
	copy(p.buffer, pixels)
	if p.next != nil {
		copy(p.next.Pix, pixels)
	}
	if err := p.flush(p.rect, true); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws an image onto the panel with differential updates. The dst
// rectangle specifies the destination region on the panel. The src image is
// positioned at src point sp within the destination.
func (p *Panel) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if p.halted {
		return ErrHalted
	}

	dst = dst.Intersect(p.rect)
	if dst.Empty() {
		return nil
	}

	if p.next == nil {
		p.next = image1bit.NewHorizontalMSB(p.rect)
		copy(p.next.Pix, p.buffer)
	}

	draw.Draw(p.next, dst, src, sp, draw.Src)

	minCol, maxCol, minRow, maxRow := p.calculateDiff()
	if minCol > maxCol {
		if !p.primed {
			// The first update is always sent, even for a blank frame.
			return p.flush(p.rect, true)
		}
		return nil
	}
	copy(p.buffer, p.next.Pix)

	full := !p.primed || (p.fullUpdateEvery > 0 && p.partials >= p.fullUpdateEvery)
	dirty := image.Rect(minCol, minRow, maxCol+1, maxRow+1).Intersect(p.rect)
	if full {
		dirty = p.rect
	}
	return p.flush(dirty, full)
}

// flush sends the panel memory to the sink and updates the refresh counters.
func (p *Panel) flush(dirty image.Rectangle, full bool) error {
	frame := &image1bit.HorizontalMSB{Pix: p.buffer, Stride: p.stride, Rect: p.rect}
	if p.inverted {
		frame = p.Frame()
		frame.Invert()
	}
	if err := p.sink.Flush(frame, dirty, full); err != nil {
		return fmt.Errorf("epdmock: panel flush failed: %w", err)
	}
	p.primed = true
	if full {
		p.partials = 0
		p.fullRefreshes++
	} else {
		p.partials++
		p.partialRefreshes++
	}
	return nil
}

// calculateDiff compares the current and next buffers to find the minimal
// changed region, widened to whole bytes. Returns (minCol, maxCol, minRow,
// maxRow) or (1, 0, 0, 0) if nothing changed.
func (p *Panel) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	height := p.rect.Dy()
	stride := p.stride

	minRow, maxRow = height, -1
	minCol, maxCol = p.rect.Dx(), -1

	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(p.buffer[rowStart:rowEnd], p.next.Pix[rowStart:rowEnd]) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = max(maxRow, y)
		for x := 0; x < stride; x++ {
			if p.buffer[rowStart+x] != p.next.Pix[rowStart+x] {
				// Each byte holds 8 pixels
				minCol = min(minCol, x*8)
				maxCol = max(maxCol, x*8+7)
			}
		}
	}
	if maxCol >= p.rect.Dx() {
		maxCol = p.rect.Dx() - 1
	}
	if minCol > maxCol {
		return 1, 0, 0, 0
	}
	return
}

// extractRegion extracts the packed rows of a byte-aligned region.
func (p *Panel) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	first, last := minCol/8, maxCol/8
	byteWidth := last - first + 1

	result := make([]byte, 0, byteWidth*(maxRow-minRow+1))
	for y := minRow; y <= maxRow; y++ {
		start := y*p.stride + first
		result = append(result, p.buffer[start:start+byteWidth]...)
	}
	return result
}

// Region returns the packed panel memory of r widened to whole bytes, the way
// a controller receives a partial window.
func (p *Panel) Region(r image.Rectangle) []byte {
	r = r.Intersect(p.rect)
	if r.Empty() {
		return nil
	}
	return p.extractRegion(r.Min.X, r.Max.X-1, r.Min.Y, r.Max.Y-1)
}

// Invert inverts the panel colors (ink becomes paper and vice versa). It
// triggers a full refresh.
func (p *Panel) Invert(invert bool) error {
	if p.halted {
		return ErrHalted
	}
	if p.inverted == invert {
		return nil
	}
	p.inverted = invert
	return p.flush(p.rect, true)
}

// Halt puts the panel to sleep. After calling Halt, every other operation
// fails with ErrHalted.
func (p *Panel) Halt() error {
	p.halted = true
	return nil
}

// String returns a string representation of the panel.
func (p *Panel) String() string {
	return fmt.Sprintf("epdmock.Panel{%dx%d}", p.rect.Dx(), p.rect.Dy())
}
