package epdmock

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/flavioheleno/epdmock/image1bit"
)

type flush struct {
	dirty image.Rectangle
	full  bool
	pix   []byte
}

type recordSink struct {
	flushes []flush
	err     error
}

func (s *recordSink) Flush(frame *image1bit.HorizontalMSB, dirty image.Rectangle, full bool) error {
	if s.err != nil {
		return s.err
	}
	s.flushes = append(s.flushes, flush{dirty: dirty, full: full, pix: append([]byte(nil), frame.Pix...)})
	return nil
}

func TestPanelOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *PanelOpts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 296x128", &PanelOpts{W: 296, H: 128}, false},
		{"valid 250x122", &PanelOpts{W: 250, H: 122}, false},
		{"valid 1x1 (minimum)", &PanelOpts{W: 1, H: 1}, false},
		{"width zero", &PanelOpts{W: 0, H: 64}, true},
		{"width > 1024", &PanelOpts{W: 1025, H: 64}, true},
		{"height zero", &PanelOpts{W: 296, H: 0}, true},
		{"height > 1024", &PanelOpts{W: 296, H: 2000}, true},
		{"never full refresh (valid)", &PanelOpts{W: 296, H: 128, FullUpdateEvery: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPanel(nil, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPanel() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPanelBounds(t *testing.T) {
	p, err := NewPanel(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := image.Rect(0, 0, 296, 128)
	if got := p.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestPanelColorModel(t *testing.T) {
	p := &Panel{}
	if p.ColorModel() != image1bit.BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
}

func TestPanelString(t *testing.T) {
	p, _ := NewPanel(nil, &PanelOpts{W: 250, H: 122})
	want := "epdmock.Panel{250x122}"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPanelHalt(t *testing.T) {
	p, _ := NewPanel(nil, nil)
	if p.halted {
		t.Error("panel should not be halted initially")
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}

	if err := p.Invert(true); !errors.Is(err, ErrHalted) {
		t.Errorf("Invert error = %v, want ErrHalted", err)
	}
	if _, err := p.Write(make([]byte, len(p.buffer))); !errors.Is(err, ErrHalted) {
		t.Errorf("Write error = %v, want ErrHalted", err)
	}
	if err := p.Draw(p.Bounds(), image.NewRGBA(p.Bounds()), image.Point{}); !errors.Is(err, ErrHalted) {
		t.Errorf("Draw error = %v, want ErrHalted", err)
	}
}

func TestWriteBufferSizeValidation(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		bufferSize int
	}{
		{"296x128 too small", 296, 128, 37*128 - 1},
		{"296x128 too large", 296, 128, 37*128 + 1},
		{"250x122 unpadded", 250, 122, 250 * 122 / 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewPanel(nil, &PanelOpts{W: tt.width, H: tt.height})
			_, err := p.Write(make([]byte, tt.bufferSize))
			if !errors.Is(err, ErrInvalidBufferSize) {
				t.Errorf("Write error = %v, want ErrInvalidBufferSize", err)
			}
		})
	}
}

func TestWriteIsFullRefresh(t *testing.T) {
	sink := &recordSink{}
	p, _ := NewPanel(sink, &PanelOpts{W: 16, H: 2})

	n, err := p.Write([]byte{0xFF, 0x00, 0x01, 0x80})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("Write() = %d, want 4", n)
	}
	if len(sink.flushes) != 1 || !sink.flushes[0].full || sink.flushes[0].dirty != p.Bounds() {
		t.Fatalf("flushes = %+v, want one full refresh", sink.flushes)
	}
	if got := p.Frame().BitAt(0, 0); got != image1bit.On {
		t.Errorf("BitAt(0, 0) = %v, want On", got)
	}
}

func TestCalculateDiffNoChanges(t *testing.T) {
	p, _ := NewPanel(nil, &PanelOpts{W: 16, H: 2})
	p.next = image1bit.NewHorizontalMSB(p.rect)

	minCol, maxCol, _, _ := p.calculateDiff()
	if minCol <= maxCol {
		t.Errorf("No changes should result in minCol > maxCol, got %d > %d", minCol, maxCol)
	}
}

func TestCalculateDiffWithChanges(t *testing.T) {
	tests := []struct {
		name                           string
		w                              int
		next                           []byte
		minCol, maxCol, minRow, maxRow int
	}{
		{"first byte of first row", 16, []byte{0x01, 0x00, 0x00, 0x00}, 0, 7, 0, 0},
		{"second byte of second row", 16, []byte{0x00, 0x00, 0x00, 0x80}, 8, 15, 1, 1},
		{"both rows", 16, []byte{0x00, 0x10, 0x10, 0x00}, 0, 15, 0, 1},
		{"padded last byte is clipped", 12, []byte{0x00, 0x80, 0x00, 0x00}, 8, 11, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewPanel(nil, &PanelOpts{W: tt.w, H: 2})
			p.next = &image1bit.HorizontalMSB{Pix: tt.next, Stride: 2, Rect: p.rect}

			minCol, maxCol, minRow, maxRow := p.calculateDiff()
			if minCol != tt.minCol || maxCol != tt.maxCol || minRow != tt.minRow || maxRow != tt.maxRow {
				t.Errorf("calculateDiff() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					minCol, maxCol, minRow, maxRow, tt.minCol, tt.maxCol, tt.minRow, tt.maxRow)
			}
		})
	}
}

func TestExtractRegion(t *testing.T) {
	p, _ := NewPanel(nil, &PanelOpts{W: 32, H: 2})
	copy(p.buffer, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77})

	// columns 8-23 are bytes 1-2
	region := p.extractRegion(8, 23, 0, 1)
	want := []byte{0x11, 0x22, 0x55, 0x66}
	if len(region) != len(want) {
		t.Fatalf("extractRegion length = %d, want %d", len(region), len(want))
	}
	for i, b := range region {
		if b != want[i] {
			t.Errorf("extractRegion[%d] = 0x%02X, want 0x%02X", i, b, want[i])
		}
	}

	if got := p.Region(image.Rect(9, 1, 10, 2)); len(got) != 1 || got[0] != 0x55 {
		t.Errorf("Region() = %X, want 55", got)
	}
}

func TestRegion(t *testing.T) {
	p, _ := NewPanel(nil, &PanelOpts{W: 32, H: 2})
	copy(p.buffer, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77})

	tests := []struct {
		name string
		r    image.Rectangle
		want []byte
	}{
		{"single pixel widens to byte", image.Rect(9, 1, 10, 2), []byte{0x55}},
		{"spans two bytes", image.Rect(7, 0, 9, 1), []byte{0x00, 0x11}},
		{"clipped to bounds", image.Rect(24, 1, 40, 5), []byte{0x77}},
		{"outside bounds", image.Rect(40, 0, 48, 2), nil},
		{"empty", image.Rectangle{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Region(tt.r)
			if len(got) != len(tt.want) {
				t.Fatalf("Region(%v) = %X, want %X", tt.r, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Region(%v)[%d] = 0x%02X, want 0x%02X", tt.r, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDrawDifferentialUpdates(t *testing.T) {
	sink := &recordSink{}
	p, _ := NewPanel(sink, &PanelOpts{W: 32, H: 8, FullUpdateEvery: 2})
	img := image.NewRGBA(p.Bounds())
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// The first draw is a full refresh even when nothing changed.
	if err := p.Draw(p.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	// Unchanged frames are not sent.
	if err := p.Draw(p.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(sink.flushes) != 1 || !sink.flushes[0].full {
		t.Fatalf("flushes = %+v, want one full refresh", sink.flushes)
	}

	img.Set(10, 3, color.Black)
	if err := p.Draw(p.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	last := sink.flushes[len(sink.flushes)-1]
	if last.full {
		t.Error("single pixel change should be a partial refresh")
	}
	if want := image.Rect(8, 3, 16, 4); last.dirty != want {
		t.Errorf("dirty = %v, want %v", last.dirty, want)
	}

	img.Set(30, 7, color.Black)
	if err := p.Draw(p.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	img.Set(0, 0, color.Black)
	if err := p.Draw(p.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	full, partial := p.Refreshes()
	if full != 2 || partial != 2 {
		t.Errorf("Refreshes() = (%d, %d), want (2, 2)", full, partial)
	}
	if got := p.Frame().BitAt(30, 7); got != image1bit.On {
		t.Errorf("BitAt(30, 7) = %v, want On", got)
	}
}

func TestDrawClipsToBounds(t *testing.T) {
	sink := &recordSink{}
	p, _ := NewPanel(sink, &PanelOpts{W: 8, H: 8})
	if err := p.Draw(image.Rect(100, 100, 200, 200), image.Black, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(sink.flushes) != 0 {
		t.Errorf("draw outside bounds flushed %d times", len(sink.flushes))
	}
}

func TestInvert(t *testing.T) {
	sink := &recordSink{}
	p, _ := NewPanel(sink, &PanelOpts{W: 8, H: 1})
	if err := p.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := p.Invert(true); err != nil {
		t.Fatal(err)
	}
	if len(sink.flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(sink.flushes))
	}
	if got := sink.flushes[0].pix[0]; got != 0xFF {
		t.Errorf("inverted blank frame = 0x%02X, want 0xFF", got)
	}
	// The stored memory is not inverted.
	if p.buffer[0] != 0x00 {
		t.Errorf("buffer[0] = 0x%02X, want 0x00", p.buffer[0])
	}
}

func TestSinkError(t *testing.T) {
	boom := errors.New("boom")
	p, _ := NewPanel(&recordSink{err: boom}, &PanelOpts{W: 8, H: 1})
	if _, err := p.Write([]byte{0x01}); !errors.Is(err, boom) {
		t.Errorf("Write error = %v, want %v", err, boom)
	}
}
