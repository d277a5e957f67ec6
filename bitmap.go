package epdmock

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// BitmapOpts configures how a Bitmap is prepared once loaded.
type BitmapOpts struct {
	// Fit the image inside W×H, keeping the aspect ratio (0 = keep original)
	W, H int
}

// Bitmap is an image resource referenced by source path. It loads in the
// background; until it is ready, drawing it does nothing.
type Bitmap struct {
	ID  string
	Src string

	buf  atomic.Pointer[gg.ImageBuf]
	err  error
	done chan struct{}
}

// NewBitmap starts loading src (PNG, JPEG, GIF, BMP, WebP or TIFF) and returns
// immediately. opts can be nil to keep the original size.
func NewBitmap(id, src string, opts *BitmapOpts) *Bitmap {
	return loadBitmap(id, src, opts, func(path string) (image.Image, error) {
		return imaging.Open(path, imaging.AutoOrientation(true))
	})
}

// NewBitmapFromImage wraps an already decoded image. The Bitmap is ready at once.
func NewBitmapFromImage(id string, img image.Image) *Bitmap {
	b := &Bitmap{ID: id, done: make(chan struct{})}
	b.buf.Store(gg.ImageBufFromImage(img))
	close(b.done)
	return b
}

func loadBitmap(id, src string, opts *BitmapOpts, open func(string) (image.Image, error)) *Bitmap {
	b := &Bitmap{ID: id, Src: src, done: make(chan struct{})}
	go func() {
		defer close(b.done)
		img, err := open(src)
		if err != nil {
			b.err = fmt.Errorf("epdmock: bitmap %q: %w", src, err)
			Logger().Warn("bitmap failed to load", "id", id, "src", src, "err", err)
			return
		}
		if opts != nil && (opts.W > 0 || opts.H > 0) {
			img = fit(img, opts.W, opts.H)
		}
		b.buf.Store(gg.ImageBufFromImage(img))
		Logger().Debug("bitmap loaded", "id", id, "src", src, "bounds", img.Bounds())
	}()
	return b
}

// fit scales img into w×h; a zero dimension is derived from the aspect ratio.
func fit(img image.Image, w, h int) image.Image {
	switch {
	case w <= 0:
		return imaging.Resize(img, 0, h, imaging.Lanczos)
	case h <= 0:
		return imaging.Resize(img, w, 0, imaging.Lanczos)
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

// Ready reports whether the image has finished loading successfully.
func (b *Bitmap) Ready() bool {
	return b.buf.Load() != nil
}

// Done is closed once loading has finished, successfully or not.
func (b *Bitmap) Done() <-chan struct{} {
	return b.done
}

// Err returns the load error, if loading has finished and failed.
func (b *Bitmap) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// Wait blocks until loading has finished or ctx ends.
func (b *Bitmap) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Code renders the bitmap reference as a firmware expression.
func (b *Bitmap) Code() string {
	return "id(" + b.ID + ")"
}

func (b *Bitmap) image() *gg.ImageBuf {
	return b.buf.Load()
}
