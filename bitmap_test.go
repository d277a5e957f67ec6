package epdmock

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmapLoadsAsynchronously(t *testing.T) {
	release := make(chan struct{})
	b := loadBitmap("logo", "logo.png", nil, func(string) (image.Image, error) {
		<-release
		return image.NewRGBA(image.Rect(0, 0, 10, 5)), nil
	})

	assert.False(t, b.Ready())
	assert.NoError(t, b.Err())
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))
	assert.True(t, b.Ready())
	assert.Equal(t, "id(logo)", b.Code())
}

func TestBitmapLoadError(t *testing.T) {
	boom := errors.New("boom")
	b := loadBitmap("logo", "missing.png", nil, func(string) (image.Image, error) {
		return nil, boom
	})
	<-b.Done()
	assert.False(t, b.Ready())
	assert.ErrorIs(t, b.Err(), boom)
}

func TestBitmapWaitCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	b := loadBitmap("logo", "slow.png", nil, func(string) (image.Image, error) {
		<-block
		return nil, errors.New("never")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}

func TestNewBitmapFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 20))))
	require.NoError(t, f.Close())

	b := NewBitmap("icon", path, &BitmapOpts{W: 20, H: 20})
	require.NoError(t, b.Wait(context.Background()))
	require.True(t, b.Ready())
	assert.Equal(t, 20, b.image().Width())
	assert.Equal(t, 10, b.image().Height())
}

func TestFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	tests := []struct {
		name string
		w, h int
		want image.Point
	}{
		{"box", 40, 40, image.Pt(40, 20)},
		{"width only", 50, 0, image.Pt(50, 25)},
		{"height only", 0, 10, image.Pt(20, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fit(src, tt.w, tt.h).Bounds().Size())
		})
	}
}
