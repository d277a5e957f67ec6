// Package preview is the terminal host of an epdmock session.
//
// It shows the rendered canvas as a terminal graphic, the mock-sensor panel
// and the exported code side by side, and forwards key presses to the session:
//
//	↑/↓ or k/j   select a sensor
//	space        toggle a binary sensor
//	enter        edit a numeric sensor (enter applies, esc cancels)
//	pgup/pgdn    scroll the code
//	p            pause or resume rendering
//	c            copy the code to the clipboard
//	q, ctrl+c    quit
package preview

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"log/slog"

	"git.sr.ht/~rockorager/vaxis"

	"github.com/flavioheleno/epdmock"
	"github.com/flavioheleno/epdmock/image1bit"
)

// Opts is the configuration of the terminal host.
type Opts struct {
	// Show frames quantized to 1 bit, as the panel would (default: false, frames
	// are shown in color over a paper background)
	Mono bool

	// Optional logger; nil uses the epdmock package logger
	Logger *slog.Logger
}

type frameEvent struct{ epdmock.Frame }

type endEvent struct{ err error }

// Run starts ui and hosts it in the terminal until the user quits or ctx ends.
// It returns the session error, if the session failed before the user quit.
//
// opts can be nil to use defaults.
func Run(ctx context.Context, ui *epdmock.UI, opts *Opts) error {
	if opts == nil {
		opts = &Opts{}
	}
	log := opts.Logger
	if log == nil {
		log = epdmock.Logger()
	}

	vx, err := vaxis.New(vaxis.Options{})
	if err != nil {
		return err
	}
	defer vx.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		err := ui.Run(ctx)
		errc <- err
		vx.PostEvent(endEvent{err})
	}()
	go func() {
		for {
			select {
			case f := <-ui.Frames():
				vx.PostEvent(frameEvent{f})
			case <-ui.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		vx.PostEvent(endEvent{ctx.Err()})
	}()

	m := newModel(ui, ui.Code())
	var canvas vaxis.Image
	defer func() {
		if canvas != nil {
			canvas.Destroy()
		}
	}()

	for ev := range vx.Events() {
		switch ev := ev.(type) {
		case vaxis.Key:
			a := keyAction(ev, m.editing)
			if a == actNone && m.editing {
				m.input.Update(ev)
				break
			}
			switch m.handle(a) {
			case effectQuit:
				cancel()
				return sessionErr(<-errc)
			case effectCopy:
				vx.ClipboardPush(ui.Code())
			}
		case frameEvent:
			m.frame(ev.Frame)
			img, err := vx.NewImage(present(ev.Image, opts.Mono))
			if err != nil {
				log.Warn("canvas unavailable", "err", err)
				break
			}
			if canvas != nil {
				canvas.Destroy()
			}
			canvas = img
		case endEvent:
			if ev.err == nil || errors.Is(ev.err, context.Canceled) {
				if ctx.Err() != nil {
					return sessionErr(<-errc)
				}
				break
			}
			// The session halted; keep showing the last frame until the user
			// quits.
			m.failed = ev.err
			m.status = ev.err.Error()
			log.Error("session halted", "err", ev.err)
		}
		m.draw(vx.Window(), canvas)
		vx.Render()
	}
	cancel()
	return sessionErr(<-errc)
}

// sessionErr drops the errors that only report a stopped session.
func sessionErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// present prepares a frame for display: transparent pixels become paper, and
// in mono mode every pixel is quantized to ink or paper.
func present(frame *image.RGBA, mono bool) image.Image {
	if mono {
		q := image1bit.NewHorizontalMSB(frame.Bounds())
		draw.Draw(q, q.Bounds(), frame, frame.Bounds().Min, draw.Src)
		return q
	}
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Over)
	return out
}
