package epdmock

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/display"
)

var (
	// ErrNoRenderLoop is returned by Run when no render routine was registered.
	ErrNoRenderLoop = errors.New("epdmock: no render loop registered")
	// ErrRenderFailed wraps the failure of a render routine.
	ErrRenderFailed = errors.New("epdmock: render routine failed")
	// ErrAlreadyRunning is returned when Run is called a second time.
	ErrAlreadyRunning = errors.New("epdmock: session already started")
	// ErrNotRunning is returned when an edit is submitted to a session whose
	// loop is not running.
	ErrNotRunning = errors.New("epdmock: session not running")
)

// DefaultInterval is the delay between the end of one render and the start
// of the next.
const DefaultInterval = 500 * time.Millisecond

// Routine is a render routine: it draws one frame.
type Routine interface {
	Render(it *Gfx) error
}

// RenderFunc adapts a function to Routine.
type RenderFunc func(it *Gfx) error

// Render calls f(it).
func (f RenderFunc) Render(it *Gfx) error {
	return f(it)
}

// Coder is implemented by routines that can be exported as firmware code.
type Coder interface {
	Code() string
}

// ErrorPolicy decides what the render loop does after a failed frame.
type ErrorPolicy int

const (
	// HaltOnError stops rendering; Run returns the failure.
	HaltOnError ErrorPolicy = iota
	// ContinueOnError logs the failure and keeps the schedule.
	ContinueOnError
)

// Opts is the configuration of a session.
type Opts struct {
	// Surface dimensions in pixels (default: 296×128)
	W int
	H int

	// Delay between renders (default: 500ms)
	Interval time.Duration

	// What to do when the render routine fails (default: HaltOnError)
	OnError ErrorPolicy

	// Optional logger; nil uses the package logger (see SetLogger)
	Logger *slog.Logger

	// Optional panel every frame is drawn to
	Panel display.Drawer

	// Optional hook called on the loop goroutine after every frame. It must
	// not block.
	OnFrame func(Frame)
}

// Frame is one rendered frame, copied out of the session.
type Frame struct {
	Seq      uint64
	Image    *image.RGBA
	Controls []ControlState
	Took     time.Duration
}

// UI is a preview session: one surface, the mock sensors and one render
// routine, re-rendered on a fixed interval.
//
// Register sensors and the render routine, then call Run. All sensor edits
// made while the session runs go through Submit (or SetControl/ToggleControl)
// so that they execute on the loop goroutine, between two frames.
type UI struct {
	opts Opts
	log  *slog.Logger
	gfx  *Gfx

	sensors []Reading
	routine Routine

	// Owned by the loop goroutine once Run has started.
	panel  *ControlPanel
	timer  *time.Timer
	paused bool
	seq    uint64

	calls   chan func()
	frames  chan Frame
	started atomic.Bool
	done    chan struct{}
}

// New creates a session. opts can be nil to use defaults.
func New(opts *Opts) *UI {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if o.W <= 0 || o.H <= 0 {
		o.W, o.H = DefaultWidth, DefaultHeight
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	l := o.Logger
	if l == nil {
		l = Logger()
	}
	return &UI{
		opts:   o,
		log:    l,
		gfx:    NewGfx(o.W, o.H),
		calls:  make(chan func()),
		frames: make(chan Frame, 1),
		done:   make(chan struct{}),
	}
}

// Gfx returns the session's drawing surface.
func (u *UI) Gfx() *Gfx {
	return u.gfx
}

// RegisterSensor appends s to the mock sensors. Call before Run.
func (u *UI) RegisterSensor(s Reading) {
	u.sensors = append(u.sensors, s)
}

// Sensors returns a copy of the registered sensors in registration order.
func (u *UI) Sensors() []Reading {
	return slices.Clone(u.sensors)
}

// RegisterRenderLoop sets the render routine, replacing any previous one.
// Call before Run.
func (u *UI) RegisterRenderLoop(r Routine) {
	u.routine = r
}

// GetCode returns the routine exported as firmware code, or "" when the
// routine cannot be exported (see Coder).
func (u *UI) GetCode() string {
	if c, ok := u.routine.(Coder); ok {
		return c.Code()
	}
	return ""
}

// Code returns the exported listing shown next to the preview. It is the
// same as GetCode.
func (u *UI) Code() string {
	return u.GetCode()
}

// Frames delivers the latest frame. Frames that are not received in time are
// replaced by newer ones.
func (u *UI) Frames() <-chan Frame {
	return u.frames
}

// Done is closed when Run returns.
func (u *UI) Done() <-chan struct{} {
	return u.done
}

// Run builds the control panel and drives the render loop until ctx ends or,
// under HaltOnError, the routine fails. It renders at once, then again one
// Interval after each render finishes. A session runs only once.
func (u *UI) Run(ctx context.Context) error {
	if u.routine == nil {
		return ErrNoRenderLoop
	}
	if !u.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(u.done)

	u.panel = NewControlPanel(u.sensors)
	u.timer = time.NewTimer(0)
	defer u.timer.Stop()

	u.log.Info("session started",
		"size", fmt.Sprintf("%dx%d", u.gfx.Width(), u.gfx.Height()),
		"sensors", len(u.sensors),
		"controls", u.panel.Len(),
		"interval", u.opts.Interval)

	for {
		select {
		case <-ctx.Done():
			u.log.Info("session stopped", "frames", u.seq)
			return nil
		case fn := <-u.calls:
			fn()
		case <-u.timer.C:
			if u.paused {
				continue
			}
			if _, err := u.renderFrame(); err != nil {
				u.log.Error("render failed", "frame", u.seq+1, "err", err)
				if u.opts.OnError == HaltOnError {
					return err
				}
			}
			u.timer.Reset(u.opts.Interval)
		}
	}
}

// RenderOnce renders a single frame synchronously, without the loop. It is
// meant for headless use and fails once Run has been called.
func (u *UI) RenderOnce() (Frame, error) {
	if u.routine == nil {
		return Frame{}, ErrNoRenderLoop
	}
	if u.started.Load() {
		return Frame{}, ErrAlreadyRunning
	}
	if u.panel == nil {
		u.panel = NewControlPanel(u.sensors)
	}
	return u.renderFrame()
}

// renderFrame invokes the routine, recovering a panic into ErrRenderFailed,
// then publishes the frame.
func (u *UI) renderFrame() (f Frame, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrRenderFailed, r)
		}
	}()
	if err := u.routine.Render(u.gfx); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	img := u.gfx.Frame()
	if u.opts.Panel != nil {
		if err := u.opts.Panel.Draw(img.Bounds(), img, image.Point{}); err != nil {
			u.log.Warn("panel update failed", "panel", u.opts.Panel, "err", err)
		}
	}

	u.seq++
	f = Frame{
		Seq:      u.seq,
		Image:    img,
		Controls: u.panel.Snapshot(),
		Took:     time.Since(start),
	}
	u.log.Debug("frame rendered", "frame", f.Seq, "took", f.Took)
	if u.opts.OnFrame != nil {
		u.opts.OnFrame(f)
	}
	u.publish(f)
	return f, nil
}

// publish replaces any unread frame with f.
func (u *UI) publish(f Frame) {
	select {
	case <-u.frames:
	default:
	}
	select {
	case u.frames <- f:
	default:
	}
}

// Submit queues fn to run on the loop goroutine, between two frames.
func (u *UI) Submit(fn func()) error {
	if !u.started.Load() {
		return ErrNotRunning
	}
	select {
	case u.calls <- fn:
		return nil
	case <-u.done:
		return ErrNotRunning
	}
}

// do runs fn on the loop goroutine and waits for its result.
func (u *UI) do(fn func() error) error {
	errc := make(chan error, 1)
	if err := u.Submit(func() { errc <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-u.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrNotRunning
		}
	}
}

func (u *UI) control(i int) (Control, error) {
	if i < 0 || i >= u.panel.Len() {
		return nil, fmt.Errorf("epdmock: control %d out of range", i)
	}
	return u.panel.Controls()[i], nil
}

// SetControl writes input into the i-th control of the mock-sensor panel.
func (u *UI) SetControl(i int, input string) error {
	return u.do(func() error {
		c, err := u.control(i)
		if err != nil {
			return err
		}
		if err := c.Set(input); err != nil {
			return err
		}
		u.log.Info("sensor edited", "sensor", c.Label(), "value", c.Value())
		return nil
	})
}

// ToggleControl flips the i-th control when it is a toggle.
func (u *UI) ToggleControl(i int) error {
	return u.do(func() error {
		c, err := u.control(i)
		if err != nil {
			return err
		}
		t, ok := c.(*ToggleControl)
		if !ok {
			return fmt.Errorf("%w: %s is not a toggle", ErrInvalidInput, c.Label())
		}
		t.Toggle()
		u.log.Info("sensor edited", "sensor", c.Label(), "value", c.Value())
		return nil
	})
}

// Controls returns a snapshot of the mock-sensor panel.
func (u *UI) Controls() ([]ControlState, error) {
	var out []ControlState
	err := u.do(func() error {
		out = u.panel.Snapshot()
		return nil
	})
	return out, err
}

// Pause stops scheduling renders until Resume.
func (u *UI) Pause() error {
	return u.do(func() error {
		if !u.paused {
			u.paused = true
			u.log.Info("session paused", "frames", u.seq)
		}
		return nil
	})
}

// Resume restarts the render schedule with an immediate frame.
func (u *UI) Resume() error {
	return u.do(func() error {
		if u.paused {
			u.paused = false
			u.timer.Reset(0)
			u.log.Info("session resumed")
		}
		return nil
	})
}

// Paused reports whether the render schedule is paused.
func (u *UI) Paused() (bool, error) {
	var p bool
	err := u.do(func() error {
		p = u.paused
		return nil
	})
	return p, err
}
