package preview

import (
	"fmt"
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/widgets/textinput"
	"github.com/rivo/uniseg"

	"github.com/flavioheleno/epdmock"
)

// session is the part of epdmock.UI the host drives.
type session interface {
	SetControl(i int, input string) error
	ToggleControl(i int) error
	Controls() ([]epdmock.ControlState, error)
	Pause() error
	Resume() error
}

var _ session = (*epdmock.UI)(nil)

type action int

const (
	actNone action = iota
	actQuit
	actUp
	actDown
	actToggle
	actEdit
	actApply
	actCancel
	actPageUp
	actPageDown
	actPause
	actCopy
)

type effect int

const (
	effectNone effect = iota
	effectQuit
	effectCopy
)

// keyAction maps a key press to an action. While editing, only Enter, Esc and
// Ctrl+C are actions; every other key belongs to the input.
func keyAction(k vaxis.Key, editing bool) action {
	if k.EventType == vaxis.EventRelease {
		return actNone
	}
	switch {
	case k.Matches('c', vaxis.ModCtrl):
		return actQuit
	case k.Matches(vaxis.KeyEnter):
		if editing {
			return actApply
		}
		return actEdit
	case k.Matches(vaxis.KeyEsc):
		if editing {
			return actCancel
		}
	}
	if editing {
		return actNone
	}
	switch {
	case k.Matches('q'):
		return actQuit
	case k.Matches(vaxis.KeyUp), k.Matches('k'):
		return actUp
	case k.Matches(vaxis.KeyDown), k.Matches('j'):
		return actDown
	case k.Matches(vaxis.KeySpace):
		return actToggle
	case k.Matches(vaxis.KeyPgUp):
		return actPageUp
	case k.Matches(vaxis.KeyPgDown):
		return actPageDown
	case k.Matches('p'):
		return actPause
	case k.Matches('c'):
		return actCopy
	}
	return actNone
}

// model is the host state, kept apart from the terminal so that it can be
// driven directly.
type model struct {
	s session

	controls []epdmock.ControlState
	selected int

	editing bool
	input   *textinput.Model

	code       []string
	codeScroll int
	codeRows   int // rows of the code viewer at the last draw

	seq    uint64
	paused bool
	status string
	failed error
}

func newModel(s session, code string) *model {
	m := &model{s: s, input: textinput.New(), codeRows: 10}
	code = strings.TrimRight(code, "\n")
	if code == "" {
		code = "// this render routine cannot be exported"
	}
	m.code = strings.Split(code, "\n")
	return m
}

// frame records a rendered frame.
func (m *model) frame(f epdmock.Frame) {
	m.seq = f.Seq
	m.controls = f.Controls
	if m.selected >= len(m.controls) {
		m.selected = max(0, len(m.controls)-1)
	}
}

func (m *model) current() (epdmock.ControlState, bool) {
	if m.selected < 0 || m.selected >= len(m.controls) {
		return epdmock.ControlState{}, false
	}
	return m.controls[m.selected], true
}

// refresh re-reads the controls after an edit so the panel does not wait for
// the next frame.
func (m *model) refresh() {
	if cs, err := m.s.Controls(); err == nil {
		m.controls = cs
	}
}

func (m *model) handle(a action) effect {
	switch a {
	case actQuit:
		return effectQuit
	case actUp:
		if m.selected > 0 {
			m.selected--
		}
	case actDown:
		if m.selected < len(m.controls)-1 {
			m.selected++
		}
	case actToggle:
		c, ok := m.current()
		if !ok || c.Kind != epdmock.ControlToggle {
			return effectNone
		}
		m.report(m.s.ToggleControl(m.selected), c.Label)
	case actEdit:
		c, ok := m.current()
		if !ok {
			return effectNone
		}
		if c.Kind == epdmock.ControlToggle {
			m.report(m.s.ToggleControl(m.selected), c.Label)
			return effectNone
		}
		m.editing = true
		m.input.SetContent(c.Value)
		m.status = "editing " + c.Label + ": Enter applies, Esc cancels"
	case actApply:
		if !m.editing {
			return effectNone
		}
		m.editing = false
		c, _ := m.current()
		m.report(m.s.SetControl(m.selected, m.input.String()), c.Label)
	case actCancel:
		m.editing = false
		m.status = ""
	case actPageUp:
		m.scroll(-max(1, m.codeRows-1))
	case actPageDown:
		m.scroll(max(1, m.codeRows-1))
	case actPause:
		var err error
		if m.paused {
			err = m.s.Resume()
		} else {
			err = m.s.Pause()
		}
		if err != nil {
			m.status = err.Error()
			return effectNone
		}
		m.paused = !m.paused
		m.status = ""
	case actCopy:
		m.status = "code copied to the clipboard"
		return effectCopy
	}
	return effectNone
}

func (m *model) report(err error, label string) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refresh()
	if c, ok := m.current(); ok && c.Label == label {
		m.status = fmt.Sprintf("%s = %s", c.Label, c.Value)
	}
}

func (m *model) scroll(n int) {
	m.codeScroll += n
	if last := len(m.code) - m.codeRows; m.codeScroll > last {
		m.codeScroll = last
	}
	if m.codeScroll < 0 {
		m.codeScroll = 0
	}
}

// rows renders the mock-sensor list, labels padded to a common width.
func (m *model) rows() []string {
	width := 0
	for _, c := range m.controls {
		width = max(width, uniseg.StringWidth(c.Label))
	}
	out := make([]string, len(m.controls))
	for i, c := range m.controls {
		value := c.Value
		if c.Kind == epdmock.ControlToggle {
			value = "[ ]"
			if c.Value == "true" {
				value = "[x]"
			}
		}
		pad := strings.Repeat(" ", width-uniseg.StringWidth(c.Label))
		out[i] = c.Label + pad + "  " + value
	}
	return out
}

var (
	titleStyle    = vaxis.Style{Attribute: vaxis.AttrReverse}
	headingStyle  = vaxis.Style{Attribute: vaxis.AttrBold}
	selectedStyle = vaxis.Style{Attribute: vaxis.AttrReverse}
	dimStyle      = vaxis.Style{Attribute: vaxis.AttrDim}
)

// draw lays out the host: the canvas on the top left, the mock sensors below
// it, the code on the right and a status line at the bottom.
func (m *model) draw(win vaxis.Window, canvas vaxis.Image) {
	win.Clear()
	w, h := win.Size()
	if w < 10 || h < 6 {
		win.Print(vaxis.Segment{Text: "terminal too small"})
		return
	}

	title := fmt.Sprintf(" epdmock  frame %d", m.seq)
	if m.paused {
		title += "  [paused]"
	}
	if m.failed != nil {
		title += "  [halted]"
	}
	bar := win.New(0, 0, w, 1)
	bar.Fill(vaxis.Cell{Character: vaxis.Character{Grapheme: " ", Width: 1}, Style: titleStyle})
	bar.PrintTruncate(0, vaxis.Segment{Text: title, Style: titleStyle})

	left := w * 3 / 5
	body := h - 2

	canvasRows := body / 2
	if canvas != nil {
		canvas.Resize(left, canvasRows)
		_, ch := canvas.CellSize()
		if ch > 0 && ch < canvasRows {
			canvasRows = ch
		}
		canvas.Draw(win.New(0, 1, left, canvasRows))
	} else {
		win.New(0, 1, left, canvasRows).Print(vaxis.Segment{Text: "waiting for the first frame", Style: dimStyle})
	}

	sensors := win.New(0, 2+canvasRows, left, body-canvasRows-1)
	sensors.PrintTruncate(0, vaxis.Segment{Text: "Mock Sensors", Style: headingStyle})
	for i, row := range m.rows() {
		style := vaxis.Style{}
		if i == m.selected {
			style = selectedStyle
		}
		if i == m.selected && m.editing {
			label := m.controls[i].Label
			line := sensors.New(0, 1+i, w, 1)
			line.PrintTruncate(0, vaxis.Segment{Text: label + ": ", Style: style})
			m.input.Draw(line.New(uniseg.StringWidth(label)+2, 0, left, 1))
			continue
		}
		sensors.PrintTruncate(1+i, vaxis.Segment{Text: row, Style: style})
	}
	if len(m.controls) == 0 {
		sensors.PrintTruncate(1, vaxis.Segment{Text: "no sensors", Style: dimStyle})
	}

	code := win.New(left+1, 1, w-left-1, body)
	code.PrintTruncate(0, vaxis.Segment{Text: "Formatted Code", Style: headingStyle})
	m.codeRows = max(1, body-1)
	m.scroll(0)
	for i := 0; i < m.codeRows && m.codeScroll+i < len(m.code); i++ {
		code.PrintTruncate(1+i, vaxis.Segment{Text: m.code[m.codeScroll+i]})
	}

	status := m.status
	if status == "" {
		status = "↑/↓ select  space toggle  enter edit  pgup/pgdn scroll  p pause  c copy  q quit"
	}
	win.New(0, h-1, w, 1).PrintTruncate(0, vaxis.Segment{Text: status, Style: dimStyle})
}
