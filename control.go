package epdmock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when a control rejects an edit.
var ErrInvalidInput = errors.New("epdmock: invalid control input")

// ControlKind tells hosts which widget to draw for a control.
type ControlKind int

const (
	ControlToggle ControlKind = iota
	ControlNumber
)

func (k ControlKind) String() string {
	if k == ControlNumber {
		return "number"
	}
	return "toggle"
}

// Control is an editable widget bound to one sensor. Set writes the parsed
// input into the sensor's State and touches nothing else.
type Control interface {
	Label() string
	Kind() ControlKind
	Value() string
	Set(input string) error
}

// ControlState is a copy of a control's presentation, safe to hand to another
// goroutine.
type ControlState struct {
	Label string
	Kind  ControlKind
	Value string
}

// ToggleControl edits a BinarySensor.
type ToggleControl struct {
	sensor *BinarySensor
}

func (c *ToggleControl) Label() string     { return c.sensor.Name }
func (c *ToggleControl) Kind() ControlKind { return ControlToggle }

func (c *ToggleControl) Value() string {
	return strconv.FormatBool(c.sensor.State)
}

// Toggle flips the sensor state.
func (c *ToggleControl) Toggle() {
	c.sensor.State = !c.sensor.State
}

// Set accepts true/false, on/off, yes/no and 1/0.
func (c *ToggleControl) Set(input string) error {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "true", "on", "yes", "1":
		c.sensor.State = true
	case "false", "off", "no", "0":
		c.sensor.State = false
	default:
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidInput, input)
	}
	return nil
}

// NumberControl edits a NumericSensor.
type NumberControl struct {
	sensor *NumericSensor
}

func (c *NumberControl) Label() string     { return c.sensor.Name }
func (c *NumberControl) Kind() ControlKind { return ControlNumber }

func (c *NumberControl) Value() string {
	return strconv.FormatFloat(c.sensor.State, 'g', -1, 64)
}

// Set parses input as a float. Invalid input leaves the state unchanged.
func (c *NumberControl) Set(input string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidInput, input)
	}
	c.sensor.State = v
	return nil
}

// ControlPanel is the ordered list of controls for a set of readings.
type ControlPanel struct {
	controls []Control
}

// NewControlPanel builds one control per Controllable reading, in order.
// Readings without a control are skipped.
func NewControlPanel(readings []Reading) *ControlPanel {
	p := &ControlPanel{}
	for _, r := range readings {
		if c, ok := r.(Controllable); ok {
			p.controls = append(p.controls, c.Control())
		}
	}
	return p
}

// Controls returns the controls in registration order.
func (p *ControlPanel) Controls() []Control {
	return p.controls
}

// Len returns the number of controls.
func (p *ControlPanel) Len() int {
	return len(p.controls)
}

// Snapshot copies the presentation of every control.
func (p *ControlPanel) Snapshot() []ControlState {
	out := make([]ControlState, len(p.controls))
	for i, c := range p.controls {
		out[i] = ControlState{Label: c.Label(), Kind: c.Kind(), Value: c.Value()}
	}
	return out
}
