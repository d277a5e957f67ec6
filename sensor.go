package epdmock

// Reading is a registered input: anything with a label. Readings that are also
// Controllable get an editable control in the mock-sensor panel; the others
// are kept in the session but shown as nothing.
type Reading interface {
	SensorName() string
}

// Controllable is implemented by sensors that know how to build their control.
type Controllable interface {
	Control() Control
}

// Sensor is a named, mutable value standing in for a firmware sensor.
// ID is the firmware identifier used when exporting code, Name the label shown
// next to its control.
type Sensor[T any] struct {
	ID    string
	Name  string
	State T
}

// SensorName returns the label.
func (s *Sensor[T]) SensorName() string {
	return s.Name
}

// SensorID returns the firmware identifier.
func (s *Sensor[T]) SensorID() string {
	return s.ID
}

// Code renders the sensor's state as a firmware expression.
func (s *Sensor[T]) Code() string {
	return "id(" + s.ID + ").state"
}

// BinarySensor holds an on/off state and is edited with a toggle.
type BinarySensor struct {
	Sensor[bool]
}

func NewBinarySensor(id, name string, state bool) *BinarySensor {
	return &BinarySensor{Sensor[bool]{ID: id, Name: name, State: state}}
}

// Control returns a toggle bound to s.
func (s *BinarySensor) Control() Control {
	return &ToggleControl{sensor: s}
}

// Number returns the state as 1 or 0.
func (s *BinarySensor) Number() float64 {
	if s.State {
		return 1
	}
	return 0
}

// NumericSensor holds a number and is edited with a numeric input.
type NumericSensor struct {
	Sensor[float64]
}

func NewNumericSensor(id, name string, state float64) *NumericSensor {
	return &NumericSensor{Sensor[float64]{ID: id, Name: name, State: state}}
}

// Control returns a numeric input bound to s.
func (s *NumericSensor) Control() Control {
	return &NumberControl{sensor: s}
}

// Number returns the state.
func (s *NumericSensor) Number() float64 {
	return s.State
}

// TextSensor holds a string. There is no control for it.
type TextSensor struct {
	Sensor[string]
}

func NewTextSensor(id, name, state string) *TextSensor {
	return &TextSensor{Sensor[string]{ID: id, Name: name, State: state}}
}
