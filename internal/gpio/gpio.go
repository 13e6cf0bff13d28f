// Package gpio provides push-button, control-line and output access with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"

	"github.com/sweeney/stopwatch/internal/logic"
)

// ButtonReader samples the polled push-buttons.
type ButtonReader interface {
	// Read returns the logical (pressed = true) level of every button.
	Read() (logic.Buttons, error)

	// Close releases GPIO resources.
	Close() error
}

// OutputWriter drives the alarm line and the two mode indicators.
type OutputWriter interface {
	Write(out logic.Outputs) error
}

// Board is a ButtonReader that also drives the outputs.
type Board interface {
	ButtonReader
	OutputWriter
}

// PostFunc receives one control event from an edge-triggered line. It is
// called from the GPIO event goroutine and must not block.
type PostFunc func(kind logic.InputKind)

// Edge selects which transition of a control line triggers its event.
type Edge string

const (
	EdgeRising  Edge = "rising"
	EdgeFalling Edge = "falling"
)

// ControlPin is an edge-triggered control input.
type ControlPin struct {
	Offset int  `yaml:"pin"`
	Edge   Edge `yaml:"edge"`
}

// Pins maps every stopwatch signal to a line offset on one chip.
type Pins struct {
	Chip string `yaml:"chip"`
	// ActiveLow inverts button levels: a line reading 0 is pressed
	// (buttons to ground with pull-ups).
	ActiveLow bool `yaml:"active_low"`

	Mode       int `yaml:"mode"`
	HourUp     int `yaml:"hour_up"`
	HourDown   int `yaml:"hour_down"`
	MinuteUp   int `yaml:"minute_up"`
	MinuteDown int `yaml:"minute_down"`
	SecondUp   int `yaml:"second_up"`
	SecondDown int `yaml:"second_down"`

	Reset  ControlPin `yaml:"reset"`
	Pause  ControlPin `yaml:"pause"`
	Resume ControlPin `yaml:"resume"`

	Alarm     int `yaml:"alarm"`
	CountUp   int `yaml:"count_up"`
	CountDown int `yaml:"count_down"`
}

// Default pin assignment (BCM numbering).
var DefaultPins = Pins{
	Chip:       "gpiochip0",
	ActiveLow:  true,
	Mode:       5,
	HourUp:     6,
	HourDown:   13,
	MinuteUp:   19,
	MinuteDown: 26,
	SecondUp:   12,
	SecondDown: 16,
	Reset:      ControlPin{Offset: 17, Edge: EdgeFalling},
	Pause:      ControlPin{Offset: 27, Edge: EdgeRising},
	Resume:     ControlPin{Offset: 22, Edge: EdgeFalling},
	Alarm:      23,
	CountUp:    24,
	CountDown:  25,
}

// ButtonOffsets returns the button offsets in the order Read samples them.
func (p Pins) ButtonOffsets() []int {
	return []int{p.Mode, p.HourUp, p.HourDown, p.MinuteUp, p.MinuteDown, p.SecondUp, p.SecondDown}
}

// OutputOffsets returns the output offsets in the order Write drives them.
func (p Pins) OutputOffsets() []int {
	return []int{p.Alarm, p.CountUp, p.CountDown}
}

// Validate checks that every offset is non-negative and used once.
func (p Pins) Validate() error {
	seen := make(map[int]string)
	check := func(name string, off int) error {
		if off < 0 {
			return fmt.Errorf("pin %s: negative offset %d", name, off)
		}
		if other, ok := seen[off]; ok {
			return fmt.Errorf("pin %s: offset %d already used by %s", name, off, other)
		}
		seen[off] = name
		return nil
	}

	named := []struct {
		name string
		off  int
	}{
		{"mode", p.Mode}, {"hour_up", p.HourUp}, {"hour_down", p.HourDown},
		{"minute_up", p.MinuteUp}, {"minute_down", p.MinuteDown},
		{"second_up", p.SecondUp}, {"second_down", p.SecondDown},
		{"reset", p.Reset.Offset}, {"pause", p.Pause.Offset}, {"resume", p.Resume.Offset},
		{"alarm", p.Alarm}, {"count_up", p.CountUp}, {"count_down", p.CountDown},
	}
	for _, n := range named {
		if err := check(n.name, n.off); err != nil {
			return err
		}
	}

	for _, c := range []struct {
		name string
		edge Edge
	}{{"reset", p.Reset.Edge}, {"pause", p.Pause.Edge}, {"resume", p.Resume.Edge}} {
		if c.edge != EdgeRising && c.edge != EdgeFalling {
			return fmt.Errorf("pin %s: unknown edge %q", c.name, c.edge)
		}
	}
	return nil
}

// buttonsFromValues maps logical values in ButtonOffsets order.
func buttonsFromValues(v []int) logic.Buttons {
	return logic.Buttons{
		Mode:       v[0] == 1,
		HourUp:     v[1] == 1,
		HourDown:   v[2] == 1,
		MinuteUp:   v[3] == 1,
		MinuteDown: v[4] == 1,
		SecondUp:   v[5] == 1,
		SecondDown: v[6] == 1,
	}
}

// valuesFromOutputs maps outputs in OutputOffsets order.
func valuesFromOutputs(out logic.Outputs) []int {
	return []int{boolToValue(out.Alarm), boolToValue(out.CountUp), boolToValue(out.CountDown)}
}

func boolToValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
