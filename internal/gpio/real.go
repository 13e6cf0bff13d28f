//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/stopwatch/internal/logic"
)

// RealBoard drives actual hardware using Linux GPIO character device.
type RealBoard struct {
	chip     *gpiocdev.Chip
	buttons  *gpiocdev.Lines
	outputs  *gpiocdev.Lines
	controls []*gpiocdev.Line
	values   []int
}

// NewRealBoard requests every line on the configured chip. Control lines
// deliver their edges to post from the gpiocdev event goroutine.
func NewRealBoard(pins Pins, post PostFunc) (*RealBoard, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(pins.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &RealBoard{chip: chip}

	bias := gpiocdev.WithPullDown
	buttonOpts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if pins.ActiveLow {
		bias = gpiocdev.WithPullUp
		buttonOpts = append(buttonOpts, gpiocdev.AsActiveLow)
	}
	buttonOpts = append(buttonOpts, bias)

	b.buttons, err = chip.RequestLines(pins.ButtonOffsets(), buttonOpts...)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request button pins %v: %w", pins.ButtonOffsets(), err)
	}
	b.values = make([]int, len(pins.ButtonOffsets()))

	// Outputs start low: no alarm, no indicator.
	b.outputs, err = chip.RequestLines(pins.OutputOffsets(), gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request output pins %v: %w", pins.OutputOffsets(), err)
	}

	controls := []struct {
		pin  ControlPin
		kind logic.InputKind
	}{
		{pins.Reset, logic.InputReset},
		{pins.Pause, logic.InputPause},
		{pins.Resume, logic.InputResume},
	}
	for _, c := range controls {
		kind := c.kind
		edge := gpiocdev.WithFallingEdge
		if c.pin.Edge == EdgeRising {
			edge = gpiocdev.WithRisingEdge
		}
		line, err := chip.RequestLine(c.pin.Offset,
			gpiocdev.AsInput,
			bias,
			edge,
			gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { post(kind) }),
		)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", kind, c.pin.Offset, err)
		}
		b.controls = append(b.controls, line)
	}

	return b, nil
}

// Read returns the logical levels of the seven polled buttons.
func (b *RealBoard) Read() (logic.Buttons, error) {
	if err := b.buttons.Values(b.values); err != nil {
		return logic.Buttons{}, fmt.Errorf("read button pins: %w", err)
	}
	return buttonsFromValues(b.values), nil
}

// Write sets the alarm and indicator lines.
func (b *RealBoard) Write(out logic.Outputs) error {
	if err := b.outputs.SetValues(valuesFromOutputs(out)); err != nil {
		return fmt.Errorf("write output pins: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
// Reconfigures outputs to input with pull-down (matching Pi boot defaults)
// before closing so LEDs and the buzzer are not left driven.
func (b *RealBoard) Close() error {
	var errs []error

	for _, line := range b.controls {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close control pin: %w", err))
		}
	}
	if b.outputs != nil {
		if err := b.outputs.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure output pins: %w", err))
		}
		if err := b.outputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output pins: %w", err))
		}
	}
	if b.buttons != nil {
		if err := b.buttons.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
