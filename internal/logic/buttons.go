package logic

import "time"

// Button identifies one of the six manual adjustment inputs.
type Button string

const (
	ButtonHourUp     Button = "HOUR_UP"
	ButtonHourDown   Button = "HOUR_DOWN"
	ButtonMinuteUp   Button = "MINUTE_UP"
	ButtonMinuteDown Button = "MINUTE_DOWN"
	ButtonSecondUp   Button = "SECOND_UP"
	ButtonSecondDown Button = "SECOND_DOWN"
)

// AdjustButtons lists the adjustment buttons in polling order.
var AdjustButtons = []Button{
	ButtonHourUp, ButtonHourDown,
	ButtonMinuteUp, ButtonMinuteDown,
	ButtonSecondUp, ButtonSecondDown,
}

// Target returns the field and delta a button applies.
func (b Button) Target() (Field, int) {
	switch b {
	case ButtonHourUp:
		return FieldHour, 1
	case ButtonHourDown:
		return FieldHour, -1
	case ButtonMinuteUp:
		return FieldMinute, 1
	case ButtonMinuteDown:
		return FieldMinute, -1
	case ButtonSecondUp:
		return FieldSecond, 1
	case ButtonSecondDown:
		return FieldSecond, -1
	}
	return "", 0
}

// Buttons is a single sample of the polled push-buttons (true = pressed,
// already inverted from the raw pin level).
type Buttons struct {
	Mode       bool
	HourUp     bool
	HourDown   bool
	MinuteUp   bool
	MinuteDown bool
	SecondUp   bool
	SecondDown bool
}

// Pressed returns the sampled level of an adjustment button.
func (b Buttons) Pressed(btn Button) bool {
	switch btn {
	case ButtonHourUp:
		return b.HourUp
	case ButtonHourDown:
		return b.HourDown
	case ButtonMinuteUp:
		return b.MinuteUp
	case ButtonMinuteDown:
		return b.MinuteDown
	case ButtonSecondUp:
		return b.SecondUp
	case ButtonSecondDown:
		return b.SecondDown
	}
	return false
}

// Latch lets a held button produce a single action per press.
type Latch struct {
	consumed bool
}

// Observe reports whether this observation should fire. It fires once on
// the first pressed observation and rearms only after a release.
func (l *Latch) Observe(pressed bool) bool {
	if !pressed {
		l.consumed = false
		return false
	}
	if l.consumed {
		return false
	}
	l.consumed = true
	return true
}

// ModeController toggles the counting direction once per press.
type ModeController struct {
	latch Latch
}

// OnModeButton feeds the current debounced mode-button level. It returns a
// TOGGLE_MODE input, and true, on the first observation of each press.
func (m *ModeController) OnModeButton(pressed bool, now time.Time) (Input, bool) {
	if !m.latch.Observe(pressed) {
		return Input{}, false
	}
	return Input{Kind: InputToggleMode, Time: now}, true
}

// Adjuster applies one field adjustment per press of each adjustment button.
type Adjuster struct {
	latches map[Button]*Latch
}

// NewAdjuster creates an adjuster with one latch per adjustment button.
func NewAdjuster() *Adjuster {
	a := &Adjuster{latches: make(map[Button]*Latch, len(AdjustButtons))}
	for _, b := range AdjustButtons {
		a.latches[b] = &Latch{}
	}
	return a
}

// OnButton feeds the current debounced level of one adjustment button. It
// returns the ADJUST input for the button's field, and true, on the first
// observation of each press. Each button has its own latch.
func (a *Adjuster) OnButton(b Button, pressed bool, now time.Time) (Input, bool) {
	l, ok := a.latches[b]
	if !ok || !l.Observe(pressed) {
		return Input{}, false
	}
	field, delta := b.Target()
	return Input{Kind: InputAdjust, Field: field, Delta: delta, Time: now}, true
}

// Panel turns raw button samples into gated stopwatch inputs. It owns the
// debouncers, the mode controller's latch and the adjuster's latches.
type Panel struct {
	modeDebounce *Debouncer
	adjDebounce  map[Button]*Debouncer
	mode         ModeController
	adjust       *Adjuster
}

// NewPanel creates a panel with the given debounce guard interval.
func NewPanel(guard time.Duration) *Panel {
	p := &Panel{
		modeDebounce: NewDebouncer(guard),
		adjDebounce:  make(map[Button]*Debouncer, len(AdjustButtons)),
		adjust:       NewAdjuster(),
	}
	for _, b := range AdjustButtons {
		p.adjDebounce[b] = NewDebouncer(guard)
	}
	return p
}

// Process takes one button sample and returns the inputs it produced, in the
// order they must be delivered to Stopwatch.Handle: mode first, then the
// adjustment buttons in polling order. A pending (unconfirmed) press neither
// fires nor rearms its latch.
func (p *Panel) Process(b Buttons, now time.Time) []Input {
	var inputs []Input

	if lvl := p.modeDebounce.Sample(b.Mode, now); lvl != LevelPending {
		if in, ok := p.mode.OnModeButton(lvl == LevelPressed, now); ok {
			inputs = append(inputs, in)
		}
	}

	for _, btn := range AdjustButtons {
		lvl := p.adjDebounce[btn].Sample(b.Pressed(btn), now)
		if lvl == LevelPending {
			continue
		}
		if in, ok := p.adjust.OnButton(btn, lvl == LevelPressed, now); ok {
			inputs = append(inputs, in)
		}
	}

	return inputs
}
