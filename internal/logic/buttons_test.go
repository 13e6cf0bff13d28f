package logic

import (
	"testing"
	"time"
)

func TestLatchOneShotPerPress(t *testing.T) {
	var l Latch

	fires := 0
	for i := 0; i < 3; i++ {
		if l.Observe(true) {
			fires++
		}
	}
	if fires != 1 {
		t.Fatalf("held press fired %d times, want 1", fires)
	}

	l.Observe(false)
	if !l.Observe(true) {
		t.Error("press after release should fire again")
	}
}

func TestModeControllerTogglesOncePerPress(t *testing.T) {
	s := NewStopwatch(AdjustWrap, testStart)
	var m ModeController

	apply := func(pressed bool) {
		if in, ok := m.OnModeButton(pressed, testStart); ok {
			s.Handle(in)
		}
	}

	apply(true)
	apply(true)
	apply(true)
	if s.Mode() != ModeCountDown {
		t.Fatalf("expected COUNT_DOWN after one held press, got %s", s.Mode())
	}

	apply(false)
	apply(true)
	if s.Mode() != ModeCountUp {
		t.Errorf("expected COUNT_UP after second press, got %s", s.Mode())
	}
	if s.Time() != (Time{}) {
		t.Errorf("mode toggle changed time: %s", s.Time())
	}
}

func TestAdjusterHeldPressAppliesOnce(t *testing.T) {
	s := NewStopwatch(AdjustWrap, testStart)
	a := NewAdjuster()

	// Three polling passes with HOUR_UP held.
	for i := 0; i < 3; i++ {
		if in, ok := a.OnButton(ButtonHourUp, true, testStart); ok {
			s.Handle(in)
		}
	}
	if s.Time().Hour != 1 {
		t.Fatalf("expected exactly one increment, hour=%d", s.Time().Hour)
	}

	a.OnButton(ButtonHourUp, false, testStart)
	if in, ok := a.OnButton(ButtonHourUp, true, testStart); ok {
		s.Handle(in)
	}
	if s.Time().Hour != 2 {
		t.Errorf("expected second increment after re-press, hour=%d", s.Time().Hour)
	}
}

func TestAdjusterLatchesAreIndependent(t *testing.T) {
	a := NewAdjuster()

	for _, b := range AdjustButtons {
		in, ok := a.OnButton(b, true, testStart)
		if !ok {
			t.Fatalf("%s: first press should fire", b)
		}
		field, delta := b.Target()
		if in.Kind != InputAdjust || in.Field != field || in.Delta != delta {
			t.Errorf("%s: unexpected input %+v", b, in)
		}
	}

	if _, ok := a.OnButton("BOGUS", true, testStart); ok {
		t.Error("unknown button should not fire")
	}
}

func TestButtonTargets(t *testing.T) {
	tests := []struct {
		b     Button
		field Field
		delta int
	}{
		{ButtonHourUp, FieldHour, 1},
		{ButtonHourDown, FieldHour, -1},
		{ButtonMinuteUp, FieldMinute, 1},
		{ButtonMinuteDown, FieldMinute, -1},
		{ButtonSecondUp, FieldSecond, 1},
		{ButtonSecondDown, FieldSecond, -1},
	}
	for _, tt := range tests {
		f, d := tt.b.Target()
		if f != tt.field || d != tt.delta {
			t.Errorf("%s: got (%s, %d), want (%s, %d)", tt.b, f, d, tt.field, tt.delta)
		}
	}
}

// runPanel feeds samples 10ms apart and applies every produced input.
func runPanel(s *Stopwatch, p *Panel, samples []Buttons) []Input {
	var all []Input
	for i, b := range samples {
		now := testStart.Add(time.Duration(i) * 10 * time.Millisecond)
		for _, in := range p.Process(b, now) {
			s.Handle(in)
			all = append(all, in)
		}
	}
	return all
}

func TestPanelDebouncesAndLatches(t *testing.T) {
	s := NewStopwatch(AdjustWrap, testStart)
	p := NewPanel(30 * time.Millisecond)

	held := Buttons{MinuteUp: true}
	samples := []Buttons{
		held, held, held, // 0-20ms: pending
		held, held, held, // 30ms: confirmed, then held
		{},               // released
		held, held, held, held, // second press
	}

	inputs := runPanel(s, p, samples)
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d: %+v", len(inputs), inputs)
	}
	if s.Time() != (Time{0, 2, 0}) {
		t.Errorf("expected 00:02:00, got %s", s.Time())
	}
}

func TestPanelIgnoresShortBlip(t *testing.T) {
	s := NewStopwatch(AdjustWrap, testStart)
	p := NewPanel(30 * time.Millisecond)

	samples := []Buttons{{Mode: true}, {Mode: true}, {}, {}}
	if inputs := runPanel(s, p, samples); len(inputs) != 0 {
		t.Fatalf("blip shorter than guard should not fire, got %+v", inputs)
	}
	if s.Mode() != ModeCountUp {
		t.Errorf("mode toggled on a blip")
	}
}

func TestPanelOrderModeFirst(t *testing.T) {
	s := NewStopwatch(AdjustWrap, testStart)
	p := NewPanel(30 * time.Millisecond)

	all := Buttons{Mode: true, HourUp: true, SecondDown: true}
	inputs := runPanel(s, p, []Buttons{all, all, all, all})
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %+v", inputs)
	}
	if inputs[0].Kind != InputToggleMode {
		t.Errorf("expected mode toggle first, got %s", inputs[0].Kind)
	}
	if inputs[1].Field != FieldHour || inputs[2].Field != FieldSecond {
		t.Errorf("unexpected adjustment order: %+v", inputs[1:])
	}
	if s.Time() != (Time{1, 0, 255}) {
		t.Errorf("expected wrapped seconds, got %+v", s.Time())
	}
}
