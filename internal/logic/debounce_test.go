package logic

import (
	"testing"
	"time"
)

func TestDebouncerReleasedIsImmediate(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	if lvl := d.Sample(false, testStart); lvl != LevelReleased {
		t.Errorf("expected released, got %v", lvl)
	}
}

func TestDebouncerNeedsTwoSamplesGuardApart(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	if lvl := d.Sample(true, testStart); lvl != LevelPending {
		t.Fatalf("first pressed sample: expected pending, got %v", lvl)
	}
	if lvl := d.Sample(true, testStart.Add(29*time.Millisecond)); lvl != LevelPending {
		t.Fatalf("sample before guard: expected pending, got %v", lvl)
	}
	if lvl := d.Sample(true, testStart.Add(30*time.Millisecond)); lvl != LevelPressed {
		t.Fatalf("sample at guard: expected pressed, got %v", lvl)
	}
	// Held: stays pressed.
	if lvl := d.Sample(true, testStart.Add(500*time.Millisecond)); lvl != LevelPressed {
		t.Fatalf("held sample: expected pressed, got %v", lvl)
	}
}

func TestDebouncerBounceRestartsGuard(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	d.Sample(true, testStart)
	d.Sample(false, testStart.Add(10*time.Millisecond))
	if lvl := d.Sample(true, testStart.Add(35*time.Millisecond)); lvl != LevelPending {
		t.Fatalf("guard should restart after a bounce, got %v", lvl)
	}
	if lvl := d.Sample(true, testStart.Add(65*time.Millisecond)); lvl != LevelPressed {
		t.Fatalf("expected pressed 30ms after restart, got %v", lvl)
	}
}
