package logic

import "time"

// Level is the debounced reading of one push-button.
type Level int

const (
	// LevelReleased means the button read released.
	LevelReleased Level = iota
	// LevelPending means the button read pressed but has not yet been
	// confirmed by a second sample.
	LevelPending
	// LevelPressed means the button read pressed on two samples taken at
	// least the guard interval apart.
	LevelPressed
)

// Debouncer confirms a press by requiring it to be observed twice, at least
// guard apart. A released reading is trusted immediately.
type Debouncer struct {
	guard        time.Duration
	pending      bool
	pendingSince time.Time
}

// NewDebouncer creates a debouncer with the given guard interval.
func NewDebouncer(guard time.Duration) *Debouncer {
	return &Debouncer{guard: guard}
}

// Sample takes one raw reading (true = pressed) and returns the debounced level.
func (d *Debouncer) Sample(pressed bool, now time.Time) Level {
	if !pressed {
		d.pending = false
		return LevelReleased
	}

	if !d.pending {
		// Start observing
		d.pending = true
		d.pendingSince = now
		return LevelPending
	}

	if now.Sub(d.pendingSince) >= d.guard {
		return LevelPressed
	}
	return LevelPending
}
