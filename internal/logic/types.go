// Package logic contains the pure stopwatch state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
//
// None of the types here are safe for concurrent use. The daemon drives them
// from a single goroutine.
package logic

import (
	"fmt"
	"time"
)

// Mode is the counting direction.
type Mode string

const (
	ModeCountUp   Mode = "COUNT_UP"
	ModeCountDown Mode = "COUNT_DOWN"
)

// RunStatus tracks whether ticks are consumed.
type RunStatus string

const (
	StatusRunning RunStatus = "RUNNING"
	StatusPaused  RunStatus = "PAUSED"
	StatusAlarmed RunStatus = "ALARMED"
)

// Time is the canonical hour:minute:second counter. Fields are 8-bit to
// match the hardware counters the behavior is modelled on.
type Time struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

// String formats the time as HH:MM:SS.
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// IsZero reports whether all three fields are zero.
func (t Time) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0 && t.Second == 0
}

// Seconds returns the total number of seconds represented by t.
func (t Time) Seconds() int {
	return int(t.Hour)*3600 + int(t.Minute)*60 + int(t.Second)
}

// Field selects one component of Time.
type Field string

const (
	FieldHour   Field = "HOUR"
	FieldMinute Field = "MINUTE"
	FieldSecond Field = "SECOND"
)

// AdjustPolicy decides what a manual adjustment does at a field boundary.
type AdjustPolicy string

const (
	// AdjustWrap keeps 8-bit unsigned arithmetic: 0 - 1 = 255.
	AdjustWrap AdjustPolicy = "wrap"
	// AdjustClamp floors at zero and caps at the count-up rollover bounds.
	AdjustClamp AdjustPolicy = "clamp"
)

// InputKind identifies one input variant delivered to Stopwatch.Handle.
type InputKind string

const (
	InputTick       InputKind = "TICK"
	InputReset      InputKind = "RESET"
	InputPause      InputKind = "PAUSE"
	InputResume     InputKind = "RESUME"
	InputToggleMode InputKind = "TOGGLE_MODE"
	InputAdjust     InputKind = "ADJUST"
)

// Input is a single event for the state machine.
type Input struct {
	Kind  InputKind
	Field Field // ADJUST only
	Delta int   // ADJUST only, +1 or -1
	Time  time.Time
}

// EventType represents an observable state change to be published.
type EventType string

const (
	EventAlarm    EventType = "ALARM"
	EventReset    EventType = "RESET"
	EventPaused   EventType = "PAUSED"
	EventResumed  EventType = "RESUMED"
	EventMode     EventType = "MODE"
	EventAdjusted EventType = "ADJUSTED"
)

// Event represents a state change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Time      Time
	Mode      Mode
	Status    RunStatus
	Field     Field // ADJUSTED only
	Delta     int   // ADJUSTED only
}

// Outputs are the binary signals driven by the stopwatch.
type Outputs struct {
	Alarm     bool
	CountUp   bool // indicator A
	CountDown bool // indicator B
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Ticks       int
	Alarms      int
	Resets      int
	Pauses      int
	Resumes     int
	ModeToggles int
	Adjustments int
}

// State is a value snapshot of the stopwatch.
type State struct {
	Time    Time
	Mode    Mode
	Status  RunStatus
	Outputs Outputs
	Counts  EventCounts
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	State     State
}
