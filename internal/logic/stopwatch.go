package logic

import "time"

// Rollover bounds for count-up. The hour bound is 24, not 23: the hour field
// shows 24 for a full hour before wrapping to 0.
const (
	maxSecond = 59
	maxMinute = 59
	maxHour   = 24
)

// Stopwatch owns the canonical time, run status and counting mode.
type Stopwatch struct {
	time   Time
	mode   Mode
	status RunStatus
	policy AdjustPolicy

	startTime     time.Time
	lastHeartbeat time.Time
	eventCounts   EventCounts
}

// NewStopwatch creates a stopwatch at 00:00:00, running, counting up.
// The startTime is used for calculating uptime in heartbeat events.
// An empty policy means AdjustWrap.
func NewStopwatch(policy AdjustPolicy, startTime time.Time) *Stopwatch {
	if policy == "" {
		policy = AdjustWrap
	}
	return &Stopwatch{
		mode:          ModeCountUp,
		status:        StatusRunning,
		policy:        policy,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Handle applies one input and returns any events that should be emitted.
// Inputs that leave the state unchanged produce no events.
func (s *Stopwatch) Handle(in Input) []Event {
	var typ EventType

	switch in.Kind {
	case InputTick:
		if s.status == StatusRunning {
			s.eventCounts.Ticks++
		}
		if !s.Tick() {
			return nil
		}
		typ = EventAlarm
	case InputReset:
		s.Reset()
		typ = EventReset
	case InputPause:
		if !s.Pause() {
			return nil
		}
		typ = EventPaused
	case InputResume:
		if !s.Resume() {
			return nil
		}
		typ = EventResumed
	case InputToggleMode:
		s.ToggleMode()
		typ = EventMode
	case InputAdjust:
		if !s.Adjust(in.Field, in.Delta) {
			return nil
		}
		typ = EventAdjusted
	default:
		return nil
	}

	s.count(typ)

	e := Event{
		Timestamp: in.Time,
		Type:      typ,
		Time:      s.time,
		Mode:      s.mode,
		Status:    s.status,
	}
	if typ == EventAdjusted {
		e.Field = in.Field
		e.Delta = in.Delta
	}
	return []Event{e}
}

func (s *Stopwatch) count(typ EventType) {
	switch typ {
	case EventAlarm:
		s.eventCounts.Alarms++
	case EventReset:
		s.eventCounts.Resets++
	case EventPaused:
		s.eventCounts.Pauses++
	case EventResumed:
		s.eventCounts.Resumes++
	case EventMode:
		s.eventCounts.ModeToggles++
	case EventAdjusted:
		s.eventCounts.Adjustments++
	}
}

// Tick consumes one tick. It does nothing unless the stopwatch is running.
// Returns true if this tick raised the alarm.
func (s *Stopwatch) Tick() bool {
	if s.status != StatusRunning {
		return false
	}

	if s.mode == ModeCountUp {
		s.time.Second++
		if s.time.Second > maxSecond {
			s.time.Second = 0
			s.time.Minute++
		}
		if s.time.Minute > maxMinute {
			s.time.Minute = 0
			s.time.Hour++
		}
		if s.time.Hour > maxHour {
			s.time.Hour = 0
		}
		return false
	}

	// Each tick removes exactly one second: borrow only when the lower
	// fields are already zero, so H:M:00 is shown for a full tick.
	switch {
	case s.time.Second > 0:
		s.time.Second--
	case s.time.Minute > 0:
		s.time.Minute--
		s.time.Second = maxSecond
	case s.time.Hour > 0:
		s.time.Hour--
		s.time.Minute = maxMinute
		s.time.Second = maxSecond
	}
	if s.time.IsZero() {
		s.status = StatusAlarmed
		return true
	}
	return false
}

// Reset zeroes the time and resumes counting from any status, including
// ALARMED. The mode is kept.
func (s *Stopwatch) Reset() {
	s.time = Time{}
	s.status = StatusRunning
}

// Pause stops tick consumption. Returns false if the stopwatch was not running.
func (s *Stopwatch) Pause() bool {
	if s.status != StatusRunning {
		return false
	}
	s.status = StatusPaused
	return true
}

// Resume restarts tick consumption after Pause. It never clears an alarm.
// Returns false if the stopwatch was not paused.
func (s *Stopwatch) Resume() bool {
	if s.status != StatusPaused {
		return false
	}
	s.status = StatusRunning
	return true
}

// ToggleMode switches between counting up and counting down. The time is
// left as is; only the next tick behaves differently.
func (s *Stopwatch) ToggleMode() {
	if s.mode == ModeCountUp {
		s.mode = ModeCountDown
	} else {
		s.mode = ModeCountUp
	}
}

// Adjust adds delta (+1 or -1) to a single field with no carry into the
// neighbouring fields. Adjustments are allowed in every run status.
// Returns false if the field was left unchanged.
func (s *Stopwatch) Adjust(f Field, delta int) bool {
	var p *uint8
	var max uint8
	switch f {
	case FieldHour:
		p, max = &s.time.Hour, maxHour
	case FieldMinute:
		p, max = &s.time.Minute, maxMinute
	case FieldSecond:
		p, max = &s.time.Second, maxSecond
	default:
		return false
	}

	old := *p
	switch {
	case delta > 0:
		if s.policy == AdjustClamp && *p >= max {
			return false
		}
		*p++
	case delta < 0:
		if s.policy == AdjustClamp && *p == 0 {
			return false
		}
		*p--
	}
	return *p != old
}

// Time returns the current canonical time.
func (s *Stopwatch) Time() Time {
	return s.time
}

// Mode returns the current counting direction.
func (s *Stopwatch) Mode() Mode {
	return s.mode
}

// Status returns the current run status.
func (s *Stopwatch) Status() RunStatus {
	return s.status
}

// AlarmAsserted reports whether a count-down has reached zero and has not
// been reset since.
func (s *Stopwatch) AlarmAsserted() bool {
	return s.status == StatusAlarmed
}

// Outputs returns the alarm line and the two mode indicators.
func (s *Stopwatch) Outputs() Outputs {
	return Outputs{
		Alarm:     s.AlarmAsserted(),
		CountUp:   s.mode == ModeCountUp,
		CountDown: s.mode == ModeCountDown,
	}
}

// EventCountsSnapshot returns a copy of the event counters.
func (s *Stopwatch) EventCountsSnapshot() EventCounts {
	return s.eventCounts
}

// State returns a value snapshot safe to hand to other goroutines.
func (s *Stopwatch) State() State {
	return State{
		Time:    s.time,
		Mode:    s.mode,
		Status:  s.status,
		Outputs: s.Outputs(),
		Counts:  s.eventCounts,
	}
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (s *Stopwatch) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(s.lastHeartbeat) < interval {
		return nil
	}

	s.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(s.startTime),
		State:     s.State(),
	}
}
