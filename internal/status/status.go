// Package status provides a thread-safe status tracker for the stopwatch daemon.
// It is read by the HTTP handlers and the live websocket feed.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/stopwatch/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs       int64
	PollMs       int64
	DebounceMs   int64
	HeartbeatMs  int64
	AdjustPolicy string
	Broker       string
	HTTPAddr     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
	// Version increases every time State changes.
	Version uint64
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// The initial state is the power-on state: 00:00:00, running, counting up.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.NewStopwatch("", startTime).State(),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the latest stopwatch state. Called from runLoop after
// every input. The version is bumped only when the state differs.
func (t *Tracker) Update(state logic.State) {
	t.mu.Lock()
	if state != t.snap.State {
		t.snap.State = state
		t.snap.Version++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Version returns the current state version without copying the snapshot.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Version
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
