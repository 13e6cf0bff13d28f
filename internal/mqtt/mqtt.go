// Package mqtt provides MQTT publishing and command subscription with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/stopwatch/internal/logic"
)

// Topic is the MQTT topic for stopwatch events.
const Topic = "stopwatch/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "stopwatch/system"

// TopicControl is the MQTT topic the daemon subscribes to for remote
// RESET / PAUSE / RESUME commands.
const TopicControl = "stopwatch/control"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a stopwatch event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandFunc receives a parsed control command. It is called from the
// MQTT client goroutine and must not block.
type CommandFunc func(kind logic.InputKind)

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Stopwatch StopwatchPayload `json:"stopwatch"`
}

// StopwatchPayload contains the stopwatch event details.
type StopwatchPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Time      string `json:"time"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Second    int    `json:"second"`
	Mode      string `json:"mode"`
	Status    string `json:"status"`
	Field     string `json:"field,omitempty"`
	Delta     int    `json:"delta,omitempty"`
}

// FormatPayload creates the JSON payload for a stopwatch event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Stopwatch: StopwatchPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Time:      event.Time.String(),
			Hour:      int(event.Time.Hour),
			Minute:    int(event.Time.Minute),
			Second:    int(event.Time.Second),
			Mode:      string(event.Mode),
			Status:    string(event.Status),
			Field:     string(event.Field),
			Delta:     event.Delta,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// ParseCommand maps a control-topic payload to a control event.
// Accepts RESET, PAUSE and RESUME in any case, surrounding whitespace ignored.
func ParseCommand(payload []byte) (logic.InputKind, error) {
	switch cmd := strings.ToUpper(strings.TrimSpace(string(payload))); cmd {
	case string(logic.InputReset):
		return logic.InputReset, nil
	case string(logic.InputPause):
		return logic.InputPause, nil
	case string(logic.InputResume):
		return logic.InputResume, nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}
