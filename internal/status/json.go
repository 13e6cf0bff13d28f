package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/stopwatch/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Time          string       `json:"time"`
	Digits        []int        `json:"digits"`
	Mode          string       `json:"mode"`
	RunStatus     string       `json:"run_status"`
	Outputs       OutputsJSON  `json:"outputs"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// OutputsJSON reports the driven output lines.
type OutputsJSON struct {
	Alarm     bool `json:"alarm"`
	CountUp   bool `json:"count_up"`
	CountDown bool `json:"count_down"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Ticks       int `json:"ticks"`
	Alarms      int `json:"alarms"`
	Resets      int `json:"resets"`
	Pauses      int `json:"pauses"`
	Resumes     int `json:"resumes"`
	ModeToggles int `json:"mode_toggles"`
	Adjustments int `json:"adjustments"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs       int64  `json:"tick_ms"`
	PollMs       int64  `json:"poll_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	AdjustPolicy string `json:"adjust_policy"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
}

// DigitsOf returns the six display digits as ints, most significant first.
func DigitsOf(t logic.Time) []int {
	d := logic.Digits(t)
	out := make([]int, len(d))
	for i, v := range d {
		out[i] = int(v)
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	st := snap.State
	c := st.Counts

	inner := StatusInner{
		Time:      st.Time.String(),
		Digits:    DigitsOf(st.Time),
		Mode:      string(st.Mode),
		RunStatus: string(st.Status),
		Outputs: OutputsJSON{
			Alarm:     st.Outputs.Alarm,
			CountUp:   st.Outputs.CountUp,
			CountDown: st.Outputs.CountDown,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ticks:       c.Ticks,
			Alarms:      c.Alarms,
			Resets:      c.Resets,
			Pauses:      c.Pauses,
			Resumes:     c.Resumes,
			ModeToggles: c.ModeToggles,
			Adjustments: c.Adjustments,
		},
		Config: ConfigJSON{
			TickMs:       snap.Config.TickMs,
			PollMs:       snap.Config.PollMs,
			DebounceMs:   snap.Config.DebounceMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			AdjustPolicy: snap.Config.AdjustPolicy,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
