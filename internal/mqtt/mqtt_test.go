package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/stopwatch/internal/logic"
)

var testTime = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: testTime,
		Type:      logic.EventAlarm,
		Time:      logic.Time{},
		Mode:      logic.ModeCountDown,
		Status:    logic.StatusAlarmed,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Stopwatch.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Stopwatch.Timestamp)
	}
	if parsed.Stopwatch.Event != "ALARM" {
		t.Errorf("unexpected event: %s", parsed.Stopwatch.Event)
	}
	if parsed.Stopwatch.Time != "00:00:00" {
		t.Errorf("unexpected time: %s", parsed.Stopwatch.Time)
	}
	if parsed.Stopwatch.Mode != "COUNT_DOWN" {
		t.Errorf("unexpected mode: %s", parsed.Stopwatch.Mode)
	}
	if parsed.Stopwatch.Status != "ALARMED" {
		t.Errorf("unexpected status: %s", parsed.Stopwatch.Status)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp: testTime,
		Type:      logic.EventPaused,
		Time:      logic.Time{Hour: 1, Minute: 2, Second: 3},
		Mode:      logic.ModeCountUp,
		Status:    logic.StatusPaused,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"stopwatch":{"timestamp":"2026-02-02T22:18:12Z","event":"PAUSED","time":"01:02:03","hour":1,"minute":2,"second":3,"mode":"COUNT_UP","status":"PAUSED"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadAdjusted(t *testing.T) {
	event := logic.Event{
		Timestamp: testTime,
		Type:      logic.EventAdjusted,
		Time:      logic.Time{Minute: 255},
		Mode:      logic.ModeCountUp,
		Status:    logic.StatusRunning,
		Field:     logic.FieldMinute,
		Delta:     -1,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Stopwatch.Field != "MINUTE" {
		t.Errorf("unexpected field: %s", parsed.Stopwatch.Field)
	}
	if parsed.Stopwatch.Delta != -1 {
		t.Errorf("unexpected delta: %d", parsed.Stopwatch.Delta)
	}
	if parsed.Stopwatch.Minute != 255 {
		t.Errorf("unexpected minute: %d", parsed.Stopwatch.Minute)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 17, 18, 12, 0, loc),
		Type:      logic.EventReset,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Stopwatch.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Stopwatch.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "stopwatch/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "stopwatch/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
	if TopicControl != "stopwatch/control" {
		t.Errorf("unexpected control topic: %s", TopicControl)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    logic.InputKind
		wantErr bool
	}{
		{"RESET", logic.InputReset, false},
		{"pause", logic.InputPause, false},
		{"  Resume\n", logic.InputResume, false},
		{"TOGGLE_MODE", "", true},
		{"TICK", "", true},
		{"", "", true},
		{"stop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %s", tt.payload, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: testTime,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: testTime, Event: "OFFLINE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"OFFLINE"}}`
	if string(payload) != expected {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"system":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	fake := NewFakePublisher(nil)

	events := []logic.Event{
		{Timestamp: testTime, Type: logic.EventMode, Mode: logic.ModeCountDown},
		{Timestamp: testTime, Type: logic.EventAlarm, Mode: logic.ModeCountDown, Status: logic.StatusAlarmed},
	}
	for _, e := range events {
		if err := fake.Publish(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := fake.EventTypes()
	if len(got) != 2 || got[0] != logic.EventMode || got[1] != logic.EventAlarm {
		t.Errorf("unexpected event order: %v", got)
	}
	if len(fake.Payloads) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(fake.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	fake := NewFakePublisher(nil)
	fake.PublishError = errors.New("broker down")
	fake.PublishSystemError = errors.New("broker down")

	if err := fake.Publish(logic.Event{Type: logic.EventReset}); err == nil {
		t.Error("expected publish error")
	}
	if err := fake.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected publish system error")
	}
	if len(fake.Events) != 0 || len(fake.SystemEvents) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestFakePublisherRecordsRetainedFlag(t *testing.T) {
	fake := NewFakePublisher(nil)

	if err := fake.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fake.SystemEvents[0].Retained {
		t.Error("expected Retained flag to be recorded")
	}
}

func TestFakePublisherCommand(t *testing.T) {
	var got []logic.InputKind
	fake := NewFakePublisher(func(k logic.InputKind) { got = append(got, k) })

	if err := fake.Command("pause"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fake.Command("bogus"); err == nil {
		t.Error("expected error for unknown command")
	}
	if err := fake.Command("RESUME"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0] != logic.InputPause || got[1] != logic.InputResume {
		t.Errorf("unexpected commands: %v", got)
	}
}

func TestFakePublisherReset(t *testing.T) {
	fake := NewFakePublisher(nil)
	fake.Connected = true
	_ = fake.Publish(logic.Event{Type: logic.EventReset})
	_ = fake.PublishSystem(SystemEvent{Event: "STARTUP"})
	_ = fake.Close()

	fake.Reset()

	if len(fake.Events) != 0 || len(fake.Payloads) != 0 {
		t.Error("expected events cleared")
	}
	if len(fake.SystemEvents) != 0 || len(fake.SystemPayloads) != 0 {
		t.Error("expected system events cleared")
	}
	if fake.Closed || fake.IsConnected() {
		t.Error("expected flags cleared")
	}
}
