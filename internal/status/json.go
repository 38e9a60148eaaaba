package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Level         int        `json:"level"`
	Size          int        `json:"size"`
	Enabled       bool       `json:"enabled"`
	Lit           int        `json:"lit"`
	Reading       int        `json:"reading"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"transition_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	StepUp     int `json:"step_up"`
	StepDown   int `json:"step_down"`
	MaxReached int `json:"max_reached"`
	MinReached int `json:"min_reached"`
	Ignored    int `json:"ignored"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	High        int    `json:"high"`
	Low         int    `json:"low"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Level:         int(snap.Level),
		Size:          snap.Size,
		Enabled:       snap.Enabled,
		Lit:           snap.Lit,
		Reading:       snap.Reading,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			StepUp:     snap.Counts.StepUp,
			StepDown:   snap.Counts.StepDown,
			MaxReached: snap.Counts.MaxReached,
			MinReached: snap.Counts.MinReached,
			Ignored:    snap.Counts.Ignored,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			High:        snap.Config.High,
			Low:         snap.Config.Low,
		},
	}
}

// FormatJSON returns the indented JSON status, for console output.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT status event.
func FormatStatusEvent(snap Snapshot, event string) []byte {
	inner := buildInner(snap)
	inner.Event = event

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
