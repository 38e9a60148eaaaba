// Package status provides a thread-safe status tracker for the light-bridge daemon.
// The main loop writes level and counters; MQTT connection callbacks write
// connectivity from paho's goroutines.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/light-bridge/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	High        int
	Low         int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Level         logic.Level
	Size          int
	Enabled       bool
	Lit           int
	Reading       int
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, size int, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Level:     logic.LevelOff,
			Size:      size,
			Enabled:   true,
			StartTime: startTime,
			Config:    cfg,
		},
		lastHeartbeat: startTime,
	}
}

// Update sets the level, enabled flag, lit count and counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(level logic.Level, enabled bool, lit int, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Level = level
	t.snap.Enabled = enabled
	t.snap.Lit = lit
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetReading records the last sensor sample.
func (t *Tracker) SetReading(reading int) {
	t.mu.Lock()
	t.snap.Reading = reading
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// HeartbeatDue reports whether interval has elapsed since the last heartbeat
// (or startup) and, if so, restarts the interval at now.
// An interval <= 0 disables heartbeats.
func (t *Tracker) HeartbeatDue(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.lastHeartbeat) < interval {
		return false
	}
	t.lastHeartbeat = now
	return true
}

// Snapshot returns a point-in-time copy of the daemon state.
// now is stored as the snapshot's Now field.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = now
	return s
}
