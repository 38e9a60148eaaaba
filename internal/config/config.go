// Package config loads light-bridge settings from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/light-bridge/internal/gpio"
	"github.com/sweeney/light-bridge/internal/logic"
	"github.com/sweeney/light-bridge/internal/mqtt"
)

// ErrMissingCredentials is returned when the Adafruit IO username or key is unset.
var ErrMissingCredentials = errors.New("adafruit io username and key are required")

// Config represents the application configuration
type Config struct {
	AdafruitIO AdafruitIOConfig `yaml:"adafruit_io"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Feeds      FeedsConfig      `yaml:"feeds"`
	GPIO       GPIOConfig       `yaml:"gpio"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Loop       LoopConfig       `yaml:"loop"`
	Log        LogConfig        `yaml:"log"`
	Journal    JournalConfig    `yaml:"journal"`
}

// AdafruitIOConfig holds the account credentials. Keep the key out of the
// file and set AIO_KEY instead.
type AdafruitIOConfig struct {
	Username string `yaml:"username" env:"AIO_USERNAME"`
	Key      string `yaml:"key" env:"AIO_KEY"`
}

// MQTTConfig contains broker connection settings
type MQTTConfig struct {
	Broker         string   `yaml:"broker" env:"LIGHT_BRIDGE_BROKER"`
	ClientID       string   `yaml:"client_id" env:"LIGHT_BRIDGE_CLIENT_ID"`
	QoS            int      `yaml:"qos" env:"LIGHT_BRIDGE_QOS"`
	KeepAlive      Duration `yaml:"keep_alive"`
	PublishTimeout Duration `yaml:"publish_timeout"`
	InboxSize      int      `yaml:"inbox_size"`
	RateLimit      float64  `yaml:"rate_limit" env:"LIGHT_BRIDGE_RATE_LIMIT"` // publishes per second, 0 = unlimited
	RateBurst      int      `yaml:"rate_burst"`
}

// FeedsConfig names the feeds bound to each logical channel.
type FeedsConfig struct {
	Power   string   `yaml:"power"`
	Control string   `yaml:"control"`
	Status  string   `yaml:"status" env:"LIGHT_BRIDGE_STATUS_FEED"` // empty = no status events
	Levels  []string `yaml:"levels" env:"LIGHT_BRIDGE_LEVEL_FEEDS" envSeparator:","`
}

// GPIOConfig describes the LED wiring. Pins[i] drives the LED for Levels[i].
type GPIOConfig struct {
	Chip     string   `yaml:"chip" env:"LIGHT_BRIDGE_GPIO_CHIP"`
	Pins     []int    `yaml:"pins" env:"LIGHT_BRIDGE_LED_PINS" envSeparator:","`
	SelfTest Duration `yaml:"self_test"` // 0 skips the startup LED test
}

// SensorConfig describes the joystick's analog input and thresholds.
type SensorConfig struct {
	Path   string `yaml:"path" env:"LIGHT_BRIDGE_SENSOR_PATH"`
	RawMax int    `yaml:"raw_max"`
	Invert bool   `yaml:"invert"`
	High   int    `yaml:"high"`
	Low    int    `yaml:"low"`
}

// LoopConfig contains main loop timing.
type LoopConfig struct {
	Interval  Duration `yaml:"interval" env:"LIGHT_BRIDGE_POLL"`
	Heartbeat Duration `yaml:"heartbeat" env:"LIGHT_BRIDGE_HEARTBEAT"` // 0 disables
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LIGHT_BRIDGE_LOG_LEVEL"`
	JSON   bool   `yaml:"json"`
	Colors bool   `yaml:"colors"`
}

// JournalConfig locates the transition journal. Empty disables it.
type JournalConfig struct {
	Path string `yaml:"path" env:"LIGHT_BRIDGE_JOURNAL"`
}

// Duration is a wrapper around time.Duration for YAML and env unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the stock configuration for the reference wiring.
func Default() Config {
	return Config{
		MQTT: MQTTConfig{
			Broker:         mqtt.DefaultBroker,
			KeepAlive:      Duration(30 * time.Second),
			PublishTimeout: Duration(2 * time.Second),
			InboxSize:      mqtt.DefaultInboxSize,
		},
		Feeds: FeedsConfig{
			Power:   "power",
			Control: "control",
			Levels:  []string{"red", "yellow", "green"},
		},
		GPIO: GPIOConfig{
			Chip:     gpio.DefaultChip,
			Pins:     append([]int(nil), gpio.DefaultLEDPins...),
			SelfTest: Duration(time.Second),
		},
		Sensor: SensorConfig{
			Path:   gpio.DefaultIIOPath,
			RawMax: gpio.DefaultRawMax,
			High:   logic.DefaultHigh,
			Low:    logic.DefaultLow,
		},
		Loop: LoopConfig{
			Interval:  Duration(500 * time.Millisecond),
			Heartbeat: Duration(15 * time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Colors: true,
		},
	}
}

// Load starts from Default, applies the YAML file at path (if path is not
// empty), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CheckCredentials reports ErrMissingCredentials unless both the Adafruit IO
// username and key are set. Only the broker connection needs them, so Load
// leaves this to the caller.
func (c *Config) CheckCredentials() error {
	if c.AdafruitIO.Username == "" || c.AdafruitIO.Key == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if c.Feeds.Power == "" || c.Feeds.Control == "" {
		return errors.New("power and control feeds are required")
	}
	if len(c.Feeds.Levels) == 0 {
		return errors.New("at least one level feed is required")
	}
	if err := c.checkFeedNames(); err != nil {
		return err
	}
	if len(c.Feeds.Levels) != len(c.GPIO.Pins) {
		return fmt.Errorf("level feeds (%d) and LED pins (%d) must match", len(c.Feeds.Levels), len(c.GPIO.Pins))
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("sensor: %w", err)
	}
	if c.Sensor.RawMax <= 0 {
		return fmt.Errorf("sensor raw_max must be positive, got %d", c.Sensor.RawMax)
	}
	if c.Loop.Interval.Duration() <= 0 {
		return fmt.Errorf("loop interval must be positive, got %v", c.Loop.Interval.Duration())
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.RateLimit < 0 {
		return fmt.Errorf("mqtt rate_limit must not be negative, got %v", c.MQTT.RateLimit)
	}
	return nil
}

// checkFeedNames rejects a feed bound to more than one channel. Inbound
// messages are routed by topic, so a shared feed would shadow a handler.
func (c *Config) checkFeedNames() error {
	seen := make(map[string]string)
	claim := func(feed, owner string) error {
		if feed == "" {
			return fmt.Errorf("%s feed name is empty", owner)
		}
		if prev, ok := seen[feed]; ok {
			return fmt.Errorf("feed %q is used by both %s and %s", feed, prev, owner)
		}
		seen[feed] = owner
		return nil
	}

	if err := claim(c.Feeds.Power, "power"); err != nil {
		return err
	}
	if err := claim(c.Feeds.Control, "control"); err != nil {
		return err
	}
	if c.Feeds.Status != "" {
		if err := claim(c.Feeds.Status, "status"); err != nil {
			return err
		}
	}
	for i, feed := range c.Feeds.Levels {
		if err := claim(feed, fmt.Sprintf("level[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// Thresholds returns the sensor thresholds.
func (c *Config) Thresholds() logic.Thresholds {
	return logic.Thresholds{High: c.Sensor.High, Low: c.Sensor.Low}
}

// Bindings returns the channel bindings for the configured feeds.
func (c *Config) Bindings() mqtt.Bindings {
	return mqtt.NewBindings(c.AdafruitIO.Username, c.Feeds.Power, c.Feeds.Control, c.Feeds.Status, c.Feeds.Levels)
}

// MQTTOptions returns the adapter options.
func (c *Config) MQTTOptions() mqtt.Options {
	burst := c.MQTT.RateBurst
	if burst <= 0 {
		// Room for a full shutdown burst: every level plus power.
		burst = len(c.Feeds.Levels) + 1
	}
	return mqtt.Options{
		Broker:         c.MQTT.Broker,
		ClientID:       c.MQTT.ClientID,
		Username:       c.AdafruitIO.Username,
		Password:       c.AdafruitIO.Key,
		QoS:            byte(c.MQTT.QoS),
		KeepAlive:      c.MQTT.KeepAlive.Duration(),
		PublishTimeout: c.MQTT.PublishTimeout.Duration(),
		InboxSize:      c.MQTT.InboxSize,
		RateLimit:      c.MQTT.RateLimit,
		RateBurst:      burst,
	}
}
