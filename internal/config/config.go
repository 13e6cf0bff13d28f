// Package config loads the daemon configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/stopwatch/internal/gpio"
	"github.com/sweeney/stopwatch/internal/logger"
	"github.com/sweeney/stopwatch/internal/logic"
)

// Config is the complete daemon configuration.
type Config struct {
	TickInterval time.Duration      `yaml:"tick_interval"`
	Debounce     time.Duration      `yaml:"debounce"`
	PollInterval time.Duration      `yaml:"poll_interval"`
	Heartbeat    time.Duration      `yaml:"heartbeat"`
	AdjustPolicy logic.AdjustPolicy `yaml:"adjust_policy"`

	GPIO   gpio.Pins    `yaml:"gpio"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
	// ClientID defaults to "stopwatch-<uuid>" when empty.
	ClientID   string `yaml:"client_id"`
	BufferSize int    `yaml:"buffer_size"`
}

// HTTPConfig contains status server settings.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	LiveInterval time.Duration `yaml:"live_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// NotifyConfig lists shoutrrr service URLs that receive alarm notifications.
type NotifyConfig struct {
	URLs []string `yaml:"urls"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		TickInterval: time.Second,
		Debounce:     30 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Heartbeat:    15 * time.Minute,
		AdjustPolicy: logic.AdjustWrap,
		GPIO:         gpio.DefaultPins,
		MQTT: MQTTConfig{
			Broker:     "tcp://192.168.1.200:1883",
			BufferSize: 1000,
		},
		HTTP: HTTPConfig{
			Addr:         ":80",
			LiveInterval: 250 * time.Millisecond,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path loads
// defaults only. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		data = []byte(os.ExpandEnv(string(data)))

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.fillClientID()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"STOPWATCH_TICK_INTERVAL", &c.TickInterval},
		{"STOPWATCH_DEBOUNCE", &c.Debounce},
		{"STOPWATCH_POLL_INTERVAL", &c.PollInterval},
		{"STOPWATCH_HEARTBEAT", &c.Heartbeat},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("STOPWATCH_ADJUST_POLICY"); v != "" {
		c.AdjustPolicy = logic.AdjustPolicy(strings.ToLower(v))
	}
	if v := os.Getenv("STOPWATCH_MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("STOPWATCH_MQTT_CLIENT_ID"); v != "" {
		c.MQTT.ClientID = v
	}
	if v := os.Getenv("STOPWATCH_MQTT_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOPWATCH_MQTT_BUFFER_SIZE: %w", err)
		}
		c.MQTT.BufferSize = n
	}
	if v := os.Getenv("STOPWATCH_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("STOPWATCH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STOPWATCH_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("STOPWATCH_NOTIFY_URLS"); v != "" {
		c.Notify.URLs = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) fillClientID() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "stopwatch-" + uuid.NewString()
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.New("tick_interval must be positive")
	}
	if c.Debounce <= 0 {
		return errors.New("debounce must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.Heartbeat < 0 {
		return errors.New("heartbeat must not be negative")
	}
	switch c.AdjustPolicy {
	case logic.AdjustWrap, logic.AdjustClamp:
	default:
		return fmt.Errorf("adjust_policy %q: must be wrap or clamp", c.AdjustPolicy)
	}
	if c.GPIO.Chip == "" {
		return errors.New("gpio.chip is required")
	}
	if err := c.GPIO.Validate(); err != nil {
		return fmt.Errorf("gpio: %w", err)
	}
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if c.MQTT.BufferSize < 1 {
		return errors.New("mqtt.buffer_size must be at least 1")
	}
	if c.HTTP.LiveInterval <= 0 {
		return errors.New("http.live_interval must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
