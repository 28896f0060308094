// Package suntrack wires a frame source, a servo and the presenters into a
// running control loop.
package suntrack

import (
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/go-suntrack/internal/config"
	"github.com/teslashibe/go-suntrack/pkg/camera"
	"github.com/teslashibe/go-suntrack/pkg/robot"
	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

// ActuatorNone selects the dry-run servo.
const ActuatorNone = "none"

// Config holds all configuration for the application.
// Flag parsing is done in cmd/suntrack/main.go; this struct is data only.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Source is a snapshot URL or a kind:endpoint spec
	// (file:frame.jpg, synthetic:scenario).
	Source string

	// Actuator is a serial port for a Firmata board, an http(s) URL for a
	// board with an HTTP servo endpoint, or "none".
	Actuator string

	// Servo link parameters.
	Pin              int
	BaudRate         int
	HandshakeTimeout time.Duration

	// StatsWindow is how many recent cycles the period statistics cover.
	StatsWindow int

	// Presentation.
	Headless bool   // No desktop windows
	WebPort  string // Dashboard port; empty disables it

	Tracking tracking.Config
}

// DefaultConfig returns the reference rig: ESP32-CAM snapshots, a Firmata
// servo on pin 2 and both windows.
func DefaultConfig() Config {
	fc := robot.DefaultFirmataConfig()
	return Config{
		LogLevel:         "info",
		Source:           config.DefaultCameraURL,
		Actuator:         config.DefaultActuatorPort,
		Pin:              config.DefaultServoPin,
		BaudRate:         config.DefaultBaudRate,
		HandshakeTimeout: fc.HandshakeTimeout,
		StatsWindow:      tracking.DefaultStatsWindow,
		Tracking:         tracking.DefaultConfig(),
	}
}

// LoadEnvConfig applies SUNTRACK_* environment overrides.
func (c *Config) LoadEnvConfig() {
	c.Source = config.CameraURL(c.Source)
	c.Actuator = config.ActuatorPort(c.Actuator)
	c.Pin = config.Int(config.EnvServoPin, c.Pin)
	c.Tracking.CycleSettleDelay = config.Duration(config.EnvSettleDelay, c.Tracking.CycleSettleDelay)
	c.LogLevel = config.String(config.EnvLogLevel, c.LogLevel)
}

// SourceConfig resolves Source into a camera config.
func (c *Config) SourceConfig() (camera.Config, error) {
	return camera.ParseSpec(c.Source, c.Tracking.Acquisition.Timeout)
}

// FirmataConfig returns the serial servo settings.
func (c *Config) FirmataConfig() robot.FirmataConfig {
	fc := robot.DefaultFirmataConfig()
	fc.Port = c.Actuator
	fc.Pin = c.Pin
	fc.BaudRate = c.BaudRate
	fc.HandshakeTimeout = c.HandshakeTimeout
	return fc
}

// ActuatorKind classifies Actuator as "firmata", "http" or "none".
func (c *Config) ActuatorKind() string {
	switch {
	case c.Actuator == ActuatorNone:
		return ActuatorNone
	case strings.HasPrefix(c.Actuator, "http://"), strings.HasPrefix(c.Actuator, "https://"):
		return "http"
	default:
		return "firmata"
	}
}

// Validate checks that the configuration can be opened.
func (c *Config) Validate() error {
	if err := c.Tracking.Validate(); err != nil {
		return err
	}
	if _, err := c.SourceConfig(); err != nil {
		return &tracking.ConfigError{Field: "Source", Message: err.Error(), Err: err}
	}
	if c.Actuator == "" {
		return &tracking.ConfigError{Field: "Actuator", Message: "must be a serial port, URL or none"}
	}
	if c.ActuatorKind() == "firmata" {
		fc := c.FirmataConfig()
		if errs := fc.Validate(); len(errs) > 0 {
			return &tracking.ConfigError{Field: "Actuator", Message: strings.Join(errs, "; ")}
		}
	}
	if c.Pin < 0 {
		return &tracking.ConfigError{Field: "Pin", Message: fmt.Sprintf("invalid pin %d", c.Pin)}
	}
	if c.StatsWindow <= 0 {
		return &tracking.ConfigError{Field: "StatsWindow", Message: "must be > 0"}
	}
	return nil
}
