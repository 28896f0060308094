// Package config provides environment helpers for go-suntrack commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults match the reference rig: an ESP32-CAM serving snapshots and a
// Firmata board driving the servo.
const (
	DefaultCameraURL    = "http://192.168.1.15/cam-hi.jpg"
	DefaultActuatorPort = "/dev/ttyUSB0"
	DefaultServoPin     = 2
	DefaultBaudRate     = 115200
	DefaultWebPort      = "8080"
)

// Environment variable names.
const (
	EnvCameraURL    = "SUNTRACK_CAMERA_URL"
	EnvActuatorPort = "SUNTRACK_ACTUATOR_PORT"
	EnvServoPin     = "SUNTRACK_SERVO_PIN"
	EnvSettleDelay  = "SUNTRACK_SETTLE_DELAY"
	EnvLogLevel     = "SUNTRACK_LOG_LEVEL"
)

// CameraURL returns the snapshot URL from SUNTRACK_CAMERA_URL.
// Falls back to the provided default if not set.
func CameraURL(def string) string {
	return String(EnvCameraURL, def)
}

// ActuatorPort returns the serial port from SUNTRACK_ACTUATOR_PORT.
// Falls back to the provided default if not set.
func ActuatorPort(def string) string {
	return String(EnvActuatorPort, def)
}

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an int, or def when unset or malformed.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Duration returns key parsed with time.ParseDuration, or def when unset or
// malformed.
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
