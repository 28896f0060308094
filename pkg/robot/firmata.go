package robot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"go.bug.st/serial"
	"gobot.io/x/gobot/v2/platforms/firmata/client"
)

const (
	// firmataExtendedAnalog is the sysex command for analog writes to pins
	// an ANALOG_MESSAGE cannot address.
	firmataExtendedAnalog = 0x6F

	// Pins above this need the extended analog sysex.
	maxAnalogMessagePin = 15
)

// Default servo pulse range in microseconds (standard hobby servo).
const (
	DefaultMinPulse = 544
	DefaultMaxPulse = 2400
)

// DefaultHandshakeTimeout covers a board reset on port open plus the
// version and capability exchange.
const DefaultHandshakeTimeout = 10 * time.Second

// ErrClosed is returned by SetAngle after Close.
var ErrClosed = errors.New("servo closed")

// FirmataConfig holds the serial link and servo parameters.
type FirmataConfig struct {
	// Port is the serial device, e.g. /dev/ttyUSB0 or COM7.
	Port string `json:"port"`

	// Pin is the board pin the servo signal is wired to.
	Pin int `json:"pin"`

	// BaudRate of the Firmata firmware (StandardFirmata uses 57600,
	// ESP32 builds commonly 115200).
	BaudRate int `json:"baud_rate"`

	// MinPulse and MaxPulse bound the servo pulse width in microseconds.
	MinPulse int `json:"min_pulse"`
	MaxPulse int `json:"max_pulse"`

	// HandshakeTimeout bounds the Firmata version and capability exchange
	// after the port opens.
	HandshakeTimeout time.Duration `json:"handshake_timeout"`

	// InitialAngle is written right after the servo is configured.
	InitialAngle float64 `json:"initial_angle"`
}

// DefaultFirmataConfig returns settings for the reference rig.
func DefaultFirmataConfig() FirmataConfig {
	return FirmataConfig{
		Port:             "/dev/ttyUSB0",
		Pin:              2,
		BaudRate:         115200,
		MinPulse:         DefaultMinPulse,
		MaxPulse:         DefaultMaxPulse,
		HandshakeTimeout: DefaultHandshakeTimeout,
	}
}

// Validate checks if the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *FirmataConfig) Validate() []string {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port must be set")
	}
	if c.Pin < 0 || c.Pin > 127 {
		errors = append(errors, "pin must be in [0, 127]")
	}
	if c.BaudRate <= 0 {
		errors = append(errors, "baud_rate must be > 0")
	}
	if c.MinPulse <= 0 || c.MinPulse >= c.MaxPulse {
		errors = append(errors, "min_pulse must be > 0 and < max_pulse")
	}
	if c.MaxPulse > 0x3FFF {
		errors = append(errors, "max_pulse must fit in 14 bits")
	}
	if c.HandshakeTimeout <= 0 {
		errors = append(errors, "handshake_timeout must be > 0")
	}

	return errors
}

// SerialMode returns the 8N1 port mode for the configured baud rate.
func (c *FirmataConfig) SerialMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// FirmataServo drives one servo through a Firmata board.
type FirmataServo struct {
	mu     sync.Mutex
	board  *client.Client
	pin    int
	closed bool
}

// OpenFirmataServo opens the serial port and hands it to ConnectFirmataServo.
func OpenFirmataServo(ctx context.Context, cfg FirmataConfig) (*FirmataServo, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("firmata config: %v", errs)
	}

	port, err := serial.Open(cfg.Port, cfg.SerialMode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	return ConnectFirmataServo(ctx, port, cfg)
}

// ConnectFirmataServo runs the Firmata handshake over conn, configures the
// servo pin and moves it to the initial angle. conn is closed on failure.
func ConnectFirmataServo(ctx context.Context, conn io.ReadWriteCloser, cfg FirmataConfig) (*FirmataServo, error) {
	board := client.New()
	if cfg.HandshakeTimeout > 0 {
		board.ConnectTimeout = cfg.HandshakeTimeout
	}

	done := make(chan error, 1)
	go func() { done <- board.Connect(conn) }()

	select {
	case err := <-done:
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("firmata handshake: %w", err)
		}
	case <-ctx.Done():
		// Closing the link fails the pending handshake read.
		conn.Close()
		<-done
		return nil, ctx.Err()
	}

	s := &FirmataServo{board: board, pin: cfg.Pin}
	if err := board.ServoConfig(cfg.Pin, cfg.MaxPulse, cfg.MinPulse); err != nil {
		s.Close()
		return nil, fmt.Errorf("firmata servo config pin %d: %w", cfg.Pin, err)
	}
	if err := s.SetAngle(ctx, cfg.InitialAngle); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Firmware returns the firmware name the board reported.
func (s *FirmataServo) Firmware() string {
	return s.board.FirmwareName
}

// SetAngle writes the angle, rounded to whole degrees.
func (s *FirmataServo) SetAngle(ctx context.Context, degrees float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	v := AngleValue(degrees)
	var err error
	if s.pin <= maxAnalogMessagePin {
		err = s.board.AnalogWrite(s.pin, v)
	} else {
		err = s.board.WriteSysex([]byte{firmataExtendedAnalog, byte(s.pin & 0x7F), byte(v & 0x7F), byte((v >> 7) & 0x7F)})
	}
	if err != nil {
		return fmt.Errorf("firmata write pin %d: %w", s.pin, err)
	}
	return nil
}

// Close disconnects the board and releases the port. Safe to call more
// than once.
func (s *FirmataServo) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.board.Disconnect()
}

// AngleValue converts degrees to the servo write value: rounded half away
// from zero, negatives as 0.
func AngleValue(degrees float64) int {
	v := int(math.Round(degrees))
	if v < 0 {
		return 0
	}
	return v
}
