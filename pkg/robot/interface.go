// Package robot provides interfaces and implementations for single-axis
// servo control.
//
// This package follows the Interface Segregation Principle (ISP) by defining
// small, focused interfaces that can be composed as needed. Consumers should
// depend only on the interfaces they actually use.
package robot

import "context"

// AngleController positions the servo.
// Use this minimal interface when only angle control is needed.
type AngleController interface {
	SetAngle(ctx context.Context, degrees float64) error
}

// Servo is the composite interface owned by the control loop.
// Close releases the underlying link and is called exactly once.
type Servo interface {
	AngleController
	Close() error
}

// Ensure implementations satisfy Servo
var (
	_ Servo = (*FirmataServo)(nil)
	_ Servo = (*HTTPServo)(nil)
	_ Servo = (*NopServo)(nil)
	_ Servo = (*SettledServo)(nil)
)
