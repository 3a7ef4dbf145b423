// Package driver defines the contract cooling-device drivers implement and
// the registry the CLI uses to match attached hardware to a driver.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUnsupportedChannel is returned for channel names a device does not have.
	ErrUnsupportedChannel = errors.New("unsupported channel")
	// ErrUnsupportedMode is returned for lighting modes a device does not have.
	ErrUnsupportedMode = errors.New("unsupported lighting mode")
	// ErrNoResponse is returned when a device stops answering reports.
	ErrNoResponse = errors.New("no response from device")
)

// Unit is the measurement unit of a Reading.
type Unit string

const (
	UnitNone    Unit = ""
	UnitCelsius Unit = "°C"
	UnitRPM     Unit = "rpm"
	UnitPercent Unit = "%"
	UnitVolt    Unit = "V"
	UnitAmp     Unit = "A"
	UnitWatt    Unit = "W"
	UnitSecond  Unit = "s"
)

// Reading is a single sensor value or identity datum reported by a device.
// Text carries non-numeric values (firmware versions, model strings); when it
// is set, Value and Unit are ignored.
type Reading struct {
	Channel string  `json:"channel"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Unit    Unit    `json:"unit,omitempty"`
	Text    string  `json:"text,omitempty"`
}

func (r Reading) String() string {
	if r.Text != "" {
		return r.Text
	}
	switch r.Unit {
	case UnitRPM, UnitSecond:
		return fmt.Sprintf("%.0f %s", r.Value, r.Unit)
	case UnitNone:
		return fmt.Sprintf("%.2f", r.Value)
	default:
		return fmt.Sprintf("%.2f %s", r.Value, r.Unit)
	}
}

// RGB is a single lighting color.
type RGB struct {
	R, G, B uint8
}

// Driver controls one attached device. Implementations are not safe for
// concurrent use; the CLI serializes operations per device.
type Driver interface {
	// Description returns the human-readable device name.
	Description() string
	// Initialize puts the device in a known state and returns identity
	// readings (firmware version and similar).
	Initialize(ctx context.Context) ([]Reading, error)
	// Status reads all sensors.
	Status(ctx context.Context) ([]Reading, error)
	// SetFixedSpeed sets a fixed duty cycle percent on a speed channel.
	SetFixedSpeed(ctx context.Context, channel string, duty uint8) error
	// SetColor applies a lighting mode to a lighting channel.
	SetColor(ctx context.Context, channel, mode string, colors []RGB) error
	Close() error
}

// ClampDuty fixes an out-of-range duty instead of rejecting it, logging a
// warning when it does.
func ClampDuty(logger *slog.Logger, channel string, duty int) uint8 {
	if duty >= 0 && duty <= 100 {
		return uint8(duty)
	}
	fixed := duty
	if fixed < 0 {
		fixed = 0
	} else {
		fixed = 100
	}
	if logger != nil {
		logger.Warn("duty out of range, clamping", "channel", channel, "requested", duty, "using", fixed)
	}
	return uint8(fixed)
}
