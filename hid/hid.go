// Package hid defines the narrow byte-oriented interface the driver core uses
// to talk to USB HID hardware.
//
// The core never opens devices itself; it is handed a Transport and consumes
// raw output reports, feature reports and input reports through it. The
// hidraw subpackage provides a Linux implementation; tests substitute an
// in-memory fake.
package hid

import (
	"errors"
	"time"
)

// DeviceInfo describes one enumerated HID device.
type DeviceInfo struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
	Path      string
}

// Transport enumerates and opens HID devices.
type Transport interface {
	// Enumerate lists all devices with the given vendor ID.
	Enumerate(vendorID uint16) ([]DeviceInfo, error)

	// Open opens the device matching vendor/product ID. If serial is
	// non-empty only a device with that serial number matches. Returns
	// ErrNotFound when no matching device is attached.
	Open(vendorID, productID uint16, serial string) (Device, error)
}

// Device is one open HID handle. The output-report path (Write), the
// feature-report path and the input-report path (ReadInputReport) are
// independent endpoints on real hardware; implementations must allow
// ReadInputReport to block while writes proceed.
type Device interface {
	// Write sends one output report. The first byte is the report ID.
	Write(data []byte) (int, error)

	// SendFeatureReport sends one feature report. The first byte is the
	// report ID.
	SendFeatureReport(data []byte) error

	// GetFeatureReport reads a feature report of up to length bytes for
	// the given report ID. The returned slice includes the report ID byte.
	GetFeatureReport(reportID byte, length int) ([]byte, error)

	// ReadInputReport reads one input report into buf, blocking for at
	// most timeout. Returns ErrTimeout when no report arrived in time.
	ReadInputReport(buf []byte, timeout time.Duration) (int, error)

	// Close releases the handle. Blocking reads return promptly after
	// Close.
	Close() error
}

var (
	// ErrNotFound is returned by Open when no matching device is attached.
	ErrNotFound = errors.New("hid: device not found")

	// ErrTimeout is returned by ReadInputReport when the timeout elapsed
	// before a report arrived. It is not fatal; callers retry.
	ErrTimeout = errors.New("hid: read timed out")
)
