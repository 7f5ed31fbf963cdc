// Package cmd implements the deckctl subcommands.
package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/streamdeck"
	"github.com/Alia5/streamdeck/hid"
	"github.com/Alia5/streamdeck/internal/log"
)

// DeviceSelector is embedded by every command that operates on one device.
type DeviceSelector struct {
	Serial string `help:"Serial number of the device to use (default: first found)" env:"DECKCTL_SERIAL"`
}

// open connects to the selected device. The transport is wrapped so every
// report crossing it lands in the raw logger.
func (ds *DeviceSelector) open(logger *slog.Logger, raw log.RawLogger) (*streamdeck.Session, error) {
	t, err := newTransport()
	if err != nil {
		return nil, err
	}
	t = tracedTransport{inner: t, raw: raw}

	entries, err := streamdeck.Devices(t)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if ds.Serial != "" && e.Serial != ds.Serial {
			continue
		}
		sess, err := streamdeck.Connect(t, e.Kind, e.Serial, streamdeck.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Debug("connected", "kind", e.Kind.String(), "serial", e.Serial)
		return sess, nil
	}
	if ds.Serial != "" {
		return nil, fmt.Errorf("no device with serial %q found", ds.Serial)
	}
	return nil, fmt.Errorf("no supported device found")
}

// flushWithin flushes and reports how long the commit took at debug level.
func flushWithin(sess *streamdeck.Session, logger *slog.Logger) error {
	start := time.Now()
	if err := sess.Flush(); err != nil {
		return err
	}
	logger.Debug("flushed", "took", time.Since(start))
	return nil
}

// tracedTransport wraps every opened device so raw report traffic can be
// dumped with --log.raw-file or at trace level.
type tracedTransport struct {
	inner hid.Transport
	raw   log.RawLogger
}

func (t tracedTransport) Enumerate(vendorID uint16) ([]hid.DeviceInfo, error) {
	return t.inner.Enumerate(vendorID)
}

func (t tracedTransport) Open(vendorID, productID uint16, serial string) (hid.Device, error) {
	dev, err := t.inner.Open(vendorID, productID, serial)
	if err != nil {
		return nil, err
	}
	return tracedDevice{Device: dev, raw: t.raw}, nil
}

type tracedDevice struct {
	hid.Device
	raw log.RawLogger
}

func (d tracedDevice) Write(p []byte) (int, error) {
	d.raw.Log(true, p)
	return d.Device.Write(p)
}

func (d tracedDevice) SendFeatureReport(p []byte) error {
	d.raw.Log(true, p)
	return d.Device.SendFeatureReport(p)
}

func (d tracedDevice) GetFeatureReport(reportID byte, length int) ([]byte, error) {
	data, err := d.Device.GetFeatureReport(reportID, length)
	if err == nil {
		d.raw.Log(false, data)
	}
	return data, err
}

func (d tracedDevice) ReadInputReport(buf []byte, timeout time.Duration) (int, error) {
	n, err := d.Device.ReadInputReport(buf, timeout)
	if err == nil {
		d.raw.Log(false, buf[:n])
	}
	return n, err
}
