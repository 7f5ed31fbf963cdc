package streamdeck

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/Alia5/streamdeck/hid"
)

// DeviceEntry identifies one attached, supported device.
type DeviceEntry struct {
	Kind   Kind
	Serial string
}

// Devices enumerates attached devices over the given transport and reports
// the supported ones. Devices with the right vendor ID but an unknown product
// ID are skipped, not errored: unknown hardware next to known hardware must
// not break discovery.
func Devices(t hid.Transport) ([]DeviceEntry, error) {
	infos, err := t.Enumerate(VendorID)
	if err != nil {
		return nil, fmt.Errorf("streamdeck: enumerate: %w", err)
	}
	var out []DeviceEntry
	for _, info := range infos {
		kind, err := Lookup(info.VendorID, info.ProductID)
		if err != nil {
			continue
		}
		out = append(out, DeviceEntry{Kind: kind, Serial: info.Serial})
	}
	return out, nil
}

// Connect opens the device of the given kind and serial and starts its input
// reader. An empty serial matches the first device of that kind. The caller
// owns the returned session and must Close it.
func Connect(t hid.Transport, kind Kind, serial string, opts ...Option) (*Session, error) {
	desc := kind.Describe()
	dev, err := t.Open(VendorID, desc.ProductID, serial)
	if err != nil {
		return nil, fmt.Errorf("streamdeck: open %s: %w", desc.Name, err)
	}
	return newSession(kind, desc, dev, opts...), nil
}

func newSession(kind Kind, desc Descriptor, dev hid.Device, opts ...Option) *Session {
	s := &Session{
		kind:        kind,
		desc:        desc,
		dev:         dev,
		log:         slog.Default(),
		readTimeout: defaultReadTimeout,
		staged:      pending{keys: make(map[uint8]image.Image)},
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		events:      make(chan InputEvent, eventBufLen),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}
