package streamdeck

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDevice means the vendor/product pair is not in the
	// kind catalog.
	ErrUnsupportedDevice = errors.New("streamdeck: unsupported device")

	// ErrClosed means the session was closed, either explicitly or after
	// a fatal transport error. All further operations fail fast with it.
	ErrClosed = errors.New("streamdeck: device closed")

	// ErrNoScreen means the kind has no image target for the requested
	// operation.
	ErrNoScreen = errors.New("streamdeck: device has no screen")

	// ErrInvalidKey means the key index is outside the kind's grid.
	ErrInvalidKey = errors.New("streamdeck: invalid key index")

	// ErrInvalidBrightness means the percentage is outside 0-100.
	ErrInvalidBrightness = errors.New("streamdeck: brightness out of range")

	// ErrImageTooLarge means the source image has degenerate dimensions.
	ErrImageTooLarge = errors.New("streamdeck: bad image dimensions")

	// ErrEncodingFailed means container assembly failed for an image
	// payload. Local to the one target being encoded.
	ErrEncodingFailed = errors.New("streamdeck: image encoding failed")

	// ErrMalformedReport means an inbound report was shorter than the
	// kind's minimum. The reader discards such reports and continues.
	ErrMalformedReport = errors.New("streamdeck: malformed input report")
)

// Target identifies one addressable output surface for error reporting.
type Target struct {
	// Key is the key index; valid when Kind is TargetKey.
	Key uint8
	// Kind of surface.
	Kind TargetKind
}

// TargetKind enumerates output surfaces.
type TargetKind uint8

const (
	TargetKey TargetKind = iota
	TargetScreen
	TargetBrightness
	TargetReset
)

func (t Target) String() string {
	switch t.Kind {
	case TargetKey:
		return fmt.Sprintf("key %d", t.Key)
	case TargetScreen:
		return "screen"
	case TargetBrightness:
		return "brightness"
	case TargetReset:
		return "reset"
	}
	return "unknown target"
}

// TargetError reports which staged target failed during Flush. Targets that
// flushed before the failure remain committed on the device; the failed
// target stays staged.
type TargetError struct {
	Target Target
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("streamdeck: flush %s: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }
