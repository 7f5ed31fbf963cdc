package streamdeck

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Alia5/streamdeck/hid"
)

const (
	// defaultReadTimeout bounds each blocking input read so the reader
	// can observe the stop signal promptly on Close.
	defaultReadTimeout = 100 * time.Millisecond

	// inputBufLen is larger than any supported kind's input report.
	inputBufLen = 512

	// eventBufLen is the capacity of the consumer-facing event channel.
	eventBufLen = 64
)

// pending is the staged output state. Mutated only by the session's setters
// under the write lock; cleared entry by entry on flush success.
type pending struct {
	keys       map[uint8]image.Image // nil value = blank key
	screen     image.Image
	brightness *uint8
	reset      bool
}

// Session is one open device. Setters stage changes into pending state and
// return immediately; Flush commits them through the encoder and framer in
// chunk order. A dedicated goroutine reads input reports and delivers decoded
// events until the session closes.
type Session struct {
	kind Kind
	desc Descriptor
	dev  hid.Device
	log  *slog.Logger

	readTimeout time.Duration

	mu      sync.Mutex // write-side lock: setters, flush, feature queries
	staged  pending
	dirty   bool
	closed  bool
	blank   []byte // cached encoded blank key payload

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	events   chan InputEvent
}

// Option configures a Session at connect time.
type Option func(*Session)

// WithLogger routes the session's diagnostics (malformed report discards,
// reader shutdown) to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithReadTimeout overrides the bounded poll interval of the input reader.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Session) { s.readTimeout = d }
}

// Kind returns the session's hardware variant.
func (s *Session) Kind() Kind { return s.kind }

// Describe returns the session's capability descriptor.
func (s *Session) Describe() Descriptor { return s.desc }

// Events returns the session's event channel. Events are delivered in the
// order their reports were received. After a fatal transport error or Close
// the channel carries a final Disconnected and is closed; a fresh Connect is
// required afterwards.
func (s *Session) Events() <-chan InputEvent { return s.events }

// SetBrightness stages a backlight change, percent 0-100. Validation happens
// before staging: an out-of-range value leaves pending state untouched.
func (s *Session) SetBrightness(percent uint8) error {
	if percent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidBrightness, percent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	p := percent
	s.staged.brightness = &p
	s.dirty = true
	return nil
}

// SetKeyImage stages img for the given key. The image is encoded at flush
// time; encode failures surface from Flush as a TargetError for this key.
func (s *Session) SetKeyImage(key uint8, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrImageTooLarge)
	}
	return s.stageKey(key, img)
}

// ClearKey stages a blank (black) image for the given key.
func (s *Session) ClearKey(key uint8) error {
	return s.stageKey(key, nil)
}

// ClearAllKeys stages a blank image for every key.
func (s *Session) ClearAllKeys() error {
	for i := 0; i < s.desc.KeyCount(); i++ {
		if err := s.ClearKey(uint8(i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) stageKey(key uint8, img image.Image) error {
	if !s.desc.Visual() {
		return ErrNoScreen
	}
	if int(key) >= s.desc.KeyCount() {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.staged.keys[key] = img
	s.dirty = true
	return nil
}

// SetScreenImage stages a full touch strip image.
func (s *Session) SetScreenImage(img image.Image) error {
	if s.desc.Screen == nil {
		return ErrNoScreen
	}
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrImageTooLarge)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.staged.screen = img
	s.dirty = true
	return nil
}

// Reset stages a device reset.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.staged.reset = true
	s.dirty = true
	return nil
}

// Flush commits all staged changes. A no-op when nothing is staged. Each
// target is committed independently: when one fails the others are still
// attempted, successes are cleared from pending state and the failures are
// reported as TargetErrors (joined). A failed multi-chunk image write leaves
// that key's on-device image in an undefined partial state; the entry stays
// staged for retry. Transport write failures additionally poison the session.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.dirty {
		return nil
	}

	var errs []error
	ioFailed := false

	if s.staged.reset {
		if err := s.dev.SendFeatureReport(resetReport(s.desc)); err != nil {
			errs = append(errs, &TargetError{Target{Kind: TargetReset}, err})
			ioFailed = true
		} else {
			s.staged.reset = false
		}
	}

	if s.staged.brightness != nil {
		if err := s.dev.SendFeatureReport(brightnessReport(s.desc, *s.staged.brightness)); err != nil {
			errs = append(errs, &TargetError{Target{Kind: TargetBrightness}, err})
			ioFailed = true
		} else {
			s.staged.brightness = nil
		}
	}

	// Keys flush in ascending order for a deterministic wire sequence.
	keys := make([]int, 0, len(s.staged.keys))
	for k := range s.staged.keys {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	for _, ki := range keys {
		key := uint8(ki)
		payload, err := s.keyPayload(s.staged.keys[key])
		if err != nil {
			errs = append(errs, &TargetError{Target{Key: key, Kind: TargetKey}, err})
			continue
		}
		if err := s.writeChunks(frameKeyImage(s.desc, key, payload)); err != nil {
			errs = append(errs, &TargetError{Target{Key: key, Kind: TargetKey}, err})
			ioFailed = true
			continue
		}
		delete(s.staged.keys, key)
	}

	if s.staged.screen != nil {
		scr := s.desc.Screen
		payload, err := encodeScreenImage(s.desc, s.staged.screen)
		if err != nil {
			errs = append(errs, &TargetError{Target{Kind: TargetScreen}, err})
		} else if err := s.writeChunks(frameScreenImage(s.desc, 0, 0, uint16(scr.Width), uint16(scr.Height), payload)); err != nil {
			errs = append(errs, &TargetError{Target{Kind: TargetScreen}, err})
			ioFailed = true
		} else {
			s.staged.screen = nil
		}
	}

	s.dirty = s.staged.reset || s.staged.brightness != nil ||
		len(s.staged.keys) > 0 || s.staged.screen != nil

	if ioFailed {
		s.poisonLocked()
	}
	return errors.Join(errs...)
}

// keyPayload encodes a staged key image; nil means blank, which is encoded
// once per session and reused.
func (s *Session) keyPayload(img image.Image) ([]byte, error) {
	if img != nil {
		return encodeKeyImage(s.desc, img)
	}
	if s.blank == nil {
		payload, err := blankKeyImage(s.desc)
		if err != nil {
			return nil, err
		}
		s.blank = payload
	}
	return s.blank, nil
}

// writeChunks sends reports sequentially in page order. HID output reports
// are not guaranteed ordered when pipelined, so each write completes before
// the next starts.
func (s *Session) writeChunks(chunks [][]byte) error {
	for i, chunk := range chunks {
		if _, err := s.dev.Write(chunk); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i, len(chunks), err)
		}
	}
	return nil
}

// Serial queries the device serial number. Executes immediately, not staged.
func (s *Session) Serial() (string, error) {
	return s.featureString(s.desc.SerialReportID, s.desc.SerialLen, s.desc.SerialOffset)
}

// FirmwareVersion queries the device firmware version string.
func (s *Session) FirmwareVersion() (string, error) {
	return s.featureString(s.desc.FirmwareReportID, s.desc.FirmwareLen, s.desc.FirmwareOffset)
}

func (s *Session) featureString(reportID byte, length, offset int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	data, err := s.dev.GetFeatureReport(reportID, length)
	if err != nil {
		s.poisonLocked()
		return "", fmt.Errorf("streamdeck: feature report %#02x: %w", reportID, err)
	}
	if len(data) <= offset {
		return "", fmt.Errorf("streamdeck: feature report %#02x: short response (%d bytes)", reportID, len(data))
	}
	return cString(data[offset:]), nil
}

// cString extracts the NUL-terminated string from a feature report payload.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Close stops the background reader, releases the transport handle and marks
// the session terminal. Idempotent. The event channel receives a final
// Disconnected and closes.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	var err error
	s.stopOnce.Do(func() {
		close(s.stop)
		err = s.dev.Close()
	})
	<-s.done
	return err
}

// poisonLocked transitions the session toward Closed after a fatal transport
// error. Callers must hold s.mu. Subsequent operations fail fast with
// ErrClosed instead of retrying a dead handle.
func (s *Session) poisonLocked() {
	s.closed = true
	s.stopOnce.Do(func() {
		close(s.stop)
		_ = s.dev.Close()
	})
}

func (s *Session) poison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poisonLocked()
}

// readLoop is the only reader of the transport's input path: one goroutine
// per session, blocking reads bounded by readTimeout, decode and dispatch
// synchronous. Timeouts retry; malformed reports are discarded with a
// diagnostic; any other read error is fatal and ends the sequence with a
// single Disconnected.
func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	st := newInputState(s.desc)
	buf := make([]byte, inputBufLen)

	for {
		select {
		case <-s.stop:
			s.deliverDisconnected(nil)
			return
		default:
		}

		n, err := s.dev.ReadInputReport(buf, s.readTimeout)
		if errors.Is(err, hid.ErrTimeout) {
			continue
		}
		if err != nil {
			select {
			case <-s.stop:
				// Close raced the read; not a device fault.
				s.deliverDisconnected(nil)
			default:
				s.log.Warn("input read failed, closing session",
					"kind", s.kind.String(), "err", err)
				s.poison()
				s.deliverDisconnected(err)
			}
			return
		}

		events, derr := decodeInput(s.desc, buf[:n], st)
		if derr != nil {
			s.log.Debug("discarding malformed input report",
				"kind", s.kind.String(), "len", n)
			continue
		}
		for _, ev := range events {
			select {
			case s.events <- ev:
			case <-s.stop:
				s.deliverDisconnected(nil)
				return
			}
		}
	}
}

// deliverDisconnected queues the terminal event without blocking: if the
// buffer is full the consumer is gone and the closed channel already signals
// termination.
func (s *Session) deliverDisconnected(err error) {
	select {
	case s.events <- Disconnected{Err: err}:
	default:
	}
}
