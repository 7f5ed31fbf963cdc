package streamdeck

import (
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/streamdeck/hid"
)

// fakeDevice is an in-memory hid.Device. Output writes and feature reports
// are recorded; input reports are fed through a channel.
type fakeDevice struct {
	mu       sync.Mutex
	writes   [][]byte
	features [][]byte

	failWrite   func(chunk []byte) error
	featureResp map[byte][]byte
	featureErr  error

	input     chan []byte
	closeOnce sync.Once
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		input:       make(chan []byte, 16),
		featureResp: map[byte][]byte{},
	}
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		if err := f.failWrite(p); err != nil {
			return 0, err
		}
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return len(p), nil
}

func (f *fakeDevice) SendFeatureReport(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.featureErr != nil {
		return f.featureErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.features = append(f.features, cp)
	return nil
}

func (f *fakeDevice) GetFeatureReport(reportID byte, length int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.featureErr != nil {
		return nil, f.featureErr
	}
	resp, ok := f.featureResp[reportID]
	if !ok {
		return make([]byte, length), nil
	}
	return resp, nil
}

func (f *fakeDevice) ReadInputReport(buf []byte, timeout time.Duration) (int, error) {
	select {
	case report, ok := <-f.input:
		if !ok {
			return 0, errors.New("device gone")
		}
		return copy(buf, report), nil
	case <-time.After(timeout):
		return 0, hid.ErrTimeout
	}
}

func (f *fakeDevice) Close() error {
	f.closeOnce.Do(func() { close(f.input) })
	return nil
}

func (f *fakeDevice) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeDevice) featureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.features)
}

type fakeTransport struct {
	infos []hid.DeviceInfo
	dev   hid.Device
}

func (t *fakeTransport) Enumerate(vendorID uint16) ([]hid.DeviceInfo, error) {
	return t.infos, nil
}

func (t *fakeTransport) Open(vendorID, productID uint16, serial string) (hid.Device, error) {
	if t.dev == nil {
		return nil, hid.ErrNotFound
	}
	return t.dev, nil
}

func testSession(t *testing.T, kind Kind) (*Session, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	s := newSession(kind, kind.Describe(), dev, WithReadTimeout(5*time.Millisecond))
	t.Cleanup(func() { _ = s.Close() })
	return s, dev
}

func TestDevices(t *testing.T) {
	tr := &fakeTransport{infos: []hid.DeviceInfo{
		{VendorID: VendorID, ProductID: 0x006c, Serial: "XL001"},
		{VendorID: VendorID, ProductID: 0xbeef, Serial: "MYSTERY"},
		{VendorID: VendorID, ProductID: 0x0084, Serial: "PLUS01"},
	}}
	entries, err := Devices(tr)
	require.NoError(t, err)
	assert.Equal(t, []DeviceEntry{
		{Kind: XL, Serial: "XL001"},
		{Kind: Plus, Serial: "PLUS01"},
	}, entries)
}

func TestSetBrightnessValidatesBeforeStaging(t *testing.T) {
	s, dev := testSession(t, XL)

	err := s.SetBrightness(150)
	require.ErrorIs(t, err, ErrInvalidBrightness)

	// Nothing was staged: flush writes nothing.
	require.NoError(t, s.Flush())
	assert.Zero(t, dev.featureCount())
	assert.Zero(t, dev.writeCount())
}

func TestFlushBrightness(t *testing.T) {
	s, dev := testSession(t, XL)

	require.NoError(t, s.SetBrightness(80))
	require.NoError(t, s.Flush())
	require.Equal(t, 1, dev.featureCount())
	assert.Equal(t, []byte{0x03, 0x08, 80}, dev.features[0][:3])

	// Flushed state is cleared: a second flush is a no-op.
	require.NoError(t, s.Flush())
	assert.Equal(t, 1, dev.featureCount())
}

func TestFlushKeyImageChunks(t *testing.T) {
	s, dev := testSession(t, Mini)

	require.NoError(t, s.SetKeyImage(2, solidImage(80, 80, color.RGBA{R: 0xff, A: 0xff})))
	require.NoError(t, s.Flush())

	require.NotZero(t, dev.writeCount())
	for _, chunk := range dev.writes {
		require.Len(t, chunk, 1024)
		assert.EqualValues(t, 0x02, chunk[0])
		assert.EqualValues(t, 3, chunk[5], "wire key is index+1")
	}
	// Exactly the last chunk carries the final flag.
	for i, chunk := range dev.writes {
		want := byte(0)
		if i == len(dev.writes)-1 {
			want = 1
		}
		assert.Equal(t, want, chunk[4], "chunk %d", i)
	}

	before := dev.writeCount()
	require.NoError(t, s.Flush())
	assert.Equal(t, before, dev.writeCount(), "nothing staged after a clean flush")
}

func TestStageValidation(t *testing.T) {
	s, _ := testSession(t, Mini)
	assert.ErrorIs(t, s.SetKeyImage(6, solidImage(1, 1, color.RGBA{})), ErrInvalidKey)
	assert.ErrorIs(t, s.SetScreenImage(solidImage(1, 1, color.RGBA{})), ErrNoScreen)

	p, _ := testSession(t, Pedal)
	assert.ErrorIs(t, p.SetKeyImage(0, solidImage(1, 1, color.RGBA{})), ErrNoScreen)
	assert.ErrorIs(t, p.ClearKey(0), ErrNoScreen)
}

func TestFlushPartialFailure(t *testing.T) {
	s, dev := testSession(t, Mini)

	// Fail every chunk addressed to key 0 (wire key byte 1), let key 1 pass.
	bad := errors.New("endpoint stall")
	dev.failWrite = func(chunk []byte) error {
		if chunk[5] == 1 {
			return bad
		}
		return nil
	}

	require.NoError(t, s.SetKeyImage(0, solidImage(8, 8, color.RGBA{R: 0xff, A: 0xff})))
	require.NoError(t, s.SetKeyImage(1, solidImage(8, 8, color.RGBA{G: 0xff, A: 0xff})))

	err := s.Flush()
	require.Error(t, err)

	var terr *TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, Target{Key: 0, Kind: TargetKey}, terr.Target)
	require.ErrorIs(t, err, bad)

	// Key 1 still committed despite the earlier failure.
	committed := 0
	for _, chunk := range dev.writes {
		if chunk[5] == 2 {
			committed++
		}
	}
	assert.NotZero(t, committed)

	// The write failure poisons the session.
	assert.ErrorIs(t, s.Flush(), ErrClosed)
	assert.ErrorIs(t, s.SetBrightness(10), ErrClosed)
}

func TestFlushEncodeFailureIsLocal(t *testing.T) {
	s, dev := testSession(t, Mini)

	// A degenerate staged image fails at encode time; the other key and the
	// session itself are unaffected.
	require.NoError(t, s.SetKeyImage(0, solidImage(0, 0, color.RGBA{})))
	require.NoError(t, s.SetKeyImage(1, solidImage(8, 8, color.RGBA{B: 0xff, A: 0xff})))

	err := s.Flush()
	var terr *TargetError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, Target{Key: 0, Kind: TargetKey}, terr.Target)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.NotZero(t, dev.writeCount())

	require.NoError(t, s.SetBrightness(10), "encode failures do not poison the session")
}

func TestClearAllKeys(t *testing.T) {
	s, dev := testSession(t, Mini)

	require.NoError(t, s.ClearAllKeys())
	require.NoError(t, s.Flush())

	seen := map[byte]bool{}
	for _, chunk := range dev.writes {
		seen[chunk[5]] = true
	}
	assert.Len(t, seen, 6, "every key got a blank image")
}

func TestFlushReset(t *testing.T) {
	s, dev := testSession(t, Plus)

	require.NoError(t, s.Reset())
	require.NoError(t, s.Flush())
	require.Equal(t, 1, dev.featureCount())
	assert.Equal(t, []byte{0x03, 0x02}, dev.features[0][:2])
}

func TestSerialAndFirmware(t *testing.T) {
	s, dev := testSession(t, XL)
	dev.featureResp[0x06] = append([]byte{0x06, 0x00}, []byte("CL12K3A45678\x00\x00")...)
	dev.featureResp[0x05] = append([]byte{0x05, 0, 0, 0, 0, 0}, []byte("1.01.000\x00")...)

	serial, err := s.Serial()
	require.NoError(t, err)
	assert.Equal(t, "CL12K3A45678", serial)

	fw, err := s.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.01.000", fw)
}

func TestSerialFailurePoisons(t *testing.T) {
	s, dev := testSession(t, XL)
	dev.featureErr = errors.New("pipe error")

	_, err := s.Serial()
	require.Error(t, err)
	assert.ErrorIs(t, s.Flush(), ErrClosed)
}

func TestEventsDelivery(t *testing.T) {
	s, dev := testSession(t, XL)
	d := XL.Describe()

	dev.input <- buttonReport(d, 5)
	dev.input <- buttonReport(d)

	ev := <-s.Events()
	assert.Equal(t, ButtonChanged{Index: 5, Pressed: true}, ev)
	ev = <-s.Events()
	assert.Equal(t, ButtonChanged{Index: 5, Pressed: false}, ev)
}

func TestEventsMalformedDiscarded(t *testing.T) {
	s, dev := testSession(t, XL)
	d := XL.Describe()

	dev.input <- []byte{0x01} // truncated, dropped
	dev.input <- buttonReport(d, 0)

	ev := <-s.Events()
	assert.Equal(t, ButtonChanged{Index: 0, Pressed: true}, ev)
}

func TestCloseTerminatesEvents(t *testing.T) {
	s, _ := testSession(t, XL)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	var disconnects int
	for ev := range s.Events() {
		if _, ok := ev.(Disconnected); ok {
			disconnects++
		}
	}
	assert.Equal(t, 1, disconnects, "disconnected delivered exactly once")
	assert.ErrorIs(t, s.SetBrightness(1), ErrClosed)
}

func TestTransportFailureDisconnects(t *testing.T) {
	s, dev := testSession(t, XL)

	// Simulate hot-unplug: the input stream dies outside Close.
	dev.closeOnce.Do(func() { close(dev.input) })

	var last InputEvent
	var disconnects int
	for ev := range s.Events() {
		last = ev
		if _, ok := ev.(Disconnected); ok {
			disconnects++
		}
	}
	require.Equal(t, 1, disconnects, "disconnected delivered exactly once")
	dis, ok := last.(Disconnected)
	require.True(t, ok, "disconnected is the final event")
	assert.Error(t, dis.Err)

	assert.ErrorIs(t, s.SetBrightness(1), ErrClosed)
	assert.ErrorIs(t, s.Flush(), ErrClosed)
}
