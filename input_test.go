package streamdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buttonReport builds a raw button report for kinds without opcode sections.
func buttonReport(d Descriptor, pressed ...int) []byte {
	report := make([]byte, d.MinInputLen)
	report[0] = 0x01
	for _, k := range pressed {
		report[d.KeyStateOffset+k] = 1
	}
	return report
}

func TestDecodeButtons(t *testing.T) {
	d := XL.Describe()
	st := newInputState(d)

	events, err := decodeInput(d, buttonReport(d, 3, 17), st)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ButtonChanged{Index: 3, Pressed: true}, events[0])
	assert.Equal(t, ButtonChanged{Index: 17, Pressed: true}, events[1])

	// Same state again: duplicates are suppressed.
	events, err = decodeInput(d, buttonReport(d, 3, 17), st)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Releasing one key reports only that key.
	events, err = decodeInput(d, buttonReport(d, 3), st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ButtonChanged{Index: 17, Pressed: false}, events[0])
}

func TestDecodeButtonsOriginalMirrored(t *testing.T) {
	// The Original reports keys right-to-left per row; wire position 0 is
	// logical key 4.
	d := Original.Describe()
	st := newInputState(d)

	events, err := decodeInput(d, buttonReport(d, 0), st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ButtonChanged{Index: 4, Pressed: true}, events[0])
}

func TestDecodePedal(t *testing.T) {
	d := Pedal.Describe()
	st := newInputState(d)

	events, err := decodeInput(d, buttonReport(d, 1), st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, PedalChanged{Index: 1, Pressed: true}, events[0])
}

func TestDecodeEmptyAndIdle(t *testing.T) {
	d := XL.Describe()
	st := newInputState(d)

	events, err := decodeInput(d, nil, st)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Report ID zero means no data was pending.
	events, err = decodeInput(d, make([]byte, 36), st)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeMalformed(t *testing.T) {
	d := XL.Describe()
	st := newInputState(d)

	// Truncated single-byte report: rejected, no events, snapshot untouched.
	events, err := decodeInput(d, []byte{0x01}, st)
	assert.ErrorIs(t, err, ErrMalformedReport)
	assert.Empty(t, events)
	for _, b := range st.buttons {
		assert.False(t, b)
	}

	dp := Plus.Describe()
	report := make([]byte, dp.MinInputLen)
	report[0] = 0x01
	report[1] = 0x7f // unknown section opcode
	_, err = decodeInput(dp, report, newInputState(dp))
	assert.ErrorIs(t, err, ErrMalformedReport)
}

func plusReport(opcode, subOp byte, rest ...byte) []byte {
	report := make([]byte, 14)
	report[0] = 0x01
	report[1] = opcode
	report[4] = subOp
	copy(report[5:], rest)
	return report
}

func TestDecodePlusButtons(t *testing.T) {
	d := Plus.Describe()
	st := newInputState(d)

	report := make([]byte, 14)
	report[0] = 0x01
	report[1] = opButtons
	report[4+2] = 1
	events, err := decodeInput(d, report, st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ButtonChanged{Index: 2, Pressed: true}, events[0])
}

func TestDecodeEncoderPress(t *testing.T) {
	d := Plus.Describe()
	st := newInputState(d)

	events, err := decodeInput(d, plusReport(opEncoders, encoderPress, 0, 1, 0, 0), st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EncoderChanged{Index: 1, Pressed: true}, events[0])

	// Held: no repeat events.
	events, err = decodeInput(d, plusReport(opEncoders, encoderPress, 0, 1, 0, 0), st)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = decodeInput(d, plusReport(opEncoders, encoderPress, 0, 0, 0, 0), st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EncoderChanged{Index: 1, Pressed: false}, events[0])
}

func TestDecodeEncoderTwist(t *testing.T) {
	d := Plus.Describe()
	st := newInputState(d)

	// Twists are relative deltas, not state: identical reports both count.
	for i := 0; i < 2; i++ {
		events, err := decodeInput(d, plusReport(opEncoders, encoderTwist, 0xff, 0, 2, 0), st)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, EncoderRotated{Index: 0, Delta: -1}, events[0])
		assert.Equal(t, EncoderRotated{Index: 2, Delta: 2}, events[1])
	}
}

func TestDecodeTouch(t *testing.T) {
	d := Plus.Describe()
	st := newInputState(d)

	tap := plusReport(opTouch, touchTap)
	tap[6], tap[7] = 0x20, 0x03 // x = 800
	tap[8] = 50
	events, err := decodeInput(d, tap, st)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, TouchTap{X: 800, Y: 50}, events[0])

	long := plusReport(opTouch, touchLongPress)
	long[6] = 10
	events, err = decodeInput(d, long, st)
	require.NoError(t, err)
	assert.Equal(t, TouchLongPress{X: 10, Y: 0}, events[0])

	swipe := plusReport(opTouch, touchSwipe)
	swipe[6] = 100
	swipe[10], swipe[11] = 0x58, 0x02 // end x = 600
	events, err = decodeInput(d, swipe, st)
	require.NoError(t, err)
	assert.Equal(t, TouchSwipe{StartX: 100, StartY: 0, EndX: 600, EndY: 0}, events[0])

	_, err = decodeInput(d, plusReport(opTouch, 0x09), st)
	assert.ErrorIs(t, err, ErrMalformedReport)
}
