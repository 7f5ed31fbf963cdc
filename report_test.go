package streamdeck

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameKeyImageV2(t *testing.T) {
	d := XL.Describe()
	payload := bytes.Repeat([]byte{0xab}, 2500)

	chunks := frameKeyImage(d, 7, payload)
	// 1016 usable bytes per report: 1016 + 1016 + 468.
	require.Len(t, chunks, 3)

	wantLens := []int{1016, 1016, 468}
	for i, chunk := range chunks {
		require.Len(t, chunk, d.ImageReportLen)
		assert.EqualValues(t, 0x02, chunk[0])
		assert.EqualValues(t, 0x07, chunk[1])
		assert.EqualValues(t, 7, chunk[2])
		assert.EqualValues(t, wantLens[i], binary.LittleEndian.Uint16(chunk[4:6]))
		assert.EqualValues(t, i, binary.LittleEndian.Uint16(chunk[6:8]))

		final := byte(0)
		if i == len(chunks)-1 {
			final = 1
		}
		assert.Equal(t, final, chunk[3], "final flag on chunk %d", i)
	}

	// Payload reassembles in page order; the tail of the last chunk is padding.
	var got []byte
	got = append(got, chunks[0][8:8+1016]...)
	got = append(got, chunks[1][8:8+1016]...)
	got = append(got, chunks[2][8:8+468]...)
	assert.Equal(t, payload, got)
	assert.Equal(t, make([]byte, 1024-8-468), chunks[2][8+468:])
}

func TestFrameKeyImageFiveChunks(t *testing.T) {
	// 4800 bytes through 1024-byte reports with a 16-byte header: four full
	// pages of 1008 plus a 768-byte tail.
	d := Mini.Describe()
	payload := bytes.Repeat([]byte{0x5a}, 4800)

	chunks := frameKeyImage(d, 3, payload)
	require.Len(t, chunks, 5)
	for i, chunk := range chunks {
		require.Len(t, chunk, 1024)
		assert.EqualValues(t, 0x02, chunk[0])
		assert.EqualValues(t, 0x01, chunk[1])
		assert.EqualValues(t, i, chunk[2], "page counter on chunk %d", i)
		final := byte(0)
		if i == 4 {
			final = 1
		}
		assert.Equal(t, final, chunk[4], "final flag on chunk %d", i)
		assert.EqualValues(t, 4, chunk[5], "wire key is index+1")
	}
}

func TestFrameKeyImageOriginal(t *testing.T) {
	// The first revision pages in exactly two halves, counts pages from one
	// and mirrors the key index across the columns.
	d := Original.Describe()
	payload := bytes.Repeat([]byte{0x11}, 7000)

	chunks := frameKeyImage(d, 0, payload)
	require.Len(t, chunks, 2)
	for i, chunk := range chunks {
		require.Len(t, chunk, 8191)
		assert.EqualValues(t, i+1, chunk[2], "page counter starts at one")
		assert.EqualValues(t, 5, chunk[5], "key 0 maps to wire key 4, sent as index+1")
	}
	assert.EqualValues(t, 0, chunks[0][4])
	assert.EqualValues(t, 1, chunks[1][4])
	assert.Equal(t, payload[:3500], chunks[0][16:16+3500])
	assert.Equal(t, payload[3500:], chunks[1][16:16+3500])
}

func TestFrameScreenImage(t *testing.T) {
	d := Plus.Describe()
	payload := bytes.Repeat([]byte{0xcd}, 1500)

	chunks := frameScreenImage(d, 100, 0, 800, 100, payload)
	require.Len(t, chunks, 2)

	first := chunks[0]
	assert.EqualValues(t, 0x02, first[0])
	assert.EqualValues(t, 0x0c, first[1])
	assert.EqualValues(t, 100, binary.LittleEndian.Uint16(first[2:4]))
	assert.EqualValues(t, 0, binary.LittleEndian.Uint16(first[4:6]))
	assert.EqualValues(t, 800, binary.LittleEndian.Uint16(first[6:8]))
	assert.EqualValues(t, 100, binary.LittleEndian.Uint16(first[8:10]))
	assert.EqualValues(t, 0, first[10])
	assert.EqualValues(t, 0, binary.LittleEndian.Uint16(first[11:13]))
	assert.EqualValues(t, 1008, binary.LittleEndian.Uint16(first[13:15]))

	last := chunks[1]
	assert.EqualValues(t, 1, last[10], "final flag")
	assert.EqualValues(t, 1, binary.LittleEndian.Uint16(last[11:13]))
	assert.EqualValues(t, 1500-1008, binary.LittleEndian.Uint16(last[13:15]))
}

func TestBrightnessReport(t *testing.T) {
	v1 := brightnessReport(Mini.Describe(), 42)
	require.Len(t, v1, 17)
	assert.Equal(t, []byte{0x05, 0x55, 0xaa, 0xd1, 0x01, 42}, v1[:6])

	v2 := brightnessReport(XL.Describe(), 100)
	require.Len(t, v2, 32)
	assert.Equal(t, []byte{0x03, 0x08, 100}, v2[:3])
}

func TestResetReport(t *testing.T) {
	v1 := resetReport(Original.Describe())
	require.Len(t, v1, 17)
	assert.Equal(t, []byte{0x0b, 0x63}, v1[:2])

	v2 := resetReport(Plus.Describe())
	require.Len(t, v2, 32)
	assert.Equal(t, []byte{0x03, 0x02}, v2[:2])
}
