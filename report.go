package streamdeck

import "encoding/binary"

// Report framing: splits an encoded image payload into fixed-length output
// reports with the per-kind chunk header, and assembles the single-report
// feature payloads for scalar commands. Pure transformation, no I/O.

const (
	reportOut      = 0x02 // output report ID
	cmdKeyImageV1  = 0x01
	cmdKeyImageV2  = 0x07
	cmdScreenImage = 0x0c
)

// frameKeyImage splits payload into ordered chunks for a key image write.
// Each chunk is exactly d.ImageReportLen bytes (zero padded), page counters
// count from zero and exactly the last chunk carries the final flag. The wire
// page byte and key index honor the kind's quirks (PageBase, FlipKeyIndex).
func frameKeyImage(d Descriptor, key uint8, payload []byte) [][]byte {
	if d.FlipKeyIndex {
		key = flipKeyIndex(d, key)
	}

	perPage := d.imagePayloadLen()
	if d.HalfImagePaging {
		// The first hardware revision insists on exactly two pages of
		// half the image each, regardless of report capacity.
		perPage = (len(payload) + 1) / 2
	}

	var chunks [][]byte
	remaining := len(payload)
	for page := 0; remaining > 0; page++ {
		thisLen := min(remaining, perPage)
		sent := page * perPage

		chunk := make([]byte, d.ImageReportLen)
		chunk[0] = reportOut
		final := byte(0)
		if thisLen == remaining {
			final = 1
		}
		switch d.HeaderVersion {
		case 1:
			chunk[1] = cmdKeyImageV1
			chunk[2] = byte(page) + d.PageBase
			chunk[4] = final
			chunk[5] = key + 1
			copy(chunk[16:], payload[sent:sent+thisLen])
		default:
			chunk[1] = cmdKeyImageV2
			chunk[2] = key
			chunk[3] = final
			binary.LittleEndian.PutUint16(chunk[4:6], uint16(thisLen))
			binary.LittleEndian.PutUint16(chunk[6:8], uint16(page))
			copy(chunk[8:], payload[sent:sent+thisLen])
		}
		chunks = append(chunks, chunk)
		remaining -= thisLen
	}
	return chunks
}

// frameScreenImage splits payload into chunks for a touch strip / screen
// write of the given rectangle. Screen writes always use the 16-byte v2
// header with little-endian coordinate, page and length fields.
func frameScreenImage(d Descriptor, x, y, w, h uint16, payload []byte) [][]byte {
	const headerLen = 16
	perPage := d.ImageReportLen - headerLen

	var chunks [][]byte
	remaining := len(payload)
	for page := 0; remaining > 0; page++ {
		thisLen := min(remaining, perPage)
		sent := page * perPage

		chunk := make([]byte, d.ImageReportLen)
		chunk[0] = reportOut
		chunk[1] = cmdScreenImage
		binary.LittleEndian.PutUint16(chunk[2:4], x)
		binary.LittleEndian.PutUint16(chunk[4:6], y)
		binary.LittleEndian.PutUint16(chunk[6:8], w)
		binary.LittleEndian.PutUint16(chunk[8:10], h)
		if thisLen == remaining {
			chunk[10] = 1
		}
		binary.LittleEndian.PutUint16(chunk[11:13], uint16(page))
		binary.LittleEndian.PutUint16(chunk[13:15], uint16(thisLen))
		copy(chunk[headerLen:], payload[sent:sent+thisLen])

		chunks = append(chunks, chunk)
		remaining -= thisLen
	}
	return chunks
}

// brightnessReport builds the single feature report that sets the backlight.
func brightnessReport(d Descriptor, percent uint8) []byte {
	buf := make([]byte, d.FeatureLen)
	n := copy(buf, d.BrightnessPrefix)
	buf[n] = percent
	return buf
}

// resetReport builds the single feature report that resets the device.
func resetReport(d Descriptor) []byte {
	buf := make([]byte, d.FeatureLen)
	copy(buf, d.ResetPrefix)
	return buf
}
