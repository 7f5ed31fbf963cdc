// Package streamdeck is a protocol translation layer for the Elgato Stream
// Deck family of USB HID button panels. It exposes one uniform API (identity,
// brightness, key/strip images, input events) and hides per-model differences
// in key layout, image encoding, report framing and input-report layout.
//
// The raw HID transport is consumed through the hid package; nothing in this
// package performs device discovery or I/O on its own.
package streamdeck

import "fmt"

// VendorID is the USB vendor ID shared by all supported hardware.
const VendorID uint16 = 0x0fd9

// Kind identifies one hardware variant with a fixed capability descriptor.
type Kind uint8

// Supported hardware variants.
const (
	Original Kind = iota
	OriginalV2
	MK2
	Mini
	MiniMK2
	XL
	XLV2
	Plus
	Pedal
)

func (k Kind) String() string {
	if d, ok := descriptors[k]; ok {
		return d.Name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ImageFormat is the container format a device expects for image payloads.
type ImageFormat uint8

const (
	FormatNone ImageFormat = iota
	FormatBMP
	FormatJPEG
)

// KeyImage describes the per-key image a kind expects: pixel dimensions and
// the rotation/flip transform applied before container encoding. The
// transform table is hardware lore recovered from wire captures; it is ground
// truth per kind, not derivable from a common rule.
type KeyImage struct {
	Width, Height int
	Rotation      int // degrees clockwise: 0, 90, 180, 270
	FlipX, FlipY  bool
	Format        ImageFormat
}

// Screen describes a touch strip / screen target.
type Screen struct {
	Width, Height int
	Format        ImageFormat
}

// Descriptor is the full capability record for one Kind. Pure data; every
// component (encoder, framer, decoder, session) takes it as a parameter.
// Adding a new model is one new table entry.
type Descriptor struct {
	Name      string
	ProductID uint16

	Rows, Cols uint8
	Encoders   uint8

	Key    KeyImage
	Screen *Screen

	// Output report framing. HeaderVersion selects the image-write header
	// layout: 1 = 16-byte header with key+1 and no length field, 2 =
	// 8-byte header with little-endian length and page fields.
	ImageReportLen  int
	HeaderVersion   int
	HalfImagePaging bool // payload per page is half the image (Original)
	PageBase        byte // wire page counter origin (Original: 1)
	FlipKeyIndex    bool // key index column-mirrored on the wire (Original)

	// Feature reports.
	BrightnessPrefix []byte
	ResetPrefix      []byte
	FeatureLen       int // padded length of brightness/reset reports
	SerialReportID   byte
	SerialLen        int
	SerialOffset     int
	FirmwareReportID byte
	FirmwareLen      int
	FirmwareOffset   int

	// Input reports.
	KeyStateOffset int
	MinInputLen    int
	HasOpcodes     bool // report[1] selects button/touch/encoder section
	PedalKeys      bool // buttons are pedals
}

// KeyCount returns the number of keys on the button grid.
func (d Descriptor) KeyCount() int { return int(d.Rows) * int(d.Cols) }

// Visual reports whether the kind has any image target at all.
func (d Descriptor) Visual() bool { return d.Key.Format != FormatNone }

// imagePayloadLen returns the usable image payload bytes per report.
func (d Descriptor) imagePayloadLen() int {
	headerLen := 8
	if d.HeaderVersion == 1 {
		headerLen = 16
	}
	return d.ImageReportLen - headerLen
}

var gen1 = struct {
	brightness, reset []byte
}{
	brightness: []byte{0x05, 0x55, 0xaa, 0xd1, 0x01},
	reset:      []byte{0x0b, 0x63},
}

var gen2 = struct {
	brightness, reset []byte
}{
	brightness: []byte{0x03, 0x08},
	reset:      []byte{0x03, 0x02},
}

var descriptors = map[Kind]Descriptor{
	Original: {
		Name:      "Stream Deck Original",
		ProductID: 0x0060,
		Rows:      3, Cols: 5,
		Key: KeyImage{Width: 72, Height: 72, FlipX: true, FlipY: true, Format: FormatBMP},

		ImageReportLen:  8191,
		HeaderVersion:   1,
		HalfImagePaging: true,
		PageBase:        1,
		FlipKeyIndex:    true,

		BrightnessPrefix: gen1.brightness,
		ResetPrefix:      gen1.reset,
		FeatureLen:       17,
		SerialReportID:   0x03, SerialLen: 17, SerialOffset: 5,
		FirmwareReportID: 0x04, FirmwareLen: 17, FirmwareOffset: 5,

		KeyStateOffset: 1,
		MinInputLen:    1 + 15,
	},

	OriginalV2: {
		Name:      "Stream Deck Original V2",
		ProductID: 0x006d,
		Rows:      3, Cols: 5,
		Key: KeyImage{Width: 72, Height: 72, FlipX: true, FlipY: true, Format: FormatJPEG},

		ImageReportLen: 1024,
		HeaderVersion:  2,

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    4 + 15,
	},

	MK2: {
		Name:      "Stream Deck MK.2",
		ProductID: 0x0080,
		Rows:      3, Cols: 5,
		Key: KeyImage{Width: 72, Height: 72, FlipX: true, FlipY: true, Format: FormatJPEG},

		ImageReportLen: 1024,
		HeaderVersion:  2,

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    4 + 15,
	},

	Mini: {
		Name:      "Stream Deck Mini",
		ProductID: 0x0063,
		Rows:      2, Cols: 3,
		Key: KeyImage{Width: 80, Height: 80, Rotation: 90, FlipY: true, Format: FormatBMP},

		ImageReportLen: 1024,
		HeaderVersion:  1,

		BrightnessPrefix: gen1.brightness,
		ResetPrefix:      gen1.reset,
		FeatureLen:       17,
		SerialReportID:   0x03, SerialLen: 17, SerialOffset: 5,
		FirmwareReportID: 0x04, FirmwareLen: 17, FirmwareOffset: 5,

		KeyStateOffset: 1,
		MinInputLen:    1 + 6,
	},

	MiniMK2: {
		Name:      "Stream Deck Mini MK.2",
		ProductID: 0x0090,
		Rows:      2, Cols: 3,
		Key: KeyImage{Width: 80, Height: 80, Rotation: 90, FlipY: true, Format: FormatBMP},

		ImageReportLen: 1024,
		HeaderVersion:  1,

		BrightnessPrefix: gen1.brightness,
		ResetPrefix:      gen1.reset,
		FeatureLen:       17,
		SerialReportID:   0x03, SerialLen: 32, SerialOffset: 5,
		FirmwareReportID: 0x04, FirmwareLen: 17, FirmwareOffset: 5,

		KeyStateOffset: 1,
		MinInputLen:    1 + 6,
	},

	XL: {
		Name:      "Stream Deck XL",
		ProductID: 0x006c,
		Rows:      4, Cols: 8,
		Key: KeyImage{Width: 96, Height: 96, FlipX: true, FlipY: true, Format: FormatJPEG},

		ImageReportLen: 1024,
		HeaderVersion:  2,

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    4 + 32,
	},

	XLV2: {
		Name:      "Stream Deck XL V2",
		ProductID: 0x008f,
		Rows:      4, Cols: 8,
		Key: KeyImage{Width: 96, Height: 96, FlipX: true, FlipY: true, Format: FormatJPEG},

		ImageReportLen: 1024,
		HeaderVersion:  2,

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    4 + 32,
	},

	Plus: {
		Name:      "Stream Deck Plus",
		ProductID: 0x0084,
		Rows:      2, Cols: 4,
		Encoders:  4,
		Key:       KeyImage{Width: 120, Height: 120, Format: FormatJPEG},
		Screen:    &Screen{Width: 800, Height: 100, Format: FormatJPEG},

		ImageReportLen: 1024,
		HeaderVersion:  2,

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    14,
		HasOpcodes:     true,
	},

	Pedal: {
		Name:      "Stream Deck Pedal",
		ProductID: 0x0086,
		Rows:      1, Cols: 3,
		Key:       KeyImage{Format: FormatNone},

		BrightnessPrefix: gen2.brightness,
		ResetPrefix:      gen2.reset,
		FeatureLen:       32,
		SerialReportID:   0x06, SerialLen: 32, SerialOffset: 2,
		FirmwareReportID: 0x05, FirmwareLen: 32, FirmwareOffset: 6,

		KeyStateOffset: 4,
		MinInputLen:    4 + 3,
		PedalKeys:      true,
	},
}

// Describe returns the capability descriptor for the kind. It panics on a
// Kind value outside the closed enumeration, which cannot be produced by
// Lookup.
func (k Kind) Describe() Descriptor {
	d, ok := descriptors[k]
	if !ok {
		panic(fmt.Sprintf("streamdeck: unknown kind %d", uint8(k)))
	}
	return d
}

// Lookup resolves a vendor/product ID pair to a Kind. Returns
// ErrUnsupportedDevice for anything outside the catalog.
func Lookup(vendorID, productID uint16) (Kind, error) {
	if vendorID != VendorID {
		return 0, fmt.Errorf("%w: vendor %04x", ErrUnsupportedDevice, vendorID)
	}
	for k, d := range descriptors {
		if d.ProductID == productID {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: product %04x", ErrUnsupportedDevice, productID)
}

// flipKeyIndex mirrors a key index across the column axis. The Original
// addresses keys right-to-left within each row.
func flipKeyIndex(d Descriptor, key uint8) uint8 {
	col := key % d.Cols
	return (key - col) + (d.Cols - 1) - col
}
