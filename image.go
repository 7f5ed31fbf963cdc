package streamdeck

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

// jpegQuality matches what the hardware vendor's own software produces;
// higher settings blow past what some firmware revisions accept per key.
const jpegQuality = 90

// encodeKeyImage turns an arbitrary source image into the exact container
// bytes the kind expects for a key: resize to the key dimensions, apply the
// kind's rotation and flips, then wrap in the container format. The transform
// runs before container encoding because key and screen targets on the same
// kind differ in orientation.
func encodeKeyImage(d Descriptor, img image.Image) ([]byte, error) {
	if !d.Visual() {
		return nil, ErrNoScreen
	}
	rgba, err := resample(img, d.Key.Width, d.Key.Height)
	if err != nil {
		return nil, err
	}
	rgba = orient(rgba, d.Key.Rotation, d.Key.FlipX, d.Key.FlipY)
	return encodeContainer(rgba, d.Key.Format)
}

// encodeScreenImage encodes a full-strip image. Screen targets are never
// rotated, even on kinds whose keys are.
func encodeScreenImage(d Descriptor, img image.Image) ([]byte, error) {
	if d.Screen == nil {
		return nil, ErrNoScreen
	}
	rgba, err := resample(img, d.Screen.Width, d.Screen.Height)
	if err != nil {
		return nil, err
	}
	return encodeContainer(rgba, d.Screen.Format)
}

// blankKeyImage encodes an all-black key, used by ClearKey.
func blankKeyImage(d Descriptor) ([]byte, error) {
	return encodeKeyImage(d, image.NewRGBA(image.Rect(0, 0, d.Key.Width, d.Key.Height)))
}

func resample(img image.Image, width, height int) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, b.Dx(), b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

// orient applies the kind's clockwise rotation followed by axis flips.
func orient(src *image.RGBA, rotation int, flipX, flipY bool) *image.RGBA {
	switch rotation {
	case 90, 180, 270:
		src = rotate(src, rotation)
	}
	if flipX || flipY {
		src = flip(src, flipX, flipY)
	}
	return src
}

func rotate(src *image.RGBA, degrees int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			switch degrees {
			case 90:
				dst.SetRGBA(h-1-y, x, c)
			case 180:
				dst.SetRGBA(w-1-x, h-1-y, c)
			case 270:
				dst.SetRGBA(y, w-1-x, c)
			}
		}
	}
	return dst
}

func flip(src *image.RGBA, flipX, flipY bool) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x, y
			if flipX {
				dx = w - 1 - x
			}
			if flipY {
				dy = h - 1 - y
			}
			dst.SetRGBA(dx, dy, src.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func encodeContainer(img *image.RGBA, format ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatBMP:
		// The firmware expects 24-bit rows; the encoder only emits them
		// for fully opaque images.
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
		err = bmp.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return nil, ErrNoScreen
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return buf.Bytes(), nil
}
