package cmd

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/Alia5/streamdeck/internal/log"
)

// SetImage loads an image file and writes it to one key.
type SetImage struct {
	DeviceSelector `embed:""`

	Key  uint8  `arg:"" help:"Key index, top-left is 0"`
	File string `arg:"" type:"existingfile" help:"Image file (PNG, JPEG or GIF)"`
}

func (c *SetImage) Run(logger *slog.Logger, raw log.RawLogger) error {
	img, err := loadImage(c.File)
	if err != nil {
		return err
	}
	sess, err := c.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SetKeyImage(c.Key, img); err != nil {
		return err
	}
	return flushWithin(sess, logger)
}

// SetScreen loads an image file and writes it to the touch strip.
type SetScreen struct {
	DeviceSelector `embed:""`

	File string `arg:"" type:"existingfile" help:"Image file (PNG, JPEG or GIF)"`
}

func (c *SetScreen) Run(logger *slog.Logger, raw log.RawLogger) error {
	img, err := loadImage(c.File)
	if err != nil {
		return err
	}
	sess, err := c.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SetScreenImage(img); err != nil {
		return err
	}
	return flushWithin(sess, logger)
}

// Clear blanks one key, or all of them.
type Clear struct {
	DeviceSelector `embed:""`

	Key uint8 `arg:"" optional:"" help:"Key index to clear"`
	All bool  `help:"Clear every key"`
}

func (c *Clear) Run(logger *slog.Logger, raw log.RawLogger) error {
	sess, err := c.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	if c.All {
		err = sess.ClearAllKeys()
	} else {
		err = sess.ClearKey(c.Key)
	}
	if err != nil {
		return err
	}
	return flushWithin(sess, logger)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
