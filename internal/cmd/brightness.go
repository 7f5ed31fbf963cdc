package cmd

import (
	"log/slog"

	"github.com/Alia5/streamdeck/internal/log"
)

// Brightness sets the backlight percentage.
type Brightness struct {
	DeviceSelector `embed:""`

	Percent uint8 `arg:"" help:"Brightness percentage (0-100)"`
}

func (b *Brightness) Run(logger *slog.Logger, raw log.RawLogger) error {
	sess, err := b.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SetBrightness(b.Percent); err != nil {
		return err
	}
	return flushWithin(sess, logger)
}
