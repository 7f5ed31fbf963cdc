package cmd

import (
	"log/slog"

	"github.com/Alia5/streamdeck/internal/log"
)

// Reset returns the device to its power-on logo screen.
type Reset struct {
	DeviceSelector `embed:""`
}

func (r *Reset) Run(logger *slog.Logger, raw log.RawLogger) error {
	sess, err := r.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Reset(); err != nil {
		return err
	}
	return flushWithin(sess, logger)
}
