package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/streamdeck/internal/log"
)

// Info queries and prints one device's identity and capabilities.
type Info struct {
	DeviceSelector `embed:""`
}

func (i *Info) Run(logger *slog.Logger, raw log.RawLogger) error {
	sess, err := i.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	serial, err := sess.Serial()
	if err != nil {
		return err
	}
	fw, err := sess.FirmwareVersion()
	if err != nil {
		return err
	}

	d := sess.Describe()
	fmt.Printf("Kind:      %s\n", sess.Kind())
	fmt.Printf("Serial:    %s\n", serial)
	fmt.Printf("Firmware:  %s\n", fw)
	fmt.Printf("Keys:      %d (%dx%d)\n", d.KeyCount(), d.Cols, d.Rows)
	if d.Visual() {
		fmt.Printf("Key image: %dx%d px\n", d.Key.Width, d.Key.Height)
	}
	if d.Screen != nil {
		fmt.Printf("Screen:    %dx%d px\n", d.Screen.Width, d.Screen.Height)
	}
	if d.Encoders > 0 {
		fmt.Printf("Encoders:  %d\n", d.Encoders)
	}
	return nil
}
