package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/streamdeck"
)

// List prints every attached, supported device.
type List struct{}

func (l *List) Run(logger *slog.Logger) error {
	t, err := newTransport()
	if err != nil {
		return err
	}
	entries, err := streamdeck.Devices(t)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.Info("no supported devices found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSERIAL\tKEYS\tENCODERS")
	for _, e := range entries {
		d := e.Kind.Describe()
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", e.Kind, e.Serial, d.KeyCount(), d.Encoders)
	}
	return w.Flush()
}
