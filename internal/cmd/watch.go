package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/streamdeck"
	"github.com/Alia5/streamdeck/internal/log"
)

// Watch streams decoded input events until interrupted.
type Watch struct {
	DeviceSelector `embed:""`

	JSON bool `help:"Print events as JSON lines"`
}

func (w *Watch) Run(logger *slog.Logger, raw log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := w.open(logger, raw)
	if err != nil {
		return err
	}
	defer sess.Close()

	logger.Info("watching for input, interrupt to stop", "kind", sess.Kind().String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sess.Events():
			if !ok {
				return nil
			}
			if dis, isDis := ev.(streamdeck.Disconnected); isDis {
				if dis.Err != nil {
					return fmt.Errorf("device disconnected: %w", dis.Err)
				}
				return nil
			}
			if err := w.print(ev); err != nil {
				return err
			}
		}
	}
}

func (w *Watch) print(ev streamdeck.InputEvent) error {
	kind, detail := describeEvent(ev)
	if w.JSON {
		line, err := json.Marshal(map[string]any{"event": kind, "data": ev})
		if err != nil {
			return err
		}
		fmt.Println(string(line))
		return nil
	}
	fmt.Printf("%-14s %s\n", kind, detail)
	return nil
}

func describeEvent(ev streamdeck.InputEvent) (kind, detail string) {
	switch e := ev.(type) {
	case streamdeck.ButtonChanged:
		return "button", fmt.Sprintf("key=%d pressed=%t", e.Index, e.Pressed)
	case streamdeck.PedalChanged:
		return "pedal", fmt.Sprintf("pedal=%d pressed=%t", e.Index, e.Pressed)
	case streamdeck.EncoderChanged:
		return "encoder", fmt.Sprintf("encoder=%d pressed=%t", e.Index, e.Pressed)
	case streamdeck.EncoderRotated:
		return "twist", fmt.Sprintf("encoder=%d delta=%+d", e.Index, e.Delta)
	case streamdeck.TouchTap:
		return "tap", fmt.Sprintf("x=%d y=%d", e.X, e.Y)
	case streamdeck.TouchLongPress:
		return "long-press", fmt.Sprintf("x=%d y=%d", e.X, e.Y)
	case streamdeck.TouchSwipe:
		return "swipe", fmt.Sprintf("from=(%d,%d) to=(%d,%d)", e.StartX, e.StartY, e.EndX, e.EndY)
	default:
		return "unknown", fmt.Sprintf("%#v", ev)
	}
}
