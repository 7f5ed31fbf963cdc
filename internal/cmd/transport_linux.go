//go:build linux

package cmd

import (
	"github.com/Alia5/streamdeck/hid"
	"github.com/Alia5/streamdeck/hid/hidraw"
)

func newTransport() (hid.Transport, error) {
	return hidraw.New(), nil
}
