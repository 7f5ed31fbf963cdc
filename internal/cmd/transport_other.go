//go:build !linux

package cmd

import (
	"errors"

	"github.com/Alia5/streamdeck/hid"
)

func newTransport() (hid.Transport, error) {
	return nil, errors.New("no HID transport available on this platform")
}
