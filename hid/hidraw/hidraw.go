//go:build linux

// Package hidraw implements hid.Transport on top of the Linux hidraw
// character devices (/dev/hidrawN), using raw ioctls for feature reports and
// poll(2) for bounded-timeout input reads. No cgo and no hidapi dependency.
package hidraw

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Alia5/streamdeck/hid"
)

const sysClassHidraw = "/sys/class/hidraw"

// Transport enumerates and opens hidraw nodes.
type Transport struct{}

// New returns a hidraw-backed transport.
func New() *Transport { return &Transport{} }

// Enumerate walks /sys/class/hidraw and parses each node's uevent file for
// vendor/product IDs and serial number.
func (t *Transport) Enumerate(vendorID uint16) ([]hid.DeviceInfo, error) {
	entries, err := os.ReadDir(sysClassHidraw)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("hidraw: enumerate: %w", err)
	}

	var infos []hid.DeviceInfo
	for _, e := range entries {
		info, err := readUevent(filepath.Join(sysClassHidraw, e.Name(), "device", "uevent"))
		if err != nil {
			continue
		}
		if info.VendorID != vendorID {
			continue
		}
		info.Path = filepath.Join("/dev", e.Name())
		infos = append(infos, info)
	}
	return infos, nil
}

// Open opens the first enumerated device matching vendor/product (and serial,
// when non-empty).
func (t *Transport) Open(vendorID, productID uint16, serial string) (hid.Device, error) {
	infos, err := t.Enumerate(vendorID)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.ProductID != productID {
			continue
		}
		if serial != "" && info.Serial != serial {
			continue
		}
		fd, err := unix.Open(info.Path, unix.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("hidraw: open %s: %w", info.Path, err)
		}
		return &device{fd: fd, path: info.Path}, nil
	}
	return nil, hid.ErrNotFound
}

// readUevent parses HID_ID and HID_UNIQ lines, e.g.
//
//	HID_ID=0003:00000FD9:00000084
//	HID_UNIQ=CL12K1A00000
func readUevent(path string) (hid.DeviceInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hid.DeviceInfo{}, err
	}
	var info hid.DeviceInfo
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "HID_ID":
			var bus, vid, pid uint32
			if _, err := fmt.Sscanf(value, "%x:%x:%x", &bus, &vid, &pid); err != nil {
				return hid.DeviceInfo{}, err
			}
			info.VendorID = uint16(vid)
			info.ProductID = uint16(pid)
		case "HID_UNIQ":
			info.Serial = strings.TrimSpace(value)
		}
	}
	if info.VendorID == 0 && info.ProductID == 0 {
		return hid.DeviceInfo{}, fmt.Errorf("hidraw: no HID_ID in %s", path)
	}
	return info, nil
}

type device struct {
	mu     sync.Mutex
	fd     int
	path   string
	closed bool
}

// hidraw ioctl request numbers: _IOC(_IOC_WRITE|_IOC_READ, 'H', nr, len).
func hidiocsfeature(length int) uint { return ioc(3, 'H', 0x06, length) }
func hidiocgfeature(length int) uint { return ioc(3, 'H', 0x07, length) }

func ioc(dir, typ, nr, size int) uint {
	return uint(dir)<<30 | uint(size)<<16 | uint(typ)<<8 | uint(nr)
}

func (d *device) Write(data []byte) (int, error) {
	d.mu.Lock()
	fd, closed := d.fd, d.closed
	d.mu.Unlock()
	if closed {
		return 0, os.ErrClosed
	}
	n, err := unix.Write(fd, data)
	if err != nil {
		return n, fmt.Errorf("hidraw: write %s: %w", d.path, err)
	}
	return n, nil
}

func (d *device) SendFeatureReport(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return os.ErrClosed
	}
	if err := ioctlBuf(d.fd, hidiocsfeature(len(data)), data); err != nil {
		return fmt.Errorf("hidraw: send feature report %s: %w", d.path, err)
	}
	return nil
}

func (d *device) GetFeatureReport(reportID byte, length int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, os.ErrClosed
	}
	buf := make([]byte, length+1)
	buf[0] = reportID
	if err := ioctlBuf(d.fd, hidiocgfeature(len(buf)), buf); err != nil {
		return nil, fmt.Errorf("hidraw: get feature report %s: %w", d.path, err)
	}
	return buf, nil
}

func (d *device) ReadInputReport(buf []byte, timeout time.Duration) (int, error) {
	d.mu.Lock()
	fd, closed := d.fd, d.closed
	d.mu.Unlock()
	if closed {
		return 0, os.ErrClosed
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return 0, hid.ErrTimeout
		}
		return 0, fmt.Errorf("hidraw: poll %s: %w", d.path, err)
	}
	if n == 0 {
		return 0, hid.ErrTimeout
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return 0, fmt.Errorf("hidraw: %s: %w", d.path, unix.EIO)
	}

	n, err = unix.Read(fd, buf)
	if err != nil {
		return 0, fmt.Errorf("hidraw: read %s: %w", d.path, err)
	}
	return n, nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return unix.Close(d.fd)
}

func ioctlBuf(fd int, req uint, buf []byte) error {
	if len(buf) == 0 {
		return unix.EINVAL
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	runtime.KeepAlive(buf)
	if errno != 0 {
		return errno
	}
	return nil
}
