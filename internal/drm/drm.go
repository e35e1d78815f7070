// Package drm opens DRM card nodes and exposes the low-level request channel
// that the control and buffer packages issue their exchanges through.
package drm

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// IOCTLBase is the ioctl magic shared by every DRM request.
const IOCTLBase = 'd'

// DefaultNode is the primary card node on most single-GPU systems.
const DefaultNode = "/dev/dri/card0"

// Device is a single open display-control channel. Every mode-setting
// operation is one blocking Ioctl exchange: the kernel reads the record
// behind arg, applies or rejects the request atomically, and may write
// results back into the same record. Implementations perform no queueing,
// locking or retries; concurrent callers are arbitrated by the kernel.
type Device interface {
	// Fd returns the underlying file descriptor.
	Fd() uintptr

	// Ioctl issues one request and blocks until the kernel answers.
	// Failures surface as the kernel's own error, unclassified.
	Ioctl(code uint32, arg unsafe.Pointer) error
}

// Card is a Device backed by an open /dev/dri node.
type Card struct {
	file *os.File
	path string
}

// Open opens a DRM card node. Pass an empty path to use DefaultNode.
func Open(path string) (*Card, error) {
	if path == "" {
		path = DefaultNode
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open drm device: %w", err)
	}
	return &Card{file: f, path: path}, nil
}

// Path returns the node this card was opened from.
func (c *Card) Path() string { return c.path }

// Fd implements Device.
func (c *Card) Fd() uintptr { return c.file.Fd() }

// Ioctl implements Device.
func (c *Card) Ioctl(code uint32, arg unsafe.Pointer) error {
	return ioctl.Do(c.file.Fd(), code, arg)
}

// Close releases the card node.
func (c *Card) Close() error { return c.file.Close() }

type sysVersion struct {
	major, minor, patch int32
	_                   uint32
	nameLen             uint64
	name                uint64
	dateLen             uint64
	date                uint64
	descLen             uint64
	desc                uint64
}

// Version describes the kernel driver behind a card node.
type Version struct {
	Major, Minor, Patch int32
	Name                string
	Date                string
	Desc                string
}

func (v Version) String() string {
	return fmt.Sprintf("%s %d.%d.%d", v.Name, v.Major, v.Minor, v.Patch)
}

var ioctlVersion = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysVersion{})), IOCTLBase, 0x00)

// GetVersion queries the driver version. Two exchanges: the first returns
// string lengths, the second fills caller-allocated buffers.
func GetVersion(dev Device) (*Version, error) {
	var raw sysVersion
	if err := dev.Ioctl(ioctlVersion, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	var name, date, desc []byte
	if raw.nameLen > 0 {
		name = make([]byte, raw.nameLen)
		raw.name = uint64(uintptr(unsafe.Pointer(&name[0])))
	}
	if raw.dateLen > 0 {
		date = make([]byte, raw.dateLen)
		raw.date = uint64(uintptr(unsafe.Pointer(&date[0])))
	}
	if raw.descLen > 0 {
		desc = make([]byte, raw.descLen)
		raw.desc = uint64(uintptr(unsafe.Pointer(&desc[0])))
	}
	if err := dev.Ioctl(ioctlVersion, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	return &Version{
		Major: raw.major,
		Minor: raw.minor,
		Patch: raw.patch,
		Name:  string(bytes.TrimRight(name, "\x00")),
		Date:  string(bytes.TrimRight(date, "\x00")),
		Desc:  string(bytes.TrimRight(desc, "\x00")),
	}, nil
}
