package drm

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// Driver capabilities, queried with GetCap.
const (
	CapDumbBuffer uint64 = iota + 1
	CapVBlankHighCRTC
	CapDumbPreferredDepth
	CapDumbPreferShadow
	CapPrime
	CapTimestampMonotonic
	CapAsyncPageFlip
	CapCursorWidth
	CapCursorHeight

	CapAddFB2Modifiers uint64 = 0x10
)

// Client capabilities, advertised with SetClientCap.
const (
	ClientCapStereo3D uint64 = iota + 1
	ClientCapUniversalPlanes
	ClientCapAtomic
	ClientCapAspectRatio
	ClientCapWritebackConnectors
)

type sysCapability struct {
	id  uint64
	val uint64
}

type sysSetClientCap struct {
	capability uint64
	value      uint64
}

var (
	ioctlGetCap = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCapability{})), IOCTLBase, 0x0c)

	ioctlSetClientCap = ioctl.NewCode(ioctl.Write,
		uint16(unsafe.Sizeof(sysSetClientCap{})), IOCTLBase, 0x0d)

	ioctlSetMaster  = ioctl.NewCode(ioctl.None, 0, IOCTLBase, 0x1e)
	ioctlDropMaster = ioctl.NewCode(ioctl.None, 0, IOCTLBase, 0x1f)
)

// GetCap queries a single driver capability value.
func GetCap(dev Device, id uint64) (uint64, error) {
	c := sysCapability{id: id}
	if err := dev.Ioctl(ioctlGetCap, unsafe.Pointer(&c)); err != nil {
		return 0, err
	}
	return c.val, nil
}

// HasDumbBuffer reports whether the driver supports dumb buffer allocation.
// A failed query is distinct from an unsupported capability.
func HasDumbBuffer(dev Device) (bool, error) {
	v, err := GetCap(dev, CapDumbBuffer)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// CursorSize returns the driver's preferred cursor plane dimensions, or
// 64x64 when the driver does not advertise them.
func CursorSize(dev Device) (width, height uint64) {
	width, height = 64, 64
	if w, err := GetCap(dev, CapCursorWidth); err == nil && w != 0 {
		width = w
	}
	if h, err := GetCap(dev, CapCursorHeight); err == nil && h != 0 {
		height = h
	}
	return width, height
}

// SetClientCap tells the kernel this client understands an extended
// interface, e.g. universal planes.
func SetClientCap(dev Device, capability, value uint64) error {
	c := sysSetClientCap{capability: capability, value: value}
	return dev.Ioctl(ioctlSetClientCap, unsafe.Pointer(&c))
}

// SetMaster acquires DRM master on the device. Mode-setting requests are
// rejected with EACCES unless the caller holds master.
func SetMaster(dev Device) error {
	return dev.Ioctl(ioctlSetMaster, nil)
}

// DropMaster releases DRM master.
func DropMaster(dev Device) error {
	return dev.Ioctl(ioctlDropMaster, nil)
}
