// Package buffer allocates dumb buffer objects: linear, CPU-mappable pixel
// storage provided by the kernel for software rendering and cursor images.
package buffer

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// Object is a driver-local buffer-object handle. Like every DRM identifier
// it is assigned by the kernel and only ever round-tripped by clients; 0
// means no object.
type Object uint32

// NewObject wraps a raw buffer-object identifier previously returned by the
// kernel. No validation is possible client-side.
func NewObject(raw uint32) Object { return Object(raw) }

// Raw returns the kernel identifier.
func (o Object) Raw() uint32 { return uint32(o) }

func (o Object) String() string { return fmt.Sprintf("bo(%d)", uint32(o)) }

type sysCreateDumb struct {
	height, width uint32
	bpp           uint32
	flags         uint32

	// filled in by the kernel
	handle uint32
	pitch  uint32
	size   uint64
}

type sysMapDumb struct {
	handle uint32
	pad    uint32
	offset uint64 // fake mmap offset, fixed-size for 32/64-bit compat
}

type sysDestroyDumb struct {
	handle uint32
}

var (
	ioctlModeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateDumb{})), drm.IOCTLBase, 0xb2)

	ioctlModeMapDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysMapDumb{})), drm.IOCTLBase, 0xb3)

	ioctlModeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyDumb{})), drm.IOCTLBase, 0xb4)
)

// Dumb is an allocated dumb buffer. Pitch and Size are chosen by the driver
// and may exceed the requested geometry.
type Dumb struct {
	Handle        Object
	Width, Height uint32
	BPP           uint32
	Pitch         uint32
	Size          uint64
}

// CreateDumb allocates a width x height buffer at bpp bits per pixel.
func CreateDumb(dev drm.Device, width, height, bpp uint32) (*Dumb, error) {
	req := sysCreateDumb{width: width, height: height, bpp: bpp}
	if err := dev.Ioctl(ioctlModeCreateDumb, unsafe.Pointer(&req)); err != nil {
		return nil, err
	}
	return &Dumb{
		Handle: Object(req.handle),
		Width:  req.width,
		Height: req.height,
		BPP:    req.bpp,
		Pitch:  req.pitch,
		Size:   req.size,
	}, nil
}

// MapOffset asks the kernel for the fake mmap offset of a buffer object.
func MapOffset(dev drm.Device, bo Object) (uint64, error) {
	req := sysMapDumb{handle: bo.Raw()}
	if err := dev.Ioctl(ioctlModeMapDumb, unsafe.Pointer(&req)); err != nil {
		return 0, err
	}
	return req.offset, nil
}

// Map maps the buffer's pixel storage into the process. The returned slice
// stays valid until Unmap.
func (d *Dumb) Map(dev drm.Device) ([]byte, error) {
	offset, err := MapOffset(dev, d.Handle)
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(int(dev.Fd()), int64(offset), int(d.Size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap dumb buffer: %w", err)
	}
	return data, nil
}

// Unmap releases a mapping returned by Map.
func Unmap(data []byte) error {
	return unix.Munmap(data)
}

// Destroy frees the buffer object. The mapping, if any, must be unmapped
// first.
func (d *Dumb) Destroy(dev drm.Device) error {
	req := sysDestroyDumb{handle: d.Handle.Raw()}
	return dev.Ioctl(ioctlModeDestroyDumb, unsafe.Pointer(&req))
}
