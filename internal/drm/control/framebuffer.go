package control

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/buffer"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// sysFBCmd is the kernel's legacy drm_mode_fb_cmd record.
type sysFBCmd struct {
	fbID          uint32
	width, height uint32
	pitch         uint32
	bpp           uint32
	depth         uint32

	handle uint32 // driver-specific buffer object
}

var (
	ioctlModeAddFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysFBCmd{})), drm.IOCTLBase, 0xae)

	ioctlModeRmFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(uint32(0))), drm.IOCTLBase, 0xaf)
)

// AddFB registers a buffer object as a scanout framebuffer and returns its
// handle. depth is the color depth (24 for XRGB8888), bpp the bits per
// pixel, pitch the buffer's row stride in bytes.
func AddFB(dev drm.Device, width, height uint32, depth, bpp uint8, pitch uint32, bo buffer.Object) (Framebuffer, error) {
	raw := sysFBCmd{
		width:  width,
		height: height,
		pitch:  pitch,
		bpp:    uint32(bpp),
		depth:  uint32(depth),
		handle: bo.Raw(),
	}
	if err := dev.Ioctl(ioctlModeAddFB, unsafe.Pointer(&raw)); err != nil {
		return 0, err
	}
	return NewFramebuffer(raw.fbID), nil
}

// RmFB unregisters a framebuffer. CRTCs scanning it out are disabled by the
// kernel.
func RmFB(dev drm.Device, fb Framebuffer) error {
	id := fb.Raw()
	return dev.Ioctl(ioctlModeRmFB, unsafe.Pointer(&id))
}
