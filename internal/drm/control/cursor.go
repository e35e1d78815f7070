package control

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/buffer"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// Cursor request flags (DRM_MODE_CURSOR_*).
const (
	cursorFlagBO   uint32 = 0x01 // attach/replace the cursor image
	cursorFlagMove uint32 = 0x02 // reposition the current image
)

// sysCursor is the kernel's drm_mode_cursor record. sysCursor2 extends it
// with a hotspot, matching drm_mode_cursor2.
type sysCursor struct {
	flags  uint32
	crtcID uint32
	x, y   int32
	width  uint32
	height uint32
	handle uint32
}

type sysCursor2 struct {
	sysCursor
	hotX, hotY int32
}

var (
	ioctlModeCursor = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCursor{})), drm.IOCTLBase, 0xa3)

	ioctlModeCursor2 = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCursor2{})), drm.IOCTLBase, 0xbb)
)

type cursorOp int

const (
	cursorAttach cursorOp = iota
	cursorAttachHotspot
	cursorMove
)

// cursorRequest builds the one record shared by the three cursor calls. An
// attach carries the image (buffer object and dimensions), a move carries
// only the target position, and only the hotspot variant fills hotX/hotY.
func cursorRequest(op cursorOp, crtc CRTC, bo buffer.Object, width, height uint32, x, y int32) sysCursor2 {
	var raw sysCursor2
	raw.crtcID = crtc.Raw()
	switch op {
	case cursorMove:
		raw.flags = cursorFlagMove
		raw.x = x
		raw.y = y
	case cursorAttach, cursorAttachHotspot:
		raw.flags = cursorFlagBO
		raw.handle = bo.Raw()
		raw.width = width
		raw.height = height
		if op == cursorAttachHotspot {
			raw.hotX = x
			raw.hotY = y
		}
	}
	return raw
}

// SetCursor attaches bo as the CRTC's hardware cursor image at the given
// pixel dimensions. The cursor keeps its current position.
func SetCursor(dev drm.Device, crtc CRTC, bo buffer.Object, width, height uint32) error {
	raw := cursorRequest(cursorAttach, crtc, bo, width, height, 0, 0)
	return dev.Ioctl(ioctlModeCursor, unsafe.Pointer(&raw.sysCursor))
}

// SetCursor2 is SetCursor with a hotspot: the signed offset of the image's
// visual anchor (an arrow's tip, say) from its top-left pixel.
func SetCursor2(dev drm.Device, crtc CRTC, bo buffer.Object, width, height uint32, hotX, hotY int32) error {
	raw := cursorRequest(cursorAttachHotspot, crtc, bo, width, height, hotX, hotY)
	return dev.Ioctl(ioctlModeCursor2, unsafe.Pointer(&raw))
}

// MoveCursor repositions the CRTC's cursor without touching its image. What
// the kernel does when no image was ever attached is driver-defined; this
// call just forwards the request.
func MoveCursor(dev drm.Device, crtc CRTC, x, y int32) error {
	raw := cursorRequest(cursorMove, crtc, 0, 0, 0, x, y)
	return dev.Ioctl(ioctlModeCursor, unsafe.Pointer(&raw.sysCursor))
}
