package control

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

type sysGetPlane struct {
	id               uint32
	crtcID           uint32
	fbID             uint32
	possibleCrtcs    uint32
	gammaSize        uint32
	countFormatTypes uint32
	formatTypePtr    uint64
}

var ioctlModeGetPlane = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysGetPlane{})), drm.IOCTLBase, 0xb6)

// PlaneInfo is an immutable snapshot of a compositing plane.
type PlaneInfo struct {
	handle        Plane
	crtc          CRTC
	fb            Framebuffer
	possibleCRTCs uint32
	gammaLength   uint32
	formats       []uint32
}

// Handle returns the plane this snapshot describes.
func (i *PlaneInfo) Handle() Plane { return i.handle }

// CRTC returns the CRTC the plane is bound to, 0 if unbound.
func (i *PlaneInfo) CRTC() CRTC { return i.crtc }

// Framebuffer returns the plane's framebuffer, 0 if none.
func (i *PlaneInfo) Framebuffer() Framebuffer { return i.fb }

// PossibleCRTCs is a bitmask over the card's CRTC list.
func (i *PlaneInfo) PossibleCRTCs() uint32 { return i.possibleCRTCs }

// GammaLength returns the plane's gamma table size.
func (i *PlaneInfo) GammaLength() uint32 { return i.gammaLength }

// Formats lists the fourcc pixel formats the plane accepts.
func (i *PlaneInfo) Formats() []uint32 { return i.formats }

// GetPlane loads a snapshot of a plane, two exchanges as usual for
// array-bearing queries.
func GetPlane(dev drm.Device, plane Plane) (*PlaneInfo, error) {
	var raw sysGetPlane
	raw.id = plane.Raw()
	if err := dev.Ioctl(ioctlModeGetPlane, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	info := &PlaneInfo{handle: plane}
	if raw.countFormatTypes > 0 {
		info.formats = make([]uint32, raw.countFormatTypes)
		raw.formatTypePtr = uint64(uintptr(unsafe.Pointer(&info.formats[0])))
	}

	if err := dev.Ioctl(ioctlModeGetPlane, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	info.crtc = NewCRTC(raw.crtcID)
	info.fb = NewFramebuffer(raw.fbID)
	info.possibleCRTCs = raw.possibleCrtcs
	info.gammaLength = raw.gammaSize
	return info, nil
}
