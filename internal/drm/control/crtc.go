package control

import (
	"runtime"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// sysCrtc is the kernel's drm_mode_crtc record, shared by the get and set
// requests. The connector list travels as an address+count pair into
// caller-owned memory.
type sysCrtc struct {
	setConnectorsPtr uint64
	countConnectors  uint32

	id   uint32
	fbID uint32

	x, y uint32 // position on the framebuffer

	gammaSize uint32
	modeValid uint32
	mode      ModeInfo
}

var (
	ioctlModeGetCRTC = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCrtc{})), drm.IOCTLBase, 0xa1)

	ioctlModeSetCRTC = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCrtc{})), drm.IOCTLBase, 0xa2)
)

// CRTCInfo is an immutable snapshot of a CRTC's state at the instant of the
// kernel exchange that produced it. It is never refreshed; staleness is the
// caller's concern.
type CRTCInfo struct {
	handle      CRTC
	x, y        uint32
	fb          Framebuffer
	gammaLength uint32
	modeValid   bool
	mode        ModeInfo
}

// Handle returns the CRTC this snapshot describes.
func (i CRTCInfo) Handle() CRTC { return i.handle }

// Position returns the scanout offset into the attached framebuffer.
func (i CRTCInfo) Position() (x, y uint32) { return i.x, i.y }

// Framebuffer returns the attached framebuffer, 0 if none.
func (i CRTCInfo) Framebuffer() Framebuffer { return i.fb }

// GammaLength returns the size of the CRTC's gamma lookup table.
func (i CRTCInfo) GammaLength() uint32 { return i.gammaLength }

// Mode returns the active timing and whether one is set at all.
func (i CRTCInfo) Mode() (ModeInfo, bool) { return i.mode, i.modeValid }

// GetCRTC loads a snapshot of crtc's current state. On failure the kernel's
// error is returned as-is and no partial snapshot is produced.
func GetCRTC(dev drm.Device, crtc CRTC) (CRTCInfo, error) {
	var raw sysCrtc
	raw.id = crtc.Raw()
	if err := dev.Ioctl(ioctlModeGetCRTC, unsafe.Pointer(&raw)); err != nil {
		return CRTCInfo{}, err
	}
	return CRTCInfo{
		handle:      crtc,
		x:           raw.x,
		y:           raw.y,
		fb:          NewFramebuffer(raw.fbID),
		gammaLength: raw.gammaSize,
		modeValid:   raw.modeValid != 0,
		mode:        raw.mode,
	}, nil
}

// SetCRTC commits a full CRTC configuration in one exchange: framebuffer,
// connector attachment, scanout position and, if mode is non-nil, timing.
// The kernel replaces the CRTC's previous connector set wholesale and
// applies everything atomically or not at all.
//
// The connectors slice is borrowed for the duration of the call only; its
// backing array is handed to the kernel by address and must not be mutated
// until SetCRTC returns. A nil mode asserts no timing for this commit, so
// an empty connector list with a nil mode detaches the CRTC from all output.
func SetCRTC(dev drm.Device, crtc CRTC, fb Framebuffer, connectors []Connector, x, y uint32, mode *ModeInfo) error {
	var raw sysCrtc
	raw.id = crtc.Raw()
	raw.fbID = fb.Raw()
	raw.x = x
	raw.y = y
	if len(connectors) > 0 {
		raw.setConnectorsPtr = uint64(uintptr(unsafe.Pointer(&connectors[0])))
	}
	raw.countConnectors = uint32(len(connectors))
	if mode != nil {
		raw.mode = *mode
		raw.modeValid = 1
	}

	err := dev.Ioctl(ioctlModeSetCRTC, unsafe.Pointer(&raw))
	// The record carries the slice address only as an integer; keep the
	// backing array reachable until the exchange is over.
	runtime.KeepAlive(connectors)
	return err
}
