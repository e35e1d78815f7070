package control

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

type sysResources struct {
	fbIDPtr        uint64
	crtcIDPtr      uint64
	connectorIDPtr uint64
	encoderIDPtr   uint64

	countFbs        uint32
	countCrtcs      uint32
	countConnectors uint32
	countEncoders   uint32

	minWidth, maxWidth   uint32
	minHeight, maxHeight uint32
}

type sysPlaneResources struct {
	planeIDPtr  uint64
	countPlanes uint32
}

var (
	ioctlModeGetResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysResources{})), drm.IOCTLBase, 0xa0)

	ioctlModeGetPlaneResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysPlaneResources{})), drm.IOCTLBase, 0xb5)
)

// Resources enumerates the card's mode-setting resources at one instant.
// Handles stay valid only as long as the kernel keeps the resources alive;
// hotplug can invalidate them at any time.
type Resources struct {
	CRTCs        []CRTC
	Connectors   []Connector
	Encoders     []Encoder
	Framebuffers []Framebuffer

	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32
}

// GetResources enumerates the card. The kernel protocol takes two
// exchanges: the first reports counts, the second fills caller-allocated
// arrays. A hotplug between the two can still change the counts; callers
// that care should re-query until stable.
func GetResources(dev drm.Device) (*Resources, error) {
	var raw sysResources
	if err := dev.Ioctl(ioctlModeGetResources, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	res := &Resources{}
	if raw.countCrtcs > 0 {
		res.CRTCs = make([]CRTC, raw.countCrtcs)
		raw.crtcIDPtr = uint64(uintptr(unsafe.Pointer(&res.CRTCs[0])))
	}
	if raw.countConnectors > 0 {
		res.Connectors = make([]Connector, raw.countConnectors)
		raw.connectorIDPtr = uint64(uintptr(unsafe.Pointer(&res.Connectors[0])))
	}
	if raw.countEncoders > 0 {
		res.Encoders = make([]Encoder, raw.countEncoders)
		raw.encoderIDPtr = uint64(uintptr(unsafe.Pointer(&res.Encoders[0])))
	}
	if raw.countFbs > 0 {
		res.Framebuffers = make([]Framebuffer, raw.countFbs)
		raw.fbIDPtr = uint64(uintptr(unsafe.Pointer(&res.Framebuffers[0])))
	}

	if err := dev.Ioctl(ioctlModeGetResources, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	res.MinWidth, res.MaxWidth = raw.minWidth, raw.maxWidth
	res.MinHeight, res.MaxHeight = raw.minHeight, raw.maxHeight
	return res, nil
}

// GetPlaneResources enumerates the card's planes. Universal planes are only
// visible after drm.SetClientCap(dev, drm.ClientCapUniversalPlanes, 1).
func GetPlaneResources(dev drm.Device) ([]Plane, error) {
	var raw sysPlaneResources
	if err := dev.Ioctl(ioctlModeGetPlaneResources, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	var planes []Plane
	if raw.countPlanes > 0 {
		planes = make([]Plane, raw.countPlanes)
		raw.planeIDPtr = uint64(uintptr(unsafe.Pointer(&planes[0])))
	}

	if err := dev.Ioctl(ioctlModeGetPlaneResources, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}
	return planes, nil
}
