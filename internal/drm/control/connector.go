package control

import (
	"fmt"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// ConnectionStatus is the kernel's view of whether a display is attached.
type ConnectionStatus uint32

const (
	Connected         ConnectionStatus = 1
	Disconnected      ConnectionStatus = 2
	UnknownConnection ConnectionStatus = 3
)

func (s ConnectionStatus) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Connector kind values (DRM_MODE_CONNECTOR_*), indexed by kernel value.
var connectorKindNames = []string{
	"Unknown", "VGA", "DVI-I", "DVI-D", "DVI-A", "Composite", "SVIDEO",
	"LVDS", "Component", "DIN", "DP", "HDMI-A", "HDMI-B", "TV", "eDP",
	"Virtual", "DSI", "DPI", "Writeback", "SPI", "USB",
}

// ConnectorKindName names a connector kind, e.g. "HDMI-A".
func ConnectorKindName(kind uint32) string {
	if int(kind) < len(connectorKindNames) {
		return connectorKindNames[kind]
	}
	return "Unknown"
}

type sysGetConnector struct {
	encodersPtr   uint64
	modesPtr      uint64
	propsPtr      uint64
	propValuesPtr uint64

	countModes    uint32
	countProps    uint32
	countEncoders uint32

	encoderID uint32 // currently driving encoder
	id        uint32
	kind      uint32
	kindID    uint32

	connection        uint32
	mmWidth, mmHeight uint32
	subpixel          uint32
	pad               uint32
}

var ioctlModeGetConnector = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysGetConnector{})), drm.IOCTLBase, 0xa7)

// ConnectorInfo is an immutable snapshot of a connector: its connection
// status, the modes the attached display advertises, and the encoders that
// can drive it.
type ConnectorInfo struct {
	handle         Connector
	status         ConnectionStatus
	kind           uint32
	kindID         uint32
	mmWidth        uint32
	mmHeight       uint32
	currentEncoder Encoder
	encoders       []Encoder
	modes          []ModeInfo
	props          []uint32
	propValues     []uint64
}

// Handle returns the connector this snapshot describes.
func (i *ConnectorInfo) Handle() Connector { return i.handle }

// Status reports whether a display was attached at snapshot time.
func (i *ConnectorInfo) Status() ConnectionStatus { return i.status }

// Kind returns the raw connector kind and its index among connectors of
// that kind (HDMI-A-1, HDMI-A-2, ...).
func (i *ConnectorInfo) Kind() (kind, kindID uint32) { return i.kind, i.kindID }

// Name renders the connector's conventional name, e.g. "HDMI-A-1".
func (i *ConnectorInfo) Name() string {
	return fmt.Sprintf("%s-%d", ConnectorKindName(i.kind), i.kindID)
}

// SizeMM returns the display's physical dimensions in millimeters.
func (i *ConnectorInfo) SizeMM() (w, h uint32) { return i.mmWidth, i.mmHeight }

// CurrentEncoder returns the encoder driving this connector, 0 if none.
func (i *ConnectorInfo) CurrentEncoder() Encoder { return i.currentEncoder }

// Encoders lists the encoders able to drive this connector.
func (i *ConnectorInfo) Encoders() []Encoder { return i.encoders }

// Modes lists the timings the attached display advertises.
func (i *ConnectorInfo) Modes() []ModeInfo { return i.modes }

// Properties returns the connector's property ids and their values,
// index-aligned.
func (i *ConnectorInfo) Properties() (ids []uint32, values []uint64) {
	return i.props, i.propValues
}

// PreferredMode returns the display's preferred timing, falling back to the
// first advertised mode. ok is false when the connector has no modes at all.
func (i *ConnectorInfo) PreferredMode() (ModeInfo, bool) {
	if len(i.modes) == 0 {
		return ModeInfo{}, false
	}
	for _, m := range i.modes {
		if m.Preferred() {
			return m, true
		}
	}
	return i.modes[0], true
}

// GetConnector loads a snapshot of a connector. Like all array-bearing
// queries this is a two-exchange protocol: counts first, then a fill into
// caller-allocated storage.
func GetConnector(dev drm.Device, conn Connector) (*ConnectorInfo, error) {
	var raw sysGetConnector
	raw.id = conn.Raw()
	if err := dev.Ioctl(ioctlModeGetConnector, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	info := &ConnectorInfo{handle: conn}
	if raw.countProps > 0 {
		info.props = make([]uint32, raw.countProps)
		raw.propsPtr = uint64(uintptr(unsafe.Pointer(&info.props[0])))
		info.propValues = make([]uint64, raw.countProps)
		raw.propValuesPtr = uint64(uintptr(unsafe.Pointer(&info.propValues[0])))
	}
	if raw.countModes == 0 {
		// Always reserve one slot: some drivers probe modes during the
		// second exchange and report at least the current one.
		raw.countModes = 1
	}
	info.modes = make([]ModeInfo, raw.countModes)
	raw.modesPtr = uint64(uintptr(unsafe.Pointer(&info.modes[0])))
	if raw.countEncoders > 0 {
		info.encoders = make([]Encoder, raw.countEncoders)
		raw.encodersPtr = uint64(uintptr(unsafe.Pointer(&info.encoders[0])))
	}

	if err := dev.Ioctl(ioctlModeGetConnector, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	info.status = ConnectionStatus(raw.connection)
	info.kind = raw.kind
	info.kindID = raw.kindID
	info.mmWidth = raw.mmWidth
	info.mmHeight = raw.mmHeight
	info.currentEncoder = NewEncoder(raw.encoderID)
	// A hotplug between the two exchanges can shrink any of the arrays;
	// drop the slots the kernel did not fill.
	if int(raw.countModes) < len(info.modes) {
		info.modes = info.modes[:raw.countModes]
	}
	if int(raw.countEncoders) < len(info.encoders) {
		info.encoders = info.encoders[:raw.countEncoders]
	}
	if int(raw.countProps) < len(info.props) {
		info.props = info.props[:raw.countProps]
		info.propValues = info.propValues[:raw.countProps]
	}
	return info, nil
}
