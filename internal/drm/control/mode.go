package control

import (
	"bytes"
	"fmt"
)

// DisplayModeLen is the kernel's fixed length for mode name strings.
const DisplayModeLen = 32

// Mode type bits.
const (
	ModeTypePreferred uint32 = 1 << 3
	ModeTypeUserdef   uint32 = 1 << 5
	ModeTypeDriver    uint32 = 1 << 6
)

// Mode flag bits.
const (
	ModeFlagPHSync     uint32 = 1 << 0
	ModeFlagNHSync     uint32 = 1 << 1
	ModeFlagPVSync     uint32 = 1 << 2
	ModeFlagNVSync     uint32 = 1 << 3
	ModeFlagInterlace  uint32 = 1 << 4
	ModeFlagDoubleScan uint32 = 1 << 5
)

// ModeInfo is a display timing descriptor. The layout is bit-exact to the
// kernel's drm_mode_modeinfo record and is embedded as-is in mode-set
// requests; keep the field order and widths untouched.
type ModeInfo struct {
	Clock uint32

	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

	Vrefresh uint32

	Flags uint32
	Type  uint32
	Name  [DisplayModeLen]uint8
}

// ModeName returns the kernel's name for the mode, e.g. "1920x1080".
func (m ModeInfo) ModeName() string {
	name, _, _ := bytes.Cut(m.Name[:], []byte{0})
	return string(name)
}

// Size returns the active pixel area.
func (m ModeInfo) Size() (width, height uint16) {
	return m.Hdisplay, m.Vdisplay
}

// Preferred reports whether the connector marks this as its preferred mode.
func (m ModeInfo) Preferred() bool {
	return m.Type&ModeTypePreferred != 0
}

func (m ModeInfo) String() string {
	return fmt.Sprintf("%dx%d@%d", m.Hdisplay, m.Vdisplay, m.Vrefresh)
}
