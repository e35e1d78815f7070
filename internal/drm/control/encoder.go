package control

import (
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

var encoderKindNames = []string{
	"NONE", "DAC", "TMDS", "LVDS", "TVDAC", "VIRTUAL", "DSI", "DPMST", "DPI",
}

// EncoderKindName names an encoder kind, e.g. "TMDS".
func EncoderKindName(kind uint32) string {
	if int(kind) < len(encoderKindNames) {
		return encoderKindNames[kind]
	}
	return "NONE"
}

type sysGetEncoder struct {
	id   uint32
	kind uint32

	crtcID uint32

	possibleCrtcs  uint32
	possibleClones uint32
}

var ioctlModeGetEncoder = ioctl.NewCode(ioctl.Read|ioctl.Write,
	uint16(unsafe.Sizeof(sysGetEncoder{})), drm.IOCTLBase, 0xa6)

// EncoderInfo is an immutable snapshot of an encoder.
type EncoderInfo struct {
	handle         Encoder
	kind           uint32
	crtc           CRTC
	possibleCRTCs  uint32
	possibleClones uint32
}

// Handle returns the encoder this snapshot describes.
func (i EncoderInfo) Handle() Encoder { return i.handle }

// Kind returns the raw encoder kind.
func (i EncoderInfo) Kind() uint32 { return i.kind }

// CRTC returns the CRTC currently feeding this encoder, 0 if idle.
func (i EncoderInfo) CRTC() CRTC { return i.crtc }

// PossibleCRTCs is a bitmask over the card's CRTC list (bit n set means the
// n-th enumerated CRTC can drive this encoder).
func (i EncoderInfo) PossibleCRTCs() uint32 { return i.possibleCRTCs }

// PossibleClones is a bitmask of encoders this one can share a CRTC with.
func (i EncoderInfo) PossibleClones() uint32 { return i.possibleClones }

// GetEncoder loads a snapshot of an encoder.
func GetEncoder(dev drm.Device, enc Encoder) (EncoderInfo, error) {
	var raw sysGetEncoder
	raw.id = enc.Raw()
	if err := dev.Ioctl(ioctlModeGetEncoder, unsafe.Pointer(&raw)); err != nil {
		return EncoderInfo{}, err
	}
	return EncoderInfo{
		handle:         enc,
		kind:           raw.kind,
		crtc:           NewCRTC(raw.crtcID),
		possibleCRTCs:  raw.possibleCrtcs,
		possibleClones: raw.possibleClones,
	}, nil
}
