package control

import (
	"errors"
	"testing"
	"unsafe"
)

func TestGetPlaneTwoPhaseFill(t *testing.T) {
	const (
		fourccXRGB = 0x34325258 // 'XR24'
		fourccARGB = 0x34325241 // 'AR24'
	)
	calls := 0
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeGetPlane {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		raw := (*sysGetPlane)(arg)
		if raw.id != 31 {
			t.Fatalf("plane id %d, want 31", raw.id)
		}
		calls++
		switch calls {
		case 1:
			raw.countFormatTypes = 2
		case 2:
			if raw.formatTypePtr == 0 {
				t.Fatal("second exchange missing format buffer")
			}
			fillIDs(raw.formatTypePtr, fourccXRGB, fourccARGB)
			raw.countFormatTypes = 2
			raw.crtcID = 21
			raw.fbID = 9
			raw.possibleCrtcs = 0b101
			raw.gammaSize = 256
		}
		return nil
	}}

	info, err := GetPlane(dev, NewPlane(31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 exchanges, got %d", calls)
	}
	if info.Handle() != NewPlane(31) {
		t.Errorf("handle %v, want plane(31)", info.Handle())
	}
	if info.CRTC() != NewCRTC(21) || info.Framebuffer() != NewFramebuffer(9) {
		t.Errorf("binding %v/%v, want crtc(21)/fb(9)", info.CRTC(), info.Framebuffer())
	}
	if info.PossibleCRTCs() != 0b101 {
		t.Errorf("possible CRTCs %#b, want 0b101", info.PossibleCRTCs())
	}
	if info.GammaLength() != 256 {
		t.Errorf("gamma length %d, want 256", info.GammaLength())
	}
	formats := info.Formats()
	if len(formats) != 2 || formats[0] != fourccXRGB || formats[1] != fourccARGB {
		t.Errorf("formats %#x, want [XR24 AR24]", formats)
	}
}

func TestGetPlaneError(t *testing.T) {
	boom := errors.New("boom")
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		return boom
	}}
	if _, err := GetPlane(dev, NewPlane(1)); !errors.Is(err, boom) {
		t.Fatalf("error %v, want pass-through", err)
	}
}
