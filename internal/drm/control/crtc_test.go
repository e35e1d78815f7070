package control

import (
	"errors"
	"testing"
	"unsafe"
)

func TestGetCRTCMapsKernelReply(t *testing.T) {
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeGetCRTC {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		raw := (*sysCrtc)(arg)
		if raw.id != 5 {
			t.Fatalf("queried crtc %d, want 5", raw.id)
		}
		raw.x, raw.y = 160, 90
		raw.fbID = 9
		raw.gammaSize = 256
		raw.modeValid = 1
		raw.mode.Hdisplay, raw.mode.Vdisplay = 1920, 1080
		raw.mode.Vrefresh = 60
		return nil
	}}

	info, err := GetCRTC(dev, NewCRTC(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Handle() != NewCRTC(5) {
		t.Errorf("handle %v, want crtc(5)", info.Handle())
	}
	if x, y := info.Position(); x != 160 || y != 90 {
		t.Errorf("position (%d,%d), want (160,90)", x, y)
	}
	if info.Framebuffer() != NewFramebuffer(9) {
		t.Errorf("framebuffer %v, want fb(9)", info.Framebuffer())
	}
	if info.GammaLength() != 256 {
		t.Errorf("gamma length %d, want 256", info.GammaLength())
	}
	mode, ok := info.Mode()
	if !ok || mode.String() != "1920x1080@60" {
		t.Errorf("mode %v ok=%v, want 1920x1080@60", mode, ok)
	}
}

func TestGetCRTCSnapshotsAreEqual(t *testing.T) {
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		raw := (*sysCrtc)(arg)
		raw.x, raw.y = 1, 2
		raw.fbID = 3
		raw.gammaSize = 256
		return nil
	}}

	// Two loads with no intervening mutation are field-for-field identical.
	a, err := GetCRTC(dev, NewCRTC(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GetCRTC(dev, NewCRTC(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("snapshots differ: %+v vs %+v", a, b)
	}
}

func TestGetCRTCPropagatesErrorWithoutPartialInfo(t *testing.T) {
	want := errors.New("ENOENT")
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		raw := (*sysCrtc)(arg)
		raw.fbID = 123 // written before failing; must not leak out
		return want
	}}

	info, err := GetCRTC(dev, NewCRTC(99))
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
	if info != (CRTCInfo{}) {
		t.Fatalf("partial info returned on failure: %+v", info)
	}
}

func TestSetCRTCWithoutMode(t *testing.T) {
	conns := []Connector{NewConnector(2), NewConnector(3)}
	var got sysCrtc
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeSetCRTC {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		got = *(*sysCrtc)(arg)
		// The connector list must reference the caller's backing array.
		if want := uint64(uintptr(unsafe.Pointer(&conns[0]))); got.setConnectorsPtr != want {
			t.Errorf("connector pointer %#x, want %#x", got.setConnectorsPtr, want)
		}
		ids := unsafe.Slice((*uint32)(unsafe.Pointer(uintptr(got.setConnectorsPtr))), got.countConnectors)
		if ids[0] != 2 || ids[1] != 3 {
			t.Errorf("connector ids %v, want [2 3]", ids)
		}
		return nil
	}}

	err := SetCRTC(dev, NewCRTC(5), NewFramebuffer(9), conns, 0, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.id != 5 || got.fbID != 9 {
		t.Errorf("crtc_id=%d fb_id=%d, want 5 and 9", got.id, got.fbID)
	}
	if got.countConnectors != 2 {
		t.Errorf("count_connectors=%d, want 2", got.countConnectors)
	}
	if got.modeValid != 0 {
		t.Errorf("mode_valid=%d, want 0", got.modeValid)
	}
	if got.mode != (ModeInfo{}) {
		t.Errorf("mode block not zero: %+v", got.mode)
	}
}

func TestSetCRTCWithMode(t *testing.T) {
	mode := ModeInfo{
		Clock:    148500,
		Hdisplay: 1920, HsyncStart: 2008, HsyncEnd: 2052, Htotal: 2200,
		Vdisplay: 1080, VsyncStart: 1084, VsyncEnd: 1089, Vtotal: 1125,
		Vrefresh: 60,
	}
	copy(mode.Name[:], "1920x1080")

	var got sysCrtc
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		got = *(*sysCrtc)(arg)
		return nil
	}}

	conns := []Connector{NewConnector(2)}
	if err := SetCRTC(dev, NewCRTC(1), NewFramebuffer(4), conns, 0, 0, &mode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.modeValid != 1 {
		t.Fatalf("mode_valid=%d, want 1", got.modeValid)
	}
	if got.mode != mode {
		t.Fatalf("timing block %+v does not match supplied mode", got.mode)
	}
}

func TestSetCRTCDetachAll(t *testing.T) {
	var got sysCrtc
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		got = *(*sysCrtc)(arg)
		return nil
	}}

	// Empty connector list and no mode is a valid full detach.
	if err := SetCRTC(dev, NewCRTC(5), 0, nil, 0, 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.countConnectors != 0 || got.setConnectorsPtr != 0 {
		t.Errorf("detach carried connectors: count=%d ptr=%#x",
			got.countConnectors, got.setConnectorsPtr)
	}
	if got.fbID != 0 || got.modeValid != 0 {
		t.Errorf("detach carried state: fb=%d mode_valid=%d", got.fbID, got.modeValid)
	}
}

func TestSetCRTCPropagatesError(t *testing.T) {
	want := errors.New("EINVAL")
	dev := &fakeDevice{handle: func(uint32, unsafe.Pointer) error { return want }}

	err := SetCRTC(dev, NewCRTC(1), NewFramebuffer(2), []Connector{NewConnector(3)}, 0, 0, nil)
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}
