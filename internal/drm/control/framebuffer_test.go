package control

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm/buffer"
)

func TestAddFBReturnsKernelHandle(t *testing.T) {
	var got sysFBCmd
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeAddFB {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		req := (*sysFBCmd)(arg)
		got = *req
		req.fbID = 9
		return nil
	}}

	fb, err := AddFB(dev, 1920, 1080, 24, 32, 1920*4, buffer.NewObject(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb != NewFramebuffer(9) {
		t.Fatalf("framebuffer %v, want fb(9)", fb)
	}
	if got.width != 1920 || got.height != 1080 || got.depth != 24 || got.bpp != 32 {
		t.Errorf("geometry %dx%d depth=%d bpp=%d unexpected",
			got.width, got.height, got.depth, got.bpp)
	}
	if got.pitch != 1920*4 || got.handle != 3 {
		t.Errorf("pitch=%d handle=%d, want 7680 and 3", got.pitch, got.handle)
	}
}

func TestRmFBCarriesRawID(t *testing.T) {
	var removed uint32
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeRmFB {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		removed = *(*uint32)(arg)
		return nil
	}}

	if err := RmFB(dev, NewFramebuffer(9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 9 {
		t.Fatalf("removed id %d, want 9", removed)
	}
}

func TestAddFBPropagatesError(t *testing.T) {
	want := errors.New("EINVAL")
	dev := &fakeDevice{handle: func(uint32, unsafe.Pointer) error { return want }}

	if _, err := AddFB(dev, 1, 1, 24, 32, 4, buffer.NewObject(1)); !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestGetEncoderMapsReply(t *testing.T) {
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeGetEncoder {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		raw := (*sysGetEncoder)(arg)
		if raw.id != 41 {
			t.Fatalf("queried encoder %d, want 41", raw.id)
		}
		raw.kind = 2 // TMDS
		raw.crtcID = 21
		raw.possibleCrtcs = 0b11
		return nil
	}}

	info, err := GetEncoder(dev, NewEncoder(41))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.CRTC() != NewCRTC(21) {
		t.Errorf("crtc %v, want crtc(21)", info.CRTC())
	}
	if EncoderKindName(info.Kind()) != "TMDS" {
		t.Errorf("kind %d, want TMDS", info.Kind())
	}
	if info.PossibleCRTCs() != 0b11 {
		t.Errorf("possible crtcs %#b, want 0b11", info.PossibleCRTCs())
	}
}
