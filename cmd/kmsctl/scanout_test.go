package main

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/control"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// Wire mirrors of the kernel records, to inspect what the fake device is
// handed without reaching into other packages.
type wireCreateDumb struct {
	height, width uint32
	bpp           uint32
	flags         uint32
	handle        uint32
	pitch         uint32
	size          uint64
}

type wireFBCmd struct {
	fbID          uint32
	width, height uint32
	pitch         uint32
	bpp           uint32
	depth         uint32
	handle        uint32
}

type wireDestroyDumb struct {
	handle uint32
}

var (
	codeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(wireCreateDumb{})), drm.IOCTLBase, 0xb2)
	codeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(wireDestroyDumb{})), drm.IOCTLBase, 0xb4)
	codeAddFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(wireFBCmd{})), drm.IOCTLBase, 0xae)
	codeRmFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(uint32(0))), drm.IOCTLBase, 0xaf)
)

// fakeDevice implements drm.Device over a test-provided handler.
type fakeDevice struct {
	codes  []uint32
	handle func(code uint32, arg unsafe.Pointer) error
}

func (f *fakeDevice) Fd() uintptr { return 0 }

func (f *fakeDevice) Ioctl(code uint32, arg unsafe.Pointer) error {
	f.codes = append(f.codes, code)
	if f.handle == nil {
		return nil
	}
	return f.handle(code, arg)
}

func TestCreateScanoutFBCleanupRemovesBoth(t *testing.T) {
	dev := &fakeDevice{}
	dev.handle = func(code uint32, arg unsafe.Pointer) error {
		switch code {
		case codeCreateDumb:
			raw := (*wireCreateDumb)(arg)
			if raw.width != 1920 || raw.height != 1080 || raw.bpp != 32 {
				t.Fatalf("create dumb %dx%d@%d, want 1920x1080@32",
					raw.width, raw.height, raw.bpp)
			}
			raw.handle = 7
			raw.pitch = 1920 * 4
			raw.size = 1920 * 4 * 1080
		case codeAddFB:
			raw := (*wireFBCmd)(arg)
			if raw.handle != 7 || raw.pitch != 1920*4 {
				t.Fatalf("addfb bo=%d pitch=%d, want bo=7 pitch=%d",
					raw.handle, raw.pitch, 1920*4)
			}
			if raw.depth != 24 || raw.bpp != 32 {
				t.Fatalf("addfb depth=%d bpp=%d, want 24/32", raw.depth, raw.bpp)
			}
			raw.fbID = 9
		case codeRmFB:
			if id := *(*uint32)(arg); id != 9 {
				t.Fatalf("rmfb id %d, want 9", id)
			}
		case codeDestroyDumb:
			raw := (*wireDestroyDumb)(arg)
			if raw.handle != 7 {
				t.Fatalf("destroy dumb handle %d, want 7", raw.handle)
			}
		default:
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		return nil
	}

	fb, cleanup, err := createScanoutFB(dev, 1920, 1080, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb != control.NewFramebuffer(9) {
		t.Fatalf("fb %v, want fb(9)", fb)
	}
	if len(dev.codes) != 2 {
		t.Fatalf("expected 2 exchanges before cleanup, got %d", len(dev.codes))
	}

	// A rejected commit hands the framebuffer back through cleanup; both
	// the fb and its dumb buffer must be released.
	cleanup()
	want := []uint32{codeCreateDumb, codeAddFB, codeRmFB, codeDestroyDumb}
	if len(dev.codes) != len(want) {
		t.Fatalf("expected %d exchanges, got %d", len(want), len(dev.codes))
	}
	for i, code := range want {
		if dev.codes[i] != code {
			t.Fatalf("exchange %d code %#x, want %#x", i, dev.codes[i], code)
		}
	}
}

func TestCreateScanoutFBDestroysBufferOnAddFBFailure(t *testing.T) {
	boom := errors.New("boom")
	dev := &fakeDevice{}
	dev.handle = func(code uint32, arg unsafe.Pointer) error {
		switch code {
		case codeCreateDumb:
			raw := (*wireCreateDumb)(arg)
			raw.handle = 7
			raw.pitch = 640 * 2
		case codeAddFB:
			return boom
		}
		return nil
	}

	if _, _, err := createScanoutFB(dev, 640, 480, 16); !errors.Is(err, boom) {
		t.Fatalf("error %v, want pass-through", err)
	}
	last := dev.codes[len(dev.codes)-1]
	if last != codeDestroyDumb {
		t.Fatalf("last exchange %#x, want destroy dumb", last)
	}
}
