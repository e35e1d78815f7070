package buffer

import (
	"errors"
	"testing"
	"unsafe"
)

type fakeDevice struct {
	handle func(code uint32, arg unsafe.Pointer) error
}

func (f *fakeDevice) Fd() uintptr { return 0 }

func (f *fakeDevice) Ioctl(code uint32, arg unsafe.Pointer) error {
	return f.handle(code, arg)
}

func TestObjectRawRoundTrip(t *testing.T) {
	for _, raw := range []uint32{0, 1, 77, 0xffffffff} {
		if got := NewObject(raw).Raw(); got != raw {
			t.Errorf("round trip of %d gave %d", raw, got)
		}
	}
}

func TestCreateDumbMapsKernelReply(t *testing.T) {
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeCreateDumb {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		req := (*sysCreateDumb)(arg)
		if req.width != 640 || req.height != 480 || req.bpp != 32 {
			t.Fatalf("request carried %dx%d@%d", req.width, req.height, req.bpp)
		}
		req.handle = 3
		req.pitch = 640 * 4
		req.size = 640 * 480 * 4
		return nil
	}}

	d, err := CreateDumb(dev, 640, 480, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Handle != 3 || d.Pitch != 2560 || d.Size != 640*480*4 {
		t.Fatalf("unexpected dumb buffer: %+v", d)
	}
}

func TestCreateDumbPropagatesError(t *testing.T) {
	want := errors.New("no memory")
	dev := &fakeDevice{handle: func(uint32, unsafe.Pointer) error { return want }}

	if _, err := CreateDumb(dev, 1, 1, 32); !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestDestroyCarriesHandle(t *testing.T) {
	var destroyed uint32
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeDestroyDumb {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		destroyed = (*sysDestroyDumb)(arg).handle
		return nil
	}}

	d := &Dumb{Handle: 9}
	if err := d.Destroy(dev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if destroyed != 9 {
		t.Fatalf("destroyed handle %d, want 9", destroyed)
	}
}

func TestMapOffsetForwardsKernelOffset(t *testing.T) {
	dev := &fakeDevice{handle: func(code uint32, arg unsafe.Pointer) error {
		if code != ioctlModeMapDumb {
			t.Fatalf("unexpected ioctl code %#x", code)
		}
		req := (*sysMapDumb)(arg)
		if req.handle != 5 {
			t.Fatalf("mapped handle %d, want 5", req.handle)
		}
		req.offset = 0x10000
		return nil
	}}

	off, err := MapOffset(dev, NewObject(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off != 0x10000 {
		t.Fatalf("offset %#x, want 0x10000", off)
	}
}
