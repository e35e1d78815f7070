package control

import "unsafe"

// fakeDevice implements drm.Device over a test-provided handler. The handler
// sees the exact record each operation emits and may mutate it the way the
// kernel would.
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
