// Package ioctl builds Linux ioctl request codes and issues the calls.
//
// DRM requests all use the standard _IOC encoding: two direction bits, a
// 14-bit argument size, an 8-bit magic ('d' for DRM) and an 8-bit request
// number. Codes are computed from the Go struct sizes, so a record layout
// mistake shows up as a mismatched code rather than silent corruption.
package ioctl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Direction bits of an ioctl code, from the kernel's point of view.
const (
	None  = 0x0
	Write = 0x1
	Read  = 0x2
)

const (
	nrBits   = 8
	typeBits = 8
	sizeBits = 14

	nrShift   = 0
	typeShift = nrShift + nrBits
	sizeShift = typeShift + typeBits
	dirShift  = sizeShift + sizeBits
)

// NewCode assembles an ioctl request code. dir is a combination of Read and
// Write, size the byte size of the argument struct, base the magic character
// and nr the request number within that magic.
func NewCode(dir, size uint16, base, nr uint8) uint32 {
	return uint32(dir)<<dirShift |
		uint32(size)<<sizeShift |
		uint32(base)<<typeShift |
		uint32(nr)<<nrShift
}

// Do issues a single blocking ioctl against fd. arg points at the request
// record; the kernel may both read and write it in place. A nonzero errno
// is returned as unix.Errno, untouched.
func Do(fd uintptr, code uint32, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(code), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
