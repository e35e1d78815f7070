// Package vt switches the controlling virtual terminal between text and
// graphics mode, so scanout demos don't fight the console for the display.
package vt

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// <linux/kd.h>; 0x4B is 'K', kept clear of termios and vt ioctls.
const (
	kdSetMode = 0x4B3A
	kdGetMode = 0x4B3B

	kdText     = 0x00
	kdGraphics = 0x01
)

// TTY wraps an open terminal device.
type TTY struct {
	file *os.File
}

// OpenCurrent opens the process's controlling terminal. Requires procfs.
func OpenCurrent() (*TTY, error) {
	name, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return nil, fmt.Errorf("resolve controlling tty: %w", err)
	}
	return Open(name)
}

// Open opens a terminal device by path.
func Open(name string) (*TTY, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}
	return &TTY{file: f}, nil
}

// Fd returns the terminal's file descriptor.
func (t *TTY) Fd() uintptr { return t.file.Fd() }

// GraphicsMode stops the console from drawing on the display.
func (t *TTY) GraphicsMode() error { return t.setMode(kdGraphics) }

// TextMode returns the console to normal text output.
func (t *TTY) TextMode() error { return t.setMode(kdText) }

func (t *TTY) setMode(mode int) error {
	if err := unix.IoctlSetInt(int(t.file.Fd()), kdSetMode, mode); err != nil {
		return fmt.Errorf("KDSETMODE: %w", err)
	}
	return nil
}

// InGraphicsMode reports whether the terminal is currently in graphics mode.
func (t *TTY) InGraphicsMode() (bool, error) {
	mode, err := unix.IoctlGetInt(int(t.file.Fd()), kdGetMode)
	if err != nil {
		return false, fmt.Errorf("KDGETMODE: %w", err)
	}
	return mode == kdGraphics, nil
}

// Close closes the terminal device.
func (t *TTY) Close() error { return t.file.Close() }
