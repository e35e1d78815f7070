package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/buffer"
	"github.com/drmkit/kmsctl/internal/drm/control"
)

func runCursor(args []string) int {
	if len(args) < 1 {
		printCursorUsage(os.Stderr)
		return 2
	}
	switch args[0] {
	case "set":
		return runCursorSet(args[1:])
	case "move":
		return runCursorMove(args[1:])
	case "clear":
		return runCursorClear(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown cursor command: %s\n\n", args[0])
		printCursorUsage(os.Stderr)
		return 2
	}
}

func printCursorUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: kmsctl cursor <set|move|clear> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set   -crtc N [-size WxH] [-hot X,Y]   Attach a cursor image to a CRTC")
	fmt.Fprintln(w, "  move  -crtc N -to X,Y      Move the cursor on a CRTC")
	fmt.Fprintln(w, "  clear -crtc N              Detach the cursor from a CRTC")
}

func runCursorSet(args []string) int {
	fs := flag.NewFlagSet("cursor set", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	crtcID := fs.Uint("crtc", 0, "CRTC id")
	size := fs.String("size", "", "cursor image size as WxH (default from config)")
	hot := fs.String("hot", "", "hotspot as X,Y (uses the cursor2 request)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := newLogger(cfg)
	if *crtcID == 0 {
		fmt.Fprintln(os.Stderr, "cursor set requires -crtc")
		return 2
	}

	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	w, h := cfg.Cursor.Width, cfg.Cursor.Height
	if *size != "" {
		w, h, err = parseSize(*size)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	dumb, err := buffer.CreateDumb(card, w, h, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "allocate cursor buffer: %v\n", err)
		return 1
	}
	defer dumb.Destroy(card)

	if err := drawCursorImage(card, dumb); err != nil {
		fmt.Fprintf(os.Stderr, "draw cursor: %v\n", err)
		return 1
	}

	crtc := control.NewCRTC(uint32(*crtcID))
	if *hot != "" {
		hx, hy, err := parsePoint(*hot)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		err = control.SetCursor2(card, crtc, dumb.Handle, w, h, hx, hy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "attach cursor: %v\n", err)
			return 1
		}
		logger.Info("cursor attached", "crtc", crtc.Raw(), "size",
			fmt.Sprintf("%dx%d", w, h), "hotspot", *hot)
		return 0
	}

	if err := control.SetCursor(card, crtc, dumb.Handle, w, h); err != nil {
		fmt.Fprintf(os.Stderr, "attach cursor: %v\n", err)
		return 1
	}
	logger.Info("cursor attached", "crtc", crtc.Raw(), "size",
		fmt.Sprintf("%dx%d", w, h))
	return 0
}

func runCursorMove(args []string) int {
	fs := flag.NewFlagSet("cursor move", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	crtcID := fs.Uint("crtc", 0, "CRTC id")
	to := fs.String("to", "", "position as X,Y")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *crtcID == 0 || *to == "" {
		fmt.Fprintln(os.Stderr, "cursor move requires -crtc and -to")
		return 2
	}
	x, y, err := parsePoint(*to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	crtc := control.NewCRTC(uint32(*crtcID))
	if err := control.MoveCursor(card, crtc, x, y); err != nil {
		fmt.Fprintf(os.Stderr, "move cursor: %v\n", err)
		return 1
	}
	return 0
}

func runCursorClear(args []string) int {
	fs := flag.NewFlagSet("cursor clear", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	crtcID := fs.Uint("crtc", 0, "CRTC id")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *crtcID == 0 {
		fmt.Fprintln(os.Stderr, "cursor clear requires -crtc")
		return 2
	}

	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	crtc := control.NewCRTC(uint32(*crtcID))
	// A zero buffer object detaches the cursor.
	if err := control.SetCursor(card, crtc, 0, 0, 0); err != nil {
		fmt.Fprintf(os.Stderr, "clear cursor: %v\n", err)
		return 1
	}
	return 0
}

// drawCursorImage paints an ARGB8888 crosshair: opaque white arms on a
// transparent background, so the cursor is visible on any content below.
func drawCursorImage(dev drm.Device, dumb *buffer.Dumb) error {
	data, err := dumb.Map(dev)
	if err != nil {
		return err
	}
	defer buffer.Unmap(data)

	const (
		transparent = 0x00000000
		white       = 0xffffffff
	)
	midX, midY := dumb.Width/2, dumb.Height/2
	for row := uint32(0); row < dumb.Height; row++ {
		line := data[row*dumb.Pitch:]
		for col := uint32(0); col < dumb.Width; col++ {
			px := uint32(transparent)
			if row == midY || col == midX {
				px = white
			}
			binary.LittleEndian.PutUint32(line[col*4:], px)
		}
	}
	return nil
}

// parseSize parses "WxH" into pixel dimensions.
func parseSize(s string) (w, h uint32, err error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	wv, err1 := strconv.ParseUint(ws, 10, 32)
	hv, err2 := strconv.ParseUint(hs, 10, 32)
	if err1 != nil || err2 != nil || wv == 0 || hv == 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	return uint32(wv), uint32(hv), nil
}

// parsePoint parses "X,Y" with optional sign on either coordinate.
func parsePoint(s string) (x, y int32, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q, want X,Y", s)
	}
	xv, err1 := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
	yv, err2 := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("invalid point %q, want X,Y", s)
	}
	return int32(xv), int32(yv), nil
}
