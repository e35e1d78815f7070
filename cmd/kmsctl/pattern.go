package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/buffer"
	"github.com/drmkit/kmsctl/internal/drm/control"
	"github.com/drmkit/kmsctl/internal/vt"
)

// savedCRTC captures enough of a CRTC's state to put it back after the
// pattern is torn down.
type savedCRTC struct {
	crtc       control.CRTC
	info       control.CRTCInfo
	connectors []control.Connector
}

func runPattern(args []string) int {
	fs := flag.NewFlagSet("pattern", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	seconds := fs.Int("seconds", 0, "how long to show the pattern (default from config)")
	keepVT := fs.Bool("keep-vt", false, "do not switch the VT to graphics mode")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := newLogger(cfg)

	hold := cfg.Pattern.Seconds
	if *seconds > 0 {
		hold = *seconds
	}

	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	if ok, err := drm.HasDumbBuffer(card); err != nil || !ok {
		fmt.Fprintln(os.Stderr, "device does not support dumb buffers")
		return 1
	}
	if err := drm.SetMaster(card); err != nil {
		logger.Warn("could not acquire DRM master", "err", err)
	} else {
		defer drm.DropMaster(card)
	}

	// Flip the VT out of text mode so the console does not scribble over
	// the pattern. Skipped when stdin is not a terminal.
	if !*keepVT && term.IsTerminal(int(os.Stdin.Fd())) {
		tty, err := vt.OpenCurrent()
		if err == nil {
			if err := tty.GraphicsMode(); err == nil {
				defer tty.TextMode()
			}
			defer tty.Close()
		}
	}

	res, err := control.GetResources(card)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enumerate resources: %v\n", err)
		return 1
	}

	var saved []savedCRTC
	shown := 0
	for _, connID := range res.Connectors {
		info, err := control.GetConnector(card, connID)
		if err != nil || info.Status() != control.Connected {
			continue
		}
		mode, ok := info.PreferredMode()
		if !ok {
			continue
		}
		crtc, err := pickCRTC(card, res, info)
		if err != nil {
			logger.Warn("skipping output", "connector", info.Name(), "err", err)
			continue
		}

		prev, err := control.GetCRTC(card, crtc)
		if err == nil {
			saved = append(saved, savedCRTC{crtc: crtc, info: prev,
				connectors: []control.Connector{connID}})
		}

		if err := showPattern(card, crtc, connID, mode); err != nil {
			logger.Warn("pattern failed", "connector", info.Name(), "err", err)
			continue
		}
		logger.Info("pattern up", "connector", info.Name(), "mode", mode.String())
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(os.Stderr, "no connected outputs")
		return 1
	}

	time.Sleep(time.Duration(hold) * time.Second)

	for _, s := range saved {
		var prevMode *control.ModeInfo
		if m, ok := s.info.Mode(); ok {
			prevMode = &m
		}
		x, y := s.info.Position()
		if err := control.SetCRTC(card, s.crtc, s.info.Framebuffer(),
			s.connectors, x, y, prevMode); err != nil {
			logger.Warn("could not restore CRTC", "crtc", s.crtc.Raw(), "err", err)
		}
	}
	return 0
}

// showPattern commits a color-bar framebuffer on one output. The buffer
// stays alive for the life of the process; the kernel releases it when the
// file description closes.
func showPattern(card *drm.Card, crtc control.CRTC, conn control.Connector,
	mode control.ModeInfo) error {

	w, h := uint32(mode.Hdisplay), uint32(mode.Vdisplay)
	dumb, err := buffer.CreateDumb(card, w, h, 32)
	if err != nil {
		return err
	}
	data, err := dumb.Map(card)
	if err != nil {
		dumb.Destroy(card)
		return err
	}
	drawColorBars(data, w, h, dumb.Pitch)
	buffer.Unmap(data)

	fb, err := control.AddFB(card, w, h, 24, 32, dumb.Pitch, dumb.Handle)
	if err != nil {
		dumb.Destroy(card)
		return err
	}
	return control.SetCRTC(card, crtc, fb, []control.Connector{conn}, 0, 0, &mode)
}

// drawColorBars paints the classic eight-bar test card in XRGB8888.
func drawColorBars(data []byte, width, height, pitch uint32) {
	bars := []uint32{
		0x00ffffff, // white
		0x00ffff00, // yellow
		0x0000ffff, // cyan
		0x0000ff00, // green
		0x00ff00ff, // magenta
		0x00ff0000, // red
		0x000000ff, // blue
		0x00000000, // black
	}
	barWidth := width / uint32(len(bars))
	if barWidth == 0 {
		barWidth = 1
	}
	for row := uint32(0); row < height; row++ {
		line := data[row*pitch:]
		for col := uint32(0); col < width; col++ {
			bar := col / barWidth
			if bar >= uint32(len(bars)) {
				bar = uint32(len(bars)) - 1
			}
			binary.LittleEndian.PutUint32(line[col*4:], bars[bar])
		}
	}
}
