package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/buffer"
	"github.com/drmkit/kmsctl/internal/drm/control"
)

func runSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	connID := fs.Uint("connector", 0, "connector id to drive")
	crtcID := fs.Uint("crtc", 0, "CRTC id (default: picked via the encoder chain)")
	modeStr := fs.String("mode", "", "mode as WxH or WxH@Hz (default: preferred)")
	posX := fs.Uint("x", 0, "scanout x offset into the framebuffer")
	posY := fs.Uint("y", 0, "scanout y offset into the framebuffer")
	detach := fs.Bool("detach", false, "detach the CRTC from all output")
	interactive := fs.Bool("interactive", false, "pick connector and mode interactively")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := newLogger(cfg)

	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	if err := drm.SetMaster(card); err != nil {
		logger.Warn("could not acquire DRM master; commits may be rejected", "err", err)
	} else {
		defer drm.DropMaster(card)
	}

	if *detach {
		if *crtcID == 0 {
			fmt.Fprintln(os.Stderr, "set -detach requires -crtc")
			return 2
		}
		crtc := control.NewCRTC(uint32(*crtcID))
		// Empty connector list, no framebuffer, no mode: full detach.
		if err := control.SetCRTC(card, crtc, 0, nil, 0, 0, nil); err != nil {
			fmt.Fprintf(os.Stderr, "detach %v: %v\n", crtc, err)
			return 1
		}
		logger.Info("crtc detached", "crtc", crtc.Raw())
		return 0
	}

	res, err := control.GetResources(card)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enumerate resources: %v\n", err)
		return 1
	}

	conn := control.NewConnector(uint32(*connID))
	if *interactive {
		conn, err = chooseConnector(card, res)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else if conn == 0 {
		fmt.Fprintln(os.Stderr, "set requires -connector (or -interactive)")
		return 2
	}

	connInfo, err := control.GetConnector(card, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", conn, err)
		return 1
	}
	if connInfo.Status() != control.Connected {
		logger.Warn("connector reports no display", "connector", connInfo.Name(),
			"status", connInfo.Status().String())
	}

	var mode control.ModeInfo
	switch {
	case *interactive:
		mode, err = chooseMode(connInfo)
	default:
		mode, err = resolveMode(connInfo, *modeStr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	crtc := control.NewCRTC(uint32(*crtcID))
	if crtc == 0 {
		crtc, err = pickCRTC(card, res, connInfo)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	// On success the framebuffer must outlive the commit; removing it
	// would disable the CRTC again. The kernel reclaims it when the
	// device closes.
	fb, cleanup, err := createScanoutFB(card, uint32(mode.Hdisplay), uint32(mode.Vdisplay), cfg.Pattern.BPP)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create framebuffer: %v\n", err)
		return 1
	}

	logger.Info("committing mode-set",
		"crtc", crtc.Raw(), "connector", connInfo.Name(), "mode", mode.String(),
		"fb", fb.Raw(), "x", *posX, "y", *posY)

	conns := []control.Connector{conn}
	if err := control.SetCRTC(card, crtc, fb, conns, uint32(*posX), uint32(*posY), &mode); err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "mode-set rejected: %v\n", err)
		return 1
	}
	fmt.Printf("%v now drives %s at %s\n", crtc, connInfo.Name(), mode)
	return 0
}

// resolveMode picks the timing to commit: the requested WxH[@Hz] if the
// display advertises it, otherwise the preferred mode.
func resolveMode(info *control.ConnectorInfo, spec string) (control.ModeInfo, error) {
	if spec == "" {
		m, ok := info.PreferredMode()
		if !ok {
			return control.ModeInfo{}, fmt.Errorf("%s advertises no modes", info.Name())
		}
		return m, nil
	}

	w, h, hz, err := parseModeSpec(spec)
	if err != nil {
		return control.ModeInfo{}, err
	}
	for _, m := range info.Modes() {
		if m.Hdisplay != w || m.Vdisplay != h {
			continue
		}
		if hz != 0 && m.Vrefresh != hz {
			continue
		}
		return m, nil
	}
	return control.ModeInfo{}, fmt.Errorf("%s does not advertise %s", info.Name(), spec)
}

// parseModeSpec parses "1920x1080" or "1920x1080@60".
func parseModeSpec(spec string) (w, h uint16, hz uint32, err error) {
	size := spec
	if at := strings.IndexByte(spec, '@'); at >= 0 {
		size = spec[:at]
		v, err := strconv.ParseUint(spec[at+1:], 10, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid refresh rate in %q", spec)
		}
		hz = uint32(v)
	}
	ws, hs, ok := strings.Cut(size, "x")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid mode %q, want WxH or WxH@Hz", spec)
	}
	wv, err1 := strconv.ParseUint(ws, 10, 16)
	hv, err2 := strconv.ParseUint(hs, 10, 16)
	if err1 != nil || err2 != nil || wv == 0 || hv == 0 {
		return 0, 0, 0, fmt.Errorf("invalid mode %q, want WxH or WxH@Hz", spec)
	}
	return uint16(wv), uint16(hv), hz, nil
}

// pickCRTC walks the connector's encoder chain for a CRTC that can drive
// it, preferring the encoder's current CRTC.
func pickCRTC(dev drm.Device, res *control.Resources, info *control.ConnectorInfo) (control.CRTC, error) {
	if enc := info.CurrentEncoder(); enc != 0 {
		encInfo, err := control.GetEncoder(dev, enc)
		if err == nil && encInfo.CRTC() != 0 {
			return encInfo.CRTC(), nil
		}
	}
	for _, enc := range info.Encoders() {
		encInfo, err := control.GetEncoder(dev, enc)
		if err != nil {
			continue
		}
		for i, crtc := range res.CRTCs {
			if encInfo.PossibleCRTCs()&(1<<uint(i)) != 0 {
				return crtc, nil
			}
		}
	}
	return 0, fmt.Errorf("no CRTC can drive %s", info.Name())
}

// createScanoutFB allocates a dumb buffer sized for the mode and registers
// it as a framebuffer. The cleanup removes both.
func createScanoutFB(dev drm.Device, width, height, bpp uint32) (control.Framebuffer, func(), error) {
	dumb, err := buffer.CreateDumb(dev, width, height, bpp)
	if err != nil {
		return 0, nil, err
	}
	depth := uint8(24)
	if bpp == 16 {
		depth = 16
	}
	fb, err := control.AddFB(dev, width, height, depth, uint8(bpp), dumb.Pitch, dumb.Handle)
	if err != nil {
		dumb.Destroy(dev)
		return 0, nil, err
	}
	cleanup := func() {
		control.RmFB(dev, fb)
		dumb.Destroy(dev)
	}
	return fb, cleanup, nil
}

// chooseConnector asks interactively which connected output to drive.
func chooseConnector(card *drm.Card, res *control.Resources) (control.Connector, error) {
	var opts []huh.Option[control.Connector]
	for _, c := range res.Connectors {
		info, err := control.GetConnector(card, c)
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%s (%s)", info.Name(), info.Status())
		opts = append(opts, huh.NewOption(label, c))
	}
	if len(opts) == 0 {
		return 0, fmt.Errorf("no connectors found")
	}

	var choice control.Connector
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[control.Connector]().
			Title("Connector").
			Options(opts...).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		return 0, err
	}
	return choice, nil
}

// chooseMode asks interactively which advertised mode to commit.
func chooseMode(info *control.ConnectorInfo) (control.ModeInfo, error) {
	modes := info.Modes()
	if len(modes) == 0 {
		return control.ModeInfo{}, fmt.Errorf("%s advertises no modes", info.Name())
	}

	var opts []huh.Option[int]
	for i, m := range modes {
		label := m.String()
		if m.Preferred() {
			label += " (preferred)"
		}
		opts = append(opts, huh.NewOption(label, i))
	}

	var idx int
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Mode").
			Options(opts...).
			Value(&idx),
	))
	if err := form.Run(); err != nil {
		return control.ModeInfo{}, err
	}
	return modes[idx], nil
}
