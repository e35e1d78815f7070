package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/drmkit/kmsctl/internal/drm/control"
)

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kmsctl info <crtc-id>")
		return 2
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid CRTC id %q\n", fs.Arg(0))
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	crtc := control.NewCRTC(uint32(id))
	info, err := control.GetCRTC(card, crtc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", crtc, err)
		return 1
	}

	x, y := info.Position()
	fmt.Printf("%v\n", info.Handle())
	fmt.Printf("  position:     %d,%d\n", x, y)
	if info.Framebuffer() != 0 {
		fmt.Printf("  framebuffer:  %v\n", info.Framebuffer())
	} else {
		fmt.Printf("  framebuffer:  none\n")
	}
	fmt.Printf("  gamma length: %d\n", info.GammaLength())
	if m, ok := info.Mode(); ok {
		fmt.Printf("  mode:         %s (%s, clock %d)\n", m, m.ModeName(), m.Clock)
	} else {
		fmt.Printf("  mode:         none\n")
	}

	if ids, values, err := control.GetProperties(card, crtc); err == nil && len(ids) > 0 {
		fmt.Printf("  properties:\n")
		for i, pid := range ids {
			name := fmt.Sprintf("#%d", pid)
			if prop, err := control.GetProperty(card, pid); err == nil {
				name = prop.Name
			}
			fmt.Printf("    %-24s %d\n", name, values[i])
		}
	}
	return 0
}

func runModes(args []string) int {
	fs := flag.NewFlagSet("modes", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kmsctl modes <connector-id>")
		return 2
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid connector id %q\n", fs.Arg(0))
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	card, err := openCard(cfg, *device)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer card.Close()

	conn := control.NewConnector(uint32(id))
	info, err := control.GetConnector(card, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", conn, err)
		return 1
	}

	fmt.Printf("%s (%s)\n", info.Name(), info.Status())
	tbl := newTable("MODE", "CLOCK", "FLAGS", "PREFERRED")
	for _, m := range info.Modes() {
		pref := ""
		if m.Preferred() {
			pref = "yes"
		}
		tbl.Row(m.String(), strconv.Itoa(int(m.Clock)), fmt.Sprintf("%#x", m.Flags), pref)
	}
	fmt.Println(tbl)
	return 0
}
