package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/xgb"
	"github.com/charmbracelet/lipgloss"

	"github.com/drmkit/kmsctl/internal/drm"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func checkOK(msg string)   { fmt.Println(okStyle.Render("  ok   ") + msg) }
func checkWarn(msg string) { fmt.Println(warnStyle.Render("  warn ") + msg) }
func checkFail(msg string) { fmt.Println(failStyle.Render("  FAIL ") + msg) }

// runDoctor probes the environment for everything a mode-set needs and
// prints one line per check.
func runDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	fmt.Println("kmsctl doctor")
	fmt.Println()

	failed := 0

	node := *device
	if node == "" {
		node = cfg.Device
	}
	if _, err := os.Stat(node); err != nil {
		checkFail(fmt.Sprintf("device node %s: %v", node, err))
		return 1
	}
	checkOK("device node " + node)

	card, err := drm.Open(node)
	if err != nil {
		checkFail(fmt.Sprintf("open %s: %v", node, err))
		return 1
	}
	defer card.Close()
	checkOK("device opened")

	if ver, err := drm.GetVersion(card); err != nil {
		checkWarn(fmt.Sprintf("driver version: %v", err))
	} else {
		checkOK(fmt.Sprintf("driver %s %d.%d.%d (%s)",
			ver.Name, ver.Major, ver.Minor, ver.Patch, ver.Desc))
	}

	if ok, err := drm.HasDumbBuffer(card); err != nil {
		checkFail(fmt.Sprintf("dumb buffer capability: %v", err))
		failed++
	} else if !ok {
		checkFail("device does not support dumb buffers")
		failed++
	} else {
		checkOK("dumb buffers supported")
	}

	cw, ch := drm.CursorSize(card)
	checkOK(fmt.Sprintf("hardware cursor %dx%d", cw, ch))

	if err := drm.SetMaster(card); err != nil {
		checkWarn(fmt.Sprintf("DRM master unavailable: %v (another compositor holds it?)", err))
	} else {
		drm.DropMaster(card)
		checkOK("DRM master acquirable")
	}

	// A running X server owns the display hardware; commits from here will
	// fight it or be rejected outright.
	if os.Getenv("DISPLAY") != "" {
		if conn, err := xgb.NewConn(); err == nil {
			conn.Close()
			checkWarn("an X server is running; mode-sets will conflict with it")
		} else {
			checkWarn("DISPLAY is set but the X server is unreachable")
		}
	} else {
		checkOK("no X session detected")
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d check(s) failed\n", failed)
		return 1
	}
	fmt.Println("all checks passed")
	return 0
}
