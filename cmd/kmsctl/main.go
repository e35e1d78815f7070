package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/drmkit/kmsctl/internal/config"
	"github.com/drmkit/kmsctl/internal/drm"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "modes":
		os.Exit(runModes(os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "cursor":
		os.Exit(runCursor(os.Args[2:]))
	case "pattern":
		os.Exit(runPattern(os.Args[2:]))
	case "doctor":
		os.Exit(runDoctor(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "version":
		fmt.Println("kmsctl " + versionString)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

const versionString = "0.3.0"

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kmsctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                List the card's CRTCs, connectors and encoders")
	fmt.Fprintln(w, "  info <crtc-id>      Show a CRTC's current state")
	fmt.Fprintln(w, "  modes <conn-id>     List the modes a connector advertises")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set                 Commit a mode-set (framebuffer, connectors, timing)")
	fmt.Fprintln(w, "  cursor set          Attach a hardware cursor image")
	fmt.Fprintln(w, "  cursor move         Move the hardware cursor")
	fmt.Fprintln(w, "  cursor clear        Detach the hardware cursor")
	fmt.Fprintln(w, "  pattern             Show a test pattern on every connected output")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  doctor              Check the environment for mode-setting readiness")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  version             Print version")
}

// loadConfig reads the standard config, honoring an explicit -config path.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// newLogger builds the process logger the way the config asks for.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// openCard opens the configured card node, preferring an explicit -device.
func openCard(cfg *config.Config, device string) (*drm.Card, error) {
	if device == "" {
		device = cfg.Device
	}
	return drm.Open(device)
}
