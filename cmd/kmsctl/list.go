package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/control"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	device := fs.String("device", "", "DRM card node")
	planes := fs.Bool("planes", false, "include the plane table (universal planes)")
	fs.Parse(args)

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

	if ver, err := drm.GetVersion(card); err == nil {
		fmt.Printf("%s (%s)\n\n", card.Path(), ver)
	}

	res, err := control.GetResources(card)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enumerate resources: %v\n", err)
		return 1
	}

	crtcs := newTable("CRTC", "POSITION", "FB", "MODE", "GAMMA")
	for _, c := range res.CRTCs {
		info, err := control.GetCRTC(card, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", c, err)
			return 1
		}
		x, y := info.Position()
		modeStr := "-"
		if m, ok := info.Mode(); ok {
			modeStr = m.String()
		}
		fbStr := "-"
		if info.Framebuffer() != 0 {
			fbStr = strconv.Itoa(int(info.Framebuffer().Raw()))
		}
		crtcs.Row(
			strconv.Itoa(int(c.Raw())),
			fmt.Sprintf("%d,%d", x, y),
			fbStr,
			modeStr,
			strconv.Itoa(int(info.GammaLength())),
		)
	}
	fmt.Println(crtcs)

	conns := newTable("CONNECTOR", "NAME", "STATUS", "SIZE", "PREFERRED")
	for _, c := range res.Connectors {
		info, err := control.GetConnector(card, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", c, err)
			return 1
		}
		w, h := info.SizeMM()
		prefStr := "-"
		if m, ok := info.PreferredMode(); ok {
			prefStr = m.String()
		}
		conns.Row(
			strconv.Itoa(int(c.Raw())),
			info.Name(),
			info.Status().String(),
			fmt.Sprintf("%dx%dmm", w, h),
			prefStr,
		)
	}
	fmt.Println(conns)

	encs := newTable("ENCODER", "KIND", "CRTC", "POSSIBLE")
	for _, e := range res.Encoders {
		info, err := control.GetEncoder(card, e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", e, err)
			return 1
		}
		crtcStr := "-"
		if info.CRTC() != 0 {
			crtcStr = strconv.Itoa(int(info.CRTC().Raw()))
		}
		encs.Row(
			strconv.Itoa(int(e.Raw())),
			control.EncoderKindName(info.Kind()),
			crtcStr,
			fmt.Sprintf("%#b", info.PossibleCRTCs()),
		)
	}
	fmt.Println(encs)

	if *planes {
		if err := drm.SetClientCap(card, drm.ClientCapUniversalPlanes, 1); err != nil {
			fmt.Fprintf(os.Stderr, "universal planes: %v\n", err)
			return 1
		}
		ids, err := control.GetPlaneResources(card)
		if err != nil {
			fmt.Fprintf(os.Stderr, "enumerate planes: %v\n", err)
			return 1
		}
		tbl := newTable("PLANE", "CRTC", "FB", "POSSIBLE", "FORMATS")
		for _, p := range ids {
			info, err := control.GetPlane(card, p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v: %v\n", p, err)
				return 1
			}
			crtcStr := "-"
			if info.CRTC() != 0 {
				crtcStr = strconv.Itoa(int(info.CRTC().Raw()))
			}
			fbStr := "-"
			if info.Framebuffer() != 0 {
				fbStr = strconv.Itoa(int(info.Framebuffer().Raw()))
			}
			tbl.Row(
				strconv.Itoa(int(p.Raw())),
				crtcStr,
				fbStr,
				fmt.Sprintf("%#b", info.PossibleCRTCs()),
				strconv.Itoa(len(info.Formats())),
			)
		}
		fmt.Println(tbl)
	}

	fmt.Println(dimStyle.Render(fmt.Sprintf("framebuffer limits: %dx%d .. %dx%d",
		res.MinWidth, res.MinHeight, res.MaxWidth, res.MaxHeight)))
	return 0
}
