//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/geom"
)

// listDisplays asks RandR for the monitor layout. On Wayland (or with no X
// server at all) it degrades to the framebuffer-bounds enumeration.
func listDisplays() ([]document.Display, error) {
	if runningOnWayland() {
		return portableDisplays()
	}
	displays, err := randrDisplays()
	if err != nil {
		return portableDisplays()
	}
	return displays, nil
}

func runningOnWayland() bool {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	if sessionType == "wayland" {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func randrDisplays() ([]document.Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}

	res, err := randr.GetScreenResources(conn, screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, screen.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	displays := make([]document.Display, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		displays = append(displays, document.Display{
			ID:   len(displays),
			Name: strings.TrimSpace(string(info.Name)),
			Frame: geom.XYWH(
				float64(crtc.X),
				float64(crtc.Y),
				float64(crtc.Width),
				float64(crtc.Height),
			),
			ScaleFactor: scaleFactorFor(info, crtc),
			Primary:     output == primaryOutput,
		})
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("no connected outputs")
	}
	return displays, nil
}

// scaleFactorFor estimates the HiDPI factor from the physical size RandR
// reports: ~192 DPI panels run at 2x. Unknown physical size means 1x.
func scaleFactorFor(info *randr.GetOutputInfoReply, crtc *randr.GetCrtcInfoReply) float64 {
	if info.MmWidth == 0 {
		return 1
	}
	dpi := float64(crtc.Width) / (float64(info.MmWidth) / 25.4)
	if dpi >= 168 {
		return 2
	}
	return 1
}
