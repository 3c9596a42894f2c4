//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"
)

func portalScreenshot(bool, Options) (*image.RGBA, error) {
	return nil, fmt.Errorf("portal screenshot is not supported on this platform")
}

// The direct grab is the only path here, so every portal failure routes to
// the fallback.
func isPortalUnsupportedError(error) bool { return true }
