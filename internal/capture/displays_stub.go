//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import "github.com/example/snaplate/internal/document"

func listDisplays() ([]document.Display, error) {
	return portableDisplays()
}
