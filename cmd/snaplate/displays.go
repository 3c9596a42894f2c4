package main

import (
	"fmt"

	"github.com/example/snaplate/internal/capture"
)

var listDisplaysFn = capture.Displays

type displaysCmd struct{ r *root }

func (d *displaysCmd) Run() error {
	displays, err := listDisplaysFn()
	if err != nil {
		return fmt.Errorf("list displays: %w", err)
	}
	for _, disp := range displays {
		marker := " "
		if disp.Primary {
			marker = "*"
		}
		fmt.Printf("%s #%d %-16s %4.0fx%-4.0f at %4.0f,%-4.0f scale %.0fx\n",
			marker, disp.ID, disp.Name,
			disp.Frame.Width, disp.Frame.Height,
			disp.Frame.X, disp.Frame.Y,
			disp.ScaleFactor)
	}
	return nil
}
