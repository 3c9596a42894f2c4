package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/snaplate/internal/export"
)

type exportCmd struct {
	input   string
	output  string
	format  string
	quality float64
	shadow  bool
	*root
	fs *flag.FlagSet
}

func (e *exportCmd) FlagSet() *flag.FlagSet { return e.fs }

func (e *exportCmd) Program() string { return "snaplate export" }

func (e *exportCmd) Synopsis() string {
	return "snaplate export [flags] <input> [output]"
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.format, "format", "", "output format: png, jpeg or pdf (default from the output extension)")
	fs.Float64Var(&e.quality, "quality", r.config.Export.Quality, "encoder quality between 0 and 1 for lossy formats")
	fs.BoolVar(&e.shadow, "shadow", r.config.Export.Shadow, "composite a drop shadow behind the image")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: e}
	}
	e.input = fs.Arg(0)
	if fs.NArg() > 1 {
		e.output = fs.Arg(1)
	}
	if e.output == "" {
		format := e.format
		if format == "" {
			format = r.config.Export.Format
		}
		base := strings.TrimSuffix(e.input, filepath.Ext(e.input))
		e.output = fmt.Sprintf("%s.%s", base, format)
	}
	if e.format == "" {
		e.format = strings.TrimPrefix(filepath.Ext(e.output), ".")
	}
	return e, nil
}

func (e *exportCmd) Run() error {
	format, err := export.ParseFormat(e.format)
	if err != nil {
		return err
	}
	img, err := loadImage(e.input)
	if err != nil {
		return err
	}
	opts := export.Options{Format: format, Quality: e.quality, Shadow: e.shadow}
	if err := (export.FileExporter{}).Export(img, e.output, opts); err != nil {
		return fmt.Errorf("export %q: %w", e.output, err)
	}
	fmt.Printf("wrote %s\n", e.output)
	e.notifySave(e.output)
	return nil
}
