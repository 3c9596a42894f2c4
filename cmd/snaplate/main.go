package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/example/snaplate/internal/config"
	"github.com/example/snaplate/internal/notify"
	"github.com/example/snaplate/internal/ocr"
	"github.com/example/snaplate/internal/translate"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	captureAlerts bool
	saveAlerts    bool
	copyAlerts    bool
}

func (r *root) Program() string { return r.program }

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func (r *root) Synopsis() string {
	return "snaplate <command> [flags]\n\ncommands:\n" +
		"  snapshot   capture the screen or a region to a file, stdout or the clipboard\n" +
		"  edit       capture (or open) an image and annotate it in a window\n" +
		"  ocr        recognize text in a capture and optionally translate it\n" +
		"  export     re-encode an image as png, jpeg or pdf\n" +
		"  displays   list the connected displays\n" +
		"  version    print version information"
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("snaplate", flag.ExitOnError),
		program:  "snaplate",
		notifier: notify.FromConfig(cfg.Notify),
		config:   cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "snapshot":
		cmd, err = parseSnapshotCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "ocr":
		cmd, err = parseOCRCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "displays":
		cmd = &displaysCmd{r: r}
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// engines builds the OCR and translation clients from the config and the
// environment credentials. Either may be nil when no API key is available;
// the callers degrade to local-only behavior.
func (r *root) engines() (ocr.Engine, translate.Translator) {
	creds := config.LoadCredentials()
	if creds.APIKey == "" {
		return nil, nil
	}
	endpoint := ""
	if base := strings.TrimSuffix(r.config.Engines.BaseURL, "/"); base != "" {
		endpoint = base + "/chat/completions"
	}
	var engine ocr.Engine
	if e, err := ocr.NewVisionEngine(ocr.VisionConfig{
		APIKey:   creds.APIKey,
		Model:    r.config.Engines.OCRModel,
		Endpoint: endpoint,
	}); err == nil {
		engine = e
	} else {
		fmt.Fprintf(os.Stderr, "warning: ocr engine unavailable: %v\n", err)
	}
	var translator translate.Translator
	if c, err := translate.NewClient(translate.ClientConfig{
		APIKey:   creds.APIKey,
		Model:    r.config.Engines.TranslateModel,
		Endpoint: endpoint,
	}); err == nil {
		translator = c
	} else {
		fmt.Fprintf(os.Stderr, "warning: translator unavailable: %v\n", err)
	}
	return engine, translator
}

func (r *root) notifyCapture(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Capture(detail, img)
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
