package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/snaplate/internal/capture"
	"github.com/example/snaplate/internal/document"
	"github.com/example/snaplate/internal/ocr"
)

type ocrCmd struct {
	input     string
	display   string
	translate bool
	target    string
	asJSON    bool
	timeout   time.Duration
	*root
	fs *flag.FlagSet
}

func (o *ocrCmd) FlagSet() *flag.FlagSet { return o.fs }

func (o *ocrCmd) Program() string { return "snaplate ocr" }

func (o *ocrCmd) Synopsis() string {
	return "snaplate ocr [flags] [file]"
}

func parseOCRCmd(args []string, r *root) (*ocrCmd, error) {
	fs := flag.NewFlagSet("ocr", flag.ExitOnError)
	o := &ocrCmd{root: r, fs: fs}
	fs.Usage = usageFunc(o)
	fs.StringVar(&o.input, "input", "", "recognize text in this image file instead of capturing the screen")
	fs.StringVar(&o.display, "display", "", "target display selector when capturing")
	fs.BoolVar(&o.translate, "translate", false, "translate the recognized text")
	fs.StringVar(&o.target, "target", "", "translation target language (default from config)")
	fs.BoolVar(&o.asJSON, "json", false, "emit regions as JSON")
	fs.DurationVar(&o.timeout, "timeout", 2*time.Minute, "overall deadline for recognition and translation")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.input == "" && fs.NArg() > 0 {
		o.input = fs.Arg(0)
	}
	if o.target == "" {
		o.target = r.config.Engines.TargetLanguage
	}
	return o, nil
}

type ocrResult struct {
	Text        string  `json:"text"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Translation string  `json:"translation,omitempty"`
}

func (o *ocrCmd) Run() error {
	engine, translator := o.root.engines()
	if engine == nil {
		return fmt.Errorf("ocr: no API key configured; set SNAPLATE_API_KEY or OPENROUTER_API_KEY")
	}
	if o.translate && translator == nil {
		return fmt.Errorf("translate: no translator available")
	}

	doc, err := o.document()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	regions, err := engine.Recognize(ctx, doc.Bitmap, o.root.config.Engines.LanguageHint)
	if err != nil {
		return fmt.Errorf("recognize text: %w", err)
	}
	doc = doc.WithTextRegions(regions)

	var translations []string
	if o.translate && len(regions) > 0 {
		texts := make([]string, len(regions))
		for i, r := range regions {
			texts[i] = r.Text
		}
		translations, err = translator.Translate(ctx, texts, o.target)
		if err != nil {
			return fmt.Errorf("translate: %w", err)
		}
	}

	return o.print(doc, regions, translations)
}

func (o *ocrCmd) print(doc document.Screenshot, regions []ocr.Region, translations []string) error {
	results := make([]ocrResult, len(regions))
	for i, r := range regions {
		box := doc.RegionBounds(r)
		results[i] = ocrResult{
			Text:   r.Text,
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
		}
		if i < len(translations) {
			results[i].Translation = translations[i]
		}
	}
	if o.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Println("no text found")
		return nil
	}
	for _, r := range results {
		line := r.Text
		if r.Translation != "" {
			line = fmt.Sprintf("%s -> %s", r.Text, r.Translation)
		}
		fmt.Printf("[%4.0f,%4.0f %4.0fx%-4.0f] %s\n", r.X, r.Y, r.Width, r.Height, line)
	}
	return nil
}

func (o *ocrCmd) document() (document.Screenshot, error) {
	if strings.TrimSpace(o.input) != "" {
		img, err := loadImage(o.input)
		if err != nil {
			return document.Screenshot{}, err
		}
		return document.New(img, time.Now(), document.Display{}), nil
	}
	frame, err := captureScreenFn(o.display, capture.Options{})
	if err != nil {
		return document.Screenshot{}, fmt.Errorf("failed to capture screen: %w", err)
	}
	return frame.Document(), nil
}
