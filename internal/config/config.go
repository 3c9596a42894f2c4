// Package config reads the snaplate rc file and the engine credentials.
// Settings live in a small INI-ish rc format; API keys come from the
// environment or a .env file so they never end up in the rc file.
package config

import (
	"fmt"
	"image/color"
	"strings"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
}

// Editor holds default annotation styling for new sessions.
type Editor struct {
	StrokeColor color.RGBA
	StrokeWidth float64
	FontSize    float64
	Filled      bool
}

// Export holds default export parameters.
type Export struct {
	Format  string
	Quality float64
	Shadow  bool
}

// Engines names the OCR and translation models and endpoints. The API key
// is deliberately absent; see Credentials.
type Engines struct {
	BaseURL        string
	OCRModel       string
	TranslateModel string
	LanguageHint   string
	TargetLanguage string
}

// Config holds the application configuration.
type Config struct {
	SaveDir string
	Notify  Notify
	Editor  Editor
	Export  Export
	Engines Engines
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Editor: Editor{
			StrokeColor: color.RGBA{R: 0xE5, G: 0x3E, B: 0x3E, A: 0xFF},
			StrokeWidth: 2,
			FontSize:    16,
		},
		Export: Export{
			Format:  "png",
			Quality: 0.9,
		},
		Engines: Engines{
			BaseURL:        "https://openrouter.ai/api/v1",
			OCRModel:       "google/gemini-2.0-flash-001",
			TranslateModel: "google/gemini-2.0-flash-001",
			TargetLanguage: "en",
		},
	}
}

// String implements fmt.Stringer and returns the configuration in rc format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "stroke_color = %s\n", toHex(c.Editor.StrokeColor))
	fmt.Fprintf(&sb, "stroke_width = %g\n", c.Editor.StrokeWidth)
	fmt.Fprintf(&sb, "font_size = %g\n", c.Editor.FontSize)
	fmt.Fprintf(&sb, "filled = %v\n", c.Editor.Filled)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "format = %s\n", c.Export.Format)
	fmt.Fprintf(&sb, "quality = %g\n", c.Export.Quality)
	fmt.Fprintf(&sb, "shadow = %v\n", c.Export.Shadow)
	sb.WriteString("\n")

	sb.WriteString("[engines]\n")
	fmt.Fprintf(&sb, "base_url = %s\n", c.Engines.BaseURL)
	fmt.Fprintf(&sb, "ocr_model = %s\n", c.Engines.OCRModel)
	fmt.Fprintf(&sb, "translate_model = %s\n", c.Engines.TranslateModel)
	if c.Engines.LanguageHint != "" {
		fmt.Fprintf(&sb, "language_hint = %s\n", c.Engines.LanguageHint)
	}
	fmt.Fprintf(&sb, "target_language = %s\n", c.Engines.TargetLanguage)
	sb.WriteString("\n")

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
