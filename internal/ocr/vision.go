package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/example/snaplate/internal/geom"
)

const defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

const visionPrompt = "Perform OCR on this image. Respond with a JSON array of objects, " +
	"one per line of text, each with fields \"text\" (the extracted string) and " +
	"\"box\" (an array [x, y, width, height] of the line's bounding box normalized " +
	"to 0..1 with the origin at the top-left). Respond with the JSON array only, " +
	"no markdown fences and no commentary."

// VisionConfig configures the vision-model OCR client.
type VisionConfig struct {
	APIKey   string
	Model    string
	Endpoint string // defaults to the OpenRouter chat completions URL
	Timeout  time.Duration
}

// VisionEngine performs OCR by sending the bitmap to a hosted vision model
// and parsing the structured reply.
type VisionEngine struct {
	cfg    VisionConfig
	client *http.Client
}

// NewVisionEngine returns an Engine backed by a chat-completions vision
// model.
func NewVisionEngine(cfg VisionConfig) (*VisionEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ocr: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ocr: model is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &VisionEngine{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type wireRegion struct {
	Text string     `json:"text"`
	Box  [4]float64 `json:"box"`
}

// Recognize submits img and parses the model's region list. The returned
// order is the model's reading order.
func (e *VisionEngine) Recognize(ctx context.Context, img image.Image, languageHint string) ([]Region, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ocr: encode image: %w", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	prompt := visionPrompt
	if languageHint != "" {
		prompt += fmt.Sprintf(" The text is expected to be in %s.", languageHint)
	}
	payload := chatRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			},
		}},
		Temperature: 0,
		MaxTokens:   4096,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ocr: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr: unexpected status %s", resp.Status)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("ocr: decode response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("ocr: provider error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("ocr: empty response")
	}
	return parseRegions(cr.Choices[0].Message.Content)
}

func parseRegions(content string) ([]Region, error) {
	var wire []wireRegion
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("ocr: parse region list: %w", err)
	}
	regions := make([]Region, 0, len(wire))
	for _, w := range wire {
		regions = append(regions, Region{
			Text: w.Text,
			Box:  geom.XYWH(w.Box[0], w.Box[1], w.Box[2], w.Box[3]),
		})
	}
	return regions, nil
}
