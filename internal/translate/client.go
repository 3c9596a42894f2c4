package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// ClientConfig configures the chat-model translation client.
type ClientConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Client translates text batches through a hosted chat model.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient validates cfg and returns a Translator implementation.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translate: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("translate: model is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
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

// Translate sends the batch as a JSON array and expects a parallel JSON
// array back. Items the model drops or mangles come back as "" so a partial
// failure never loses the alignment between input and output.
func (c *Client) Translate(ctx context.Context, texts []string, targetLanguage string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	src, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("translate: marshal batch: %w", err)
	}
	prompt := fmt.Sprintf(
		"Translate every string in this JSON array into %s. Respond with a JSON array "+
			"of the same length, same order, translations only, no commentary: %s",
		targetLanguage, src)

	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("translate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate: unexpected status %s", resp.Status)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("translate: decode response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("translate: provider error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("translate: empty response")
	}
	return alignBatch(cr.Choices[0].Message.Content, len(texts)), nil
}

// alignBatch parses the model reply and pads/truncates it to want entries.
func alignBatch(content string, want int) []string {
	out := make([]string, want)
	var parsed []string
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Whole-reply parse failure degrades every item to empty.
		return out
	}
	for i := 0; i < want && i < len(parsed); i++ {
		out[i] = parsed[i]
	}
	return out
}
