package ocr

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/snaplate/internal/geom"
)

func TestParseRegions(t *testing.T) {
	content := `[{"text":"Hello","box":[0.1,0.2,0.3,0.05]},{"text":"World","box":[0.1,0.3,0.25,0.05]}]`
	regions, err := parseRegions(content)
	if err != nil {
		t.Fatalf("parseRegions: %v", err)
	}
	want := []Region{
		{Text: "Hello", Box: geom.XYWH(0.1, 0.2, 0.3, 0.05)},
		{Text: "World", Box: geom.XYWH(0.1, 0.3, 0.25, 0.05)},
	}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRegionsRejectsProse(t *testing.T) {
	if _, err := parseRegions("Sure! Here is the text I found..."); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestVisionEngineRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		resp := map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"content": `[{"text":"menu","box":[0,0,0.5,0.1]}]`,
				},
			}},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	eng, err := NewVisionEngine(VisionConfig{APIKey: "test-key", Model: "test-model", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewVisionEngine: %v", err)
	}
	regions, err := eng.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)), "en")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(regions) != 1 || regions[0].Text != "menu" {
		t.Fatalf("regions = %+v", regions)
	}
}

func TestNewVisionEngineValidation(t *testing.T) {
	if _, err := NewVisionEngine(VisionConfig{Model: "m"}); err == nil {
		t.Fatal("missing API key should fail")
	}
	if _, err := NewVisionEngine(VisionConfig{APIKey: "k"}); err == nil {
		t.Fatal("missing model should fail")
	}
}
