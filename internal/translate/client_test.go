package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAlignBatch(t *testing.T) {
	got := alignBatch(`["uno","dos"]`, 3)
	if len(got) != 3 || got[0] != "uno" || got[1] != "dos" || got[2] != "" {
		t.Fatalf("alignBatch short reply = %v", got)
	}
	got = alignBatch(`["a","b","c","d"]`, 2)
	if len(got) != 2 || got[1] != "b" {
		t.Fatalf("alignBatch long reply = %v", got)
	}
	got = alignBatch("not json", 2)
	if len(got) != 2 || got[0] != "" || got[1] != "" {
		t.Fatalf("alignBatch garbage reply = %v", got)
	}
}

func TestClientTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": `["hola","mundo"]`},
			}},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{APIKey: "k", Model: "m", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.Translate(context.Background(), []string{"hello", "world"}, "Spanish")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out) != 2 || out[0] != "hola" || out[1] != "mundo" {
		t.Fatalf("Translate = %v", out)
	}
}

func TestClientTranslateEmptyBatch(t *testing.T) {
	c, err := NewClient(ClientConfig{APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.Translate(context.Background(), nil, "German")
	if err != nil || out != nil {
		t.Fatalf("empty batch: out=%v err=%v", out, err)
	}
}
