package visual

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChAI9jU8="

func TestGenerateSavesBase64Image(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"created": 1234567890,
			"data": [{"b64_json": "` + pixelPNG + `", "revised_prompt": "A compost bin on a sunny balcony, watercolor"}]
		}`))
	}))
	defer server.Close()

	gen, err := NewGenerator(Options{APIKey: "test", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "thumbs", "post.png")
	thumb, err := gen.Generate(context.Background(), "A compost bin on a sunny balcony", out, 1920, 1080)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got["prompt"] != "A compost bin on a sunny balcony" {
		t.Errorf("request prompt = %v", got["prompt"])
	}
	if got["size"] != "1536x1024" {
		t.Errorf("request size = %v, want 1536x1024", got["size"])
	}
	if got["model"] != string(DefaultImageModel) {
		t.Errorf("request model = %v", got["model"])
	}

	if thumb.PromptUsed != "A compost bin on a sunny balcony, watercolor" {
		t.Errorf("PromptUsed = %q, want revised prompt", thumb.PromptUsed)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	if info.Size() == 0 || thumb.FileSize != info.Size() {
		t.Errorf("FileSize = %d, file is %d bytes", thumb.FileSize, info.Size())
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	gen, err := NewGenerator(Options{APIKey: "test"})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := gen.Generate(context.Background(), "", "out.png", 0, 0); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(Options{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestSaveBase64ImageRejectsGarbage(t *testing.T) {
	if err := SaveBase64Image("not base64!", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected decode error")
	}
}

func TestImageSize(t *testing.T) {
	tests := []struct {
		width, height int
		want          string
	}{
		{1024, 1024, "1024x1024"},
		{1536, 1024, "1536x1024"},
		{1920, 1080, "1536x1024"},
		{1080, 1920, "1024x1536"},
		{500, 500, "1024x1024"},
		{0, 0, "1024x1024"},
	}

	for _, tt := range tests {
		if got := ImageSize(tt.width, tt.height); got != tt.want {
			t.Errorf("ImageSize(%d, %d) = %s, want %s", tt.width, tt.height, got, tt.want)
		}
	}
}
