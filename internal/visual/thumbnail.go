// Package visual generates post thumbnails from the image prompts drafted
// alongside each post.
package visual

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"blogforge/internal/logger"
)

// DefaultImageModel is the OpenAI image model used when none is configured.
const DefaultImageModel = openai.ImageModelGPTImage1

// Thumbnail describes a generated image on disk.
type Thumbnail struct {
	Path        string    `json:"path"`
	PromptUsed  string    `json:"promptUsed"`
	Size        string    `json:"size"`
	FileSize    int64     `json:"fileSize"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Options configures a Generator.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Generator turns image prompts into image files via the OpenAI Images API.
type Generator struct {
	client     openai.Client
	model      openai.ImageModel
	httpClient *http.Client
}

// NewGenerator creates an image Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("thumbnail generation requires an OpenAI API key. Set OPENAI_API_KEY or ai.openai.api_key")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := openai.ImageModel(opts.Model)
	if model == "" {
		model = DefaultImageModel
	}

	return &Generator{
		client:     openai.NewClient(reqOpts...),
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Generate renders prompt into an image at outputPath. width and height are
// mapped onto the closest size the API supports.
func (g *Generator) Generate(ctx context.Context, prompt, outputPath string, width, height int) (*Thumbnail, error) {
	if prompt == "" {
		return nil, fmt.Errorf("image prompt is required")
	}

	size := ImageSize(width, height)
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  g.model,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image generated")
	}

	image := resp.Data[0]
	switch {
	case image.B64JSON != "":
		err = SaveBase64Image(image.B64JSON, outputPath)
	case image.URL != "":
		err = g.downloadImage(ctx, image.URL, outputPath)
	default:
		err = fmt.Errorf("no image data received")
	}
	if err != nil {
		return nil, err
	}

	thumb := &Thumbnail{
		Path:        outputPath,
		PromptUsed:  prompt,
		Size:        size,
		GeneratedAt: time.Now(),
	}
	if image.RevisedPrompt != "" {
		thumb.PromptUsed = image.RevisedPrompt
	}
	if info, err := os.Stat(outputPath); err == nil {
		thumb.FileSize = info.Size()
	}

	logger.Info("Thumbnail generated", "path", outputPath, "size", size, "bytes", thumb.FileSize)
	return thumb, nil
}

// SaveBase64Image saves a base64 encoded image to the specified path
func SaveBase64Image(base64Data, outputPath string) error {
	imageData, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return fmt.Errorf("failed to decode base64 image: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// downloadImage fetches an image URL returned by models that answer with links
func (g *Generator) downloadImage(ctx context.Context, imageURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// ImageSize maps requested dimensions onto a size the Images API supports
func ImageSize(width, height int) string {
	sizeStr := fmt.Sprintf("%dx%d", width, height)
	switch sizeStr {
	case "1024x1024", "1024x1536", "1536x1024":
		return sizeStr
	}

	switch {
	case width <= 0 || height <= 0 || width == height:
		return "1024x1024"
	case width > height:
		return "1536x1024"
	default:
		return "1024x1536"
	}
}
