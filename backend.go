package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"google.golang.org/genai"
)

const reasoningTimeout = 60 * time.Second

// GenerateOptions carries the per-call model settings.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Reasoner is the generative backend consulted for verdicts and page
// analysis. Output is untrusted free text; callers route it through the
// response parser. Errors are opaque transport failures.
type Reasoner interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string, opts GenerateOptions) (string, error)
}

// NewReasoner selects a backend implementation by provider name.
func NewReasoner(ctx context.Context, provider, apiKey string) (Reasoner, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicReasoner(apiKey)
	case "gemini", "":
		return NewGeminiReasoner(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// GeminiReasoner calls the Gemini API.
type GeminiReasoner struct {
	client *genai.Client
}

// NewGeminiReasoner creates a Gemini-backed reasoner.
func NewGeminiReasoner(ctx context.Context, apiKey string) (*GeminiReasoner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: reasoningTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiReasoner{client: client}, nil
}

func (r *GeminiReasoner) config(opts GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}

// Generate runs a single blocking text completion.
func (r *GeminiReasoner) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	resp, err := r.client.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), r.config(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no content in response")
	}
	return text, nil
}

// GenerateWithImage attaches a binary image part alongside the prompt.
func (r *GeminiReasoner) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string, opts GenerateOptions) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := r.client.Models.GenerateContent(ctx, opts.Model, contents, r.config(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate with image: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no content in response")
	}
	return text, nil
}

// AnthropicReasoner calls the Anthropic API through llmkit.
type AnthropicReasoner struct {
	apiKey string
}

// NewAnthropicReasoner creates an Anthropic-backed reasoner.
func NewAnthropicReasoner(apiKey string) (*AnthropicReasoner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return &AnthropicReasoner{apiKey: apiKey}, nil
}

// Generate runs a single blocking text completion.
func (r *AnthropicReasoner) Generate(_ context.Context, prompt string, opts GenerateOptions) (string, error) {
	settings := types.RequestSettings{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	response, err := anthropic.PromptWithSettings("", prompt, "", r.apiKey, settings)
	if err != nil {
		return "", fmt.Errorf("anthropic prompt: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return response.Content[0].Text, nil
}

// GenerateWithImage uploads the image payload as a file attachment. The
// Files API wants a path, so the payload goes through a temp file.
func (r *AnthropicReasoner) GenerateWithImage(_ context.Context, prompt string, image []byte, mimeType string, opts GenerateOptions) (string, error) {
	tempFile, err := os.CreateTemp("", "factcheck-*"+extensionForMime(mimeType))
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(image); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("writing image payload: %w", err)
	}
	tempFile.Close()

	file, err := anthropic.UploadFile(tempFile.Name(), r.apiKey)
	if err != nil {
		return "", fmt.Errorf("uploading image file: %w", err)
	}

	settings := types.RequestSettings{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	response, err := anthropic.PromptWithSettings("", prompt, "", r.apiKey, settings, types.File{ID: file.ID})
	if err != nil {
		return "", fmt.Errorf("anthropic prompt with image: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return response.Content[0].Text, nil
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
