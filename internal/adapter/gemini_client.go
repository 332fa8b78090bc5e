package adapter

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"chartanalyst/internal/domain"
)

// GeminiConfig holds what the Gemini client needs
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // empty uses the public endpoint
	Timeout time.Duration // HTTP client timeout
}

// GeminiClient implements domain.VisionModel on top of the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client. A missing API key is an error:
// there is no point in serving requests without one.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gemini model not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // AI analysis can take time
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Name returns the configured model
func (g *GeminiClient) Name() string {
	return g.model
}

// Generate sends the instruction text and the inline image as one user turn
func (g *GeminiClient) Generate(ctx context.Context, prompt string, image domain.ImagePart) (string, error) {
	data, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return "", &domain.DecodeError{Reason: "invalid base64 payload", Err: err}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, image.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", &domain.TransportError{Err: fmt.Errorf("gemini generate content failed: %w", err)}
	}

	return resp.Text(), nil
}
