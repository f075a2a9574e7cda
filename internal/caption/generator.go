package caption

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const captionModel = "gemini-flash-latest"

const (
	textPromptTemplate = `Generate a short, engaging, and cool social media caption. The user is writing about: "%s". Make it sound natural and add 2-3 relevant hashtags. Do not wrap the response in markdown. Just return the plain text caption.`

	imagePromptPlain = `Generate a short, engaging, and cool social media caption for this image. Make it sound natural and add 2-3 relevant hashtags. Do not wrap the response in markdown. Just return the plain text caption.`

	imagePromptWithContext = `Generate a short, engaging, and cool social media caption for this image. The user provided this additional context: "%s". Make it sound natural and add 2-3 relevant hashtags. Do not wrap the response in markdown. Just return the plain text caption.`
)

// Generator produces captions. The interface exists so the proxy handler
// can be tested without a live Gemini key.
type Generator interface {
	FromText(ctx context.Context, prompt string) (string, error)
	FromImage(ctx context.Context, data []byte, mimeType, prompt string) (string, error)
}

// GeminiGenerator generates captions with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a generator using the given API key.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// FromText generates a caption for free-form text.
func (g *GeminiGenerator) FromText(ctx context.Context, prompt string) (string, error) {
	full := fmt.Sprintf(textPromptTemplate, prompt)
	resp, err := g.client.Models.GenerateContent(ctx, captionModel, genai.Text(full), nil)
	if err != nil {
		return "", fmt.Errorf("generate caption: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// FromImage generates a caption for image bytes, with optional text context.
func (g *GeminiGenerator) FromImage(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	text := imagePromptPlain
	if prompt != "" {
		text = fmt.Sprintf(imagePromptWithContext, prompt)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(text),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, captionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate caption: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
