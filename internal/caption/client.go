package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Fixed user-facing fallbacks. Caption generation is a non-critical
// enhancement: whatever goes wrong, the user sees one of these two strings
// and the raw detail goes to the log only.
const (
	TextFallback  = "Sorry, I couldn't come up with a caption right now."
	ImageFallback = "Sorry, I couldn't come up with a caption for this image right now."
)

// Client calls the caption proxy. It never returns an error: failures
// collapse to the per-mode fallback string.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a caption client for the given proxy endpoint.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// CaptionFromText requests a caption for free-form text.
func (c *Client) CaptionFromText(ctx context.Context, prompt string) string {
	caption, err := c.call(ctx, Request{Type: TypeText, Prompt: prompt})
	if err != nil {
		c.logger.Error("caption request failed", slog.String("mode", "text"), slog.String("error", err.Error()))
		return TextFallback
	}
	return caption
}

// CaptionFromImage requests a caption for image bytes with optional text
// context. The bytes are base64-encoded client-side.
func (c *Client) CaptionFromImage(ctx context.Context, data []byte, mimeType, prompt string) string {
	req := Request{
		Type:   TypeImage,
		Prompt: prompt,
		Image: &ImagePayload{
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: mimeType,
		},
	}
	caption, err := c.call(ctx, req)
	if err != nil {
		c.logger.Error("caption request failed", slog.String("mode", "image"), slog.String("error", err.Error()))
		return ImageFallback
	}
	return caption
}

func (c *Client) call(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("malformed proxy response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("proxy error: %s", out.Error)
	}
	if strings.TrimSpace(out.Caption) == "" {
		return "", fmt.Errorf("proxy response missing caption")
	}
	return strings.TrimSpace(out.Caption), nil
}
