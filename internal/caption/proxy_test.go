package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generatorStub is a stub for Generator.
type generatorStub struct {
	fromTextFn  func(context.Context, string) (string, error)
	fromImageFn func(context.Context, []byte, string, string) (string, error)
}

func (s *generatorStub) FromText(ctx context.Context, prompt string) (string, error) {
	return s.fromTextFn(ctx, prompt)
}

func (s *generatorStub) FromImage(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	return s.fromImageFn(ctx, data, mimeType, prompt)
}

func newProxyApp(gen Generator) *fiber.App {
	app := fiber.New()
	NewHandler(gen, discardLogger()).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, payload any) (*Response, int, map[string][]string) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/generate-caption", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out Response
	require.NoError(t, json.Unmarshal(raw, &out))
	return &out, resp.StatusCode, resp.Header
}

func TestProxyPreflight(t *testing.T) {
	app := newProxyApp(&generatorStub{})

	req := httptest.NewRequest("OPTIONS", "/generate-caption", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestProxyTextCaption(t *testing.T) {
	gen := &generatorStub{
		fromTextFn: func(_ context.Context, prompt string) (string, error) {
			assert.Equal(t, "my vacation", prompt)
			return "Wanderlust mode on #travel #vacay", nil
		},
	}
	out, status, headers := postJSON(t, newProxyApp(gen), Request{Type: TypeText, Prompt: "my vacation"})

	assert.Equal(t, 200, status)
	assert.Equal(t, "Wanderlust mode on #travel #vacay", out.Caption)
	assert.Equal(t, []string{"*"}, headers["Access-Control-Allow-Origin"])
}

func TestProxyImageCaption(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47}
	gen := &generatorStub{
		fromImageFn: func(_ context.Context, data []byte, mimeType, prompt string) (string, error) {
			assert.Equal(t, raw, data)
			assert.Equal(t, "image/png", mimeType)
			assert.Equal(t, "park", prompt)
			return "Green escape #nature", nil
		},
	}
	out, status, _ := postJSON(t, newProxyApp(gen), Request{
		Type:   TypeImage,
		Prompt: "park",
		Image:  &ImagePayload{Data: base64.StdEncoding.EncodeToString(raw), MimeType: "image/png"},
	})

	assert.Equal(t, 200, status)
	assert.Equal(t, "Green escape #nature", out.Caption)
}

func TestProxyInvalidType(t *testing.T) {
	out, status, _ := postJSON(t, newProxyApp(&generatorStub{}), Request{Type: "audio"})
	assert.Equal(t, 500, status)
	assert.Contains(t, out.Error, "invalid request type")
}

func TestProxyImageMissingPayload(t *testing.T) {
	out, status, _ := postJSON(t, newProxyApp(&generatorStub{}), Request{Type: TypeImage})
	assert.Equal(t, 500, status)
	assert.Contains(t, out.Error, "missing image data")
}

func TestProxyGeneratorError(t *testing.T) {
	gen := &generatorStub{
		fromTextFn: func(context.Context, string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	out, status, _ := postJSON(t, newProxyApp(gen), Request{Type: TypeText, Prompt: "x"})
	assert.Equal(t, 500, status)
	assert.Contains(t, out.Error, "model unavailable")
}
