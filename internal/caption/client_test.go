package caption

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCaptionFromTextSuccess(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Caption: "  Beach days #sun #waves  "})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	caption := c.CaptionFromText(context.Background(), "my vacation")

	assert.Equal(t, "Beach days #sun #waves", caption)
	assert.Equal(t, TypeText, got.Type)
	assert.Equal(t, "my vacation", got.Prompt)
	assert.Nil(t, got.Image)
}

func TestCaptionFromTextFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"backend error payload", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(Response{Error: "quota exceeded"})
		}},
		{"missing caption field", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(Response{})
		}},
		{"non-json body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>gateway timeout</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, discardLogger())
			assert.Equal(t, TextFallback, c.CaptionFromText(context.Background(), "my vacation"))
		})
	}
}

func TestCaptionFromTextTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, discardLogger())
	assert.Equal(t, TextFallback, c.CaptionFromText(context.Background(), "anything"))
}

func TestCaptionFromImage(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Caption: "Golden hour #nofilter"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	caption := c.CaptionFromImage(context.Background(), raw, "image/jpeg", "sunset")

	assert.Equal(t, "Golden hour #nofilter", caption)
	require.NotNil(t, got.Image)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), got.Image.Data)
	assert.Equal(t, "image/jpeg", got.Image.MimeType)
	assert.Equal(t, "sunset", got.Prompt)
}

func TestCaptionFromImageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(Response{Error: "boom"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	assert.Equal(t, ImageFallback, c.CaptionFromImage(context.Background(), []byte{1}, "image/png", ""))
}
