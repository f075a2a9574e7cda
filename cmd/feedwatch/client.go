package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"meydan/internal/models"
	"meydan/internal/notifications"

	"github.com/gorilla/websocket"
)

// apiClient drives the HTTP API as one authenticated user. It satisfies
// feed.Aggregator and feed.Mutator so a feed.Session can run against a
// remote server instead of the service layer directly.
type apiClient struct {
	host  string
	token string
	http  *http.Client
}

func newAPIClient(host, token string) *apiClient {
	return &apiClient{
		host:  host,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("http://%s%s", c.host, path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// EnsureProfile loads the viewer's profile; the server creates it with
// generated defaults on first access.
func (c *apiClient) EnsureProfile(ctx context.Context, _, _ string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// BuildFeed fetches the aggregated feed for the authenticated viewer.
func (c *apiClient) BuildFeed(ctx context.Context, _ string) ([]models.FeedPost, error) {
	var resp struct {
		Posts []models.FeedPost `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/feed", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (c *apiClient) CreatePost(ctx context.Context, _, content, mediaURL, mediaType string) (*models.Post, error) {
	var post models.Post
	payload := map[string]string{"content": content, "media_url": mediaURL, "media_type": mediaType}
	if err := c.do(ctx, http.MethodPost, "/api/posts", payload, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *apiClient) UpdatePost(ctx context.Context, _, postID, content string) (*models.Post, error) {
	var post models.Post
	payload := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+postID, payload, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *apiClient) DeletePost(ctx context.Context, _, postID string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+postID, nil, nil)
}

func (c *apiClient) ToggleLike(ctx context.Context, _, postID string) (bool, error) {
	var resp struct {
		Liked bool `json:"liked"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/like", nil, &resp); err != nil {
		return false, err
	}
	return resp.Liked, nil
}

func (c *apiClient) AddComment(ctx context.Context, _, postID, text string) (*models.Comment, error) {
	var comment models.Comment
	payload := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+postID+"/comments", payload, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// wsChangeFeed adapts the server's WebSocket endpoint to the ChangeFeed
// interface, so the session refreshes on the same events browser clients see.
type wsChangeFeed struct {
	host  string
	token string
}

func (f *wsChangeFeed) Subscribe(ctx context.Context, onEvent func(notifications.Event)) (func(), error) {
	u := url.URL{
		Scheme:   "ws",
		Host:     f.host,
		Path:     "/api/ws",
		RawQuery: url.Values{"token": {f.token}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			onEvent(notifications.DecodeEvent(string(message)))
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// tapChangeFeed relays events to the subscriber, then invokes after. The
// session's own handler runs first, so after observes the refreshed view.
type tapChangeFeed struct {
	inner notifications.ChangeFeed
	after func(notifications.Event)
}

func (f *tapChangeFeed) Subscribe(ctx context.Context, onEvent func(notifications.Event)) (func(), error) {
	return f.inner.Subscribe(ctx, func(e notifications.Event) {
		onEvent(e)
		if f.after != nil {
			f.after(e)
		}
	})
}
