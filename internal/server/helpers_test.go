package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"meydan/internal/config"
	"meydan/internal/database"
	"meydan/internal/middleware"
	"meydan/internal/repository"
	"meydan/internal/service"
	"meydan/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		Port:         "0",
		Env:          "test",
		ChangeFeed:   "redis",
		MediaBaseURL: "http://localhost:8390/media",
	}
}

// setupTestDB opens a uniquely named in-memory SQLite database so parallel
// tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupTestServer builds a Server over SQLite with a tempdir media store.
// Change events are not published; tests asserting on events use stubs at
// the service layer instead.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	cfg.MediaRoot = t.TempDir()
	middleware.InitMiddleware(cfg)

	db := setupTestDB(t)
	media, err := storage.NewMediaStore(cfg.MediaRoot, cfg.MediaBaseURL)
	require.NoError(t, err)

	s := &Server{
		config:      cfg,
		db:          db,
		accountRepo: repository.NewAccountRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		postRepo:    repository.NewPostRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		media:       media,
	}
	s.feedService = service.NewFeedService(s.profileRepo, s.postRepo, s.likeRepo)
	s.postService = service.NewPostService(s.postRepo, s.likeRepo, s.commentRepo, s.media, nil)
	return s
}

// authedApp returns an app whose routes run with the given identity already
// resolved, bypassing JWT parsing.
func authedApp(userID, email string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("email", email)
		return c.Next()
	})
	return app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
