// Package storage implements the media object store backing post uploads.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore is a public object bucket for post media. Objects are keyed
// `{userID}/{token}.{ext}`: readable by anyone via the public URL
// namespace, writable only through authenticated upload handlers.
type MediaStore struct {
	root    string
	baseURL string
}

// NewMediaStore creates a store rooted at dir, serving objects under baseURL.
func NewMediaStore(dir, baseURL string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media store root: %w", err)
	}
	return &MediaStore{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory objects are stored under, for static serving.
func (s *MediaStore) Root() string { return s.root }

// KindForFilename maps a filename to a media kind by extension.
// Unrecognized extensions are treated as images, matching upload pickers
// that accept image/* and video/* only.
func KindForFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".webm", ".mov", ".avi", ".mkv":
		return "video"
	default:
		return "image"
	}
}

// Save writes the object and returns its public URL. The key embeds the
// owner's id and a random token so uploads never collide and ownership is
// visible in the key itself.
func (s *MediaStore) Save(userID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("media store: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("media store: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("media store: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Remove deletes the object behind a public URL. URLs outside this store's
// namespace are ignored; removal of an already-absent object succeeds, so
// retrying a failed post deletion stays safe.
func (s *MediaStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")

	path := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("media store: key %q escapes root", key)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media store: %w", err)
	}
	return nil
}
