package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEdited(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		updatedAt time.Time
		want      bool
	}{
		{"same instant", created, false},
		{"within grace", created.Add(3 * time.Second), false},
		{"exactly at grace", created.Add(10 * time.Second), false},
		{"just past grace", created.Add(10*time.Second + time.Millisecond), true},
		{"clear edit", created.Add(5 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEdited(created, tt.updatedAt))
		})
	}
}

func TestCloneFeedDeepCopies(t *testing.T) {
	original := []FeedPost{
		{
			ID:      "p1",
			User:    FeedUser{ID: "u1", Name: "maya"},
			Content: "hello",
			Media:   &FeedMedia{URL: "https://cdn/x.jpg", Type: MediaTypeImage},
			Likes:   2,
			Comments: []FeedComment{
				{ID: "c1", Text: "first", User: FeedUser{ID: "u2"}},
			},
		},
	}

	snapshot := CloneFeed(original)
	require.Equal(t, original, snapshot)

	// Mutating the original must not leak into the snapshot.
	original[0].Likes = 99
	original[0].Media.URL = "changed"
	original[0].Comments[0].Text = "changed"

	assert.Equal(t, 2, snapshot[0].Likes)
	assert.Equal(t, "https://cdn/x.jpg", snapshot[0].Media.URL)
	assert.Equal(t, "first", snapshot[0].Comments[0].Text)
}

func TestCloneFeedNil(t *testing.T) {
	assert.Nil(t, CloneFeed(nil))
}

func TestDefaultAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://api.dicebear.com/8.x/thumbs/svg?seed=abc-123",
		DefaultAvatarURL("abc-123"))
}
