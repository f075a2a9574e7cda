package models

import "time"

// EditGrace is how far updated_at may trail created_at before a post is
// shown as edited. Default-value stamping writes both fields
// near-simultaneously at creation, so a small delta is noise, not an edit.
const EditGrace = 10 * time.Second

// FeedUser is the denormalized author shown on posts and comments.
type FeedUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// FeedMedia is the optional single media reference on a feed post.
type FeedMedia struct {
	URL  string `json:"url"`
	Type string `json:"type"` // image or video
}

// FeedComment is a comment with its author resolved.
type FeedComment struct {
	ID        string    `json:"id"`
	User      FeedUser  `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPost is one entry of the aggregated feed view: the post row joined
// with its author, comments (oldest first), like count, and the current
// viewer's like state. It is derived, never persisted.
type FeedPost struct {
	ID        string        `json:"id"`
	User      FeedUser      `json:"user"`
	Content   string        `json:"content"`
	Media     *FeedMedia    `json:"media,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Edited    bool          `json:"edited"`
	Likes     int           `json:"likes"`
	IsLiked   bool          `json:"is_liked"`
	Comments  []FeedComment `json:"comments"`
}

// IsEdited reports whether a post should carry the edited marker, given its
// timestamps. The grace window absorbs creation-time jitter.
func IsEdited(createdAt, updatedAt time.Time) bool {
	return updatedAt.Sub(createdAt) > EditGrace
}

// Clone returns a deep copy of the post, safe to mutate independently.
func (p FeedPost) Clone() FeedPost {
	out := p
	if p.Media != nil {
		m := *p.Media
		out.Media = &m
	}
	if p.Comments != nil {
		out.Comments = make([]FeedComment, len(p.Comments))
		copy(out.Comments, p.Comments)
	}
	return out
}

// CloneFeed returns a deep copy of a feed view. Optimistic mutations
// snapshot the view with this before touching it so a failed backend call
// can restore the exact prior state.
func CloneFeed(posts []FeedPost) []FeedPost {
	if posts == nil {
		return nil
	}
	out := make([]FeedPost, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
