// Package feed maintains a live, per-viewer aggregated feed view with
// optimistic mutations and change-driven refresh.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"meydan/internal/middleware"
	"meydan/internal/models"
	"meydan/internal/notifications"
	"meydan/internal/observability"
)

// Aggregator produces the feed view and maintains the viewer's profile.
// *service.FeedService satisfies it.
type Aggregator interface {
	EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error)
	BuildFeed(ctx context.Context, viewerID string) ([]models.FeedPost, error)
}

// Mutator performs the backend writes a session dispatches.
// *service.PostService satisfies it.
type Mutator interface {
	CreatePost(ctx context.Context, userID, content, mediaURL, mediaType string) (*models.Post, error)
	UpdatePost(ctx context.Context, userID, postID, content string) (*models.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (bool, error)
	AddComment(ctx context.Context, userID, postID, text string) (*models.Comment, error)
}

// Session is one viewer's live window onto the feed. Like-toggle and delete
// apply to the local view first and roll back to an exact snapshot when the
// backend call fails; any change event triggers a full re-aggregation.
type Session struct {
	viewerID string
	email    string

	aggregator Aggregator
	mutator    Mutator
	changes    notifications.ChangeFeed

	mu      sync.RWMutex
	view    []models.FeedPost
	profile *models.Profile

	unsubscribe func()
}

// NewSession creates a session for one viewer. changes may be nil for
// sessions that only poll.
func NewSession(viewerID, email string, aggregator Aggregator, mutator Mutator, changes notifications.ChangeFeed) *Session {
	return &Session{
		viewerID:   viewerID,
		email:      email,
		aggregator: aggregator,
		mutator:    mutator,
		changes:    changes,
	}
}

// Open ensures the viewer's profile exists, loads the initial view, and
// starts listening for change events.
func (s *Session) Open(ctx context.Context) error {
	profile, err := s.aggregator.EnsureProfile(ctx, s.viewerID, s.email)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	if s.changes != nil {
		unsubscribe, err := s.changes.Subscribe(ctx, func(e notifications.Event) {
			if err := s.Refresh(context.Background()); err != nil {
				middleware.Logger.Warn("change-driven refresh failed",
					slog.String("viewerID", s.viewerID),
					slog.String("table", e.Table),
					slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return err
		}
		s.unsubscribe = unsubscribe
	}
	return nil
}

// Refresh replaces the local view with a freshly aggregated one.
func (s *Session) Refresh(ctx context.Context) error {
	view, err := s.aggregator.BuildFeed(ctx, s.viewerID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	return nil
}

// View returns a deep copy of the current feed; callers may mutate it freely.
func (s *Session) View() []models.FeedPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneFeed(s.view)
}

// Profile returns the viewer's profile as loaded at Open.
func (s *Session) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// CreatePost validates the content-or-media invariant locally before any
// backend call, then creates the post and refreshes the view.
func (s *Session) CreatePost(ctx context.Context, content, mediaURL, mediaType string) error {
	probe := models.Post{Content: content, MediaURL: mediaURL}
	if !probe.HasSubstance() {
		return models.NewValidationError("post must have content or media")
	}
	if _, err := s.mutator.CreatePost(ctx, s.viewerID, content, mediaURL, mediaType); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdatePost replaces the post's content on the backend, then refreshes.
// No local change is applied first, so a failure has nothing to roll back.
func (s *Session) UpdatePost(ctx context.Context, postID, content string) error {
	if _, err := s.mutator.UpdatePost(ctx, s.viewerID, postID, content); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeletePost removes the post from the local view immediately and restores
// it if the backend delete fails.
func (s *Session) DeletePost(ctx context.Context, postID string) error {
	return s.optimistic("delete_post", func(view []models.FeedPost) []models.FeedPost {
		out := view[:0]
		for _, p := range view {
			if p.ID != postID {
				out = append(out, p)
			}
		}
		return out
	}, func() error {
		return s.mutator.DeletePost(ctx, s.viewerID, postID)
	})
}

// ToggleLike flips the like state and adjusts the count locally first, then
// dispatches the toggle. A failed dispatch restores the exact prior view.
func (s *Session) ToggleLike(ctx context.Context, postID string) error {
	return s.optimistic("toggle_like", func(view []models.FeedPost) []models.FeedPost {
		for i := range view {
			if view[i].ID != postID {
				continue
			}
			if view[i].IsLiked {
				view[i].IsLiked = false
				view[i].Likes--
			} else {
				view[i].IsLiked = true
				view[i].Likes++
			}
		}
		return view
	}, func() error {
		_, err := s.mutator.ToggleLike(ctx, s.viewerID, postID)
		return err
	})
}

// AddComment appends the comment on the backend and refreshes so the new
// comment appears with its resolved author.
func (s *Session) AddComment(ctx context.Context, postID, text string) error {
	if _, err := s.mutator.AddComment(ctx, s.viewerID, postID, text); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Close stops change-event delivery. The view stays readable after Close.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// optimistic snapshots the view, applies the local mutation, then runs the
// backend call. On failure the snapshot is restored untouched.
func (s *Session) optimistic(operation string, apply func([]models.FeedPost) []models.FeedPost, attempt func() error) error {
	s.mu.Lock()
	snapshot := models.CloneFeed(s.view)
	s.view = apply(s.view)
	s.mu.Unlock()

	if err := attempt(); err != nil {
		s.mu.Lock()
		s.view = snapshot
		s.mu.Unlock()
		observability.OptimisticRollbacks.WithLabelValues(operation).Inc()
		middleware.Logger.Warn("optimistic mutation rolled back",
			slog.String("operation", operation),
			slog.String("viewerID", s.viewerID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
