package service

import (
	"context"
	"log/slog"
	"strings"

	"meydan/internal/middleware"
	"meydan/internal/models"
	"meydan/internal/notifications"
	"meydan/internal/observability"
	"meydan/internal/repository"
)

// MediaRemover deletes a stored media object by its public URL.
// *storage.MediaStore satisfies it.
type MediaRemover interface {
	Remove(url string) error
}

// PostService handles post, like, and comment mutations. Every successful
// write emits a change event so connected sessions re-aggregate their feed.
type PostService struct {
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	media       MediaRemover
	publisher   notifications.Publisher
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	media MediaRemover,
	publisher notifications.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		media:       media,
		publisher:   publisher,
	}
}

// CreatePost inserts a new post for the author. The content-or-media
// invariant is checked before any round trip.
func (s *PostService) CreatePost(ctx context.Context, userID, content, mediaURL, mediaType string) (*models.Post, error) {
	post := &models.Post{
		UserID:    userID,
		Content:   strings.TrimSpace(content),
		MediaURL:  mediaURL,
		MediaType: mediaType,
	}
	if !post.HasSubstance() {
		return nil, models.NewValidationError("post must have content or media")
	}
	if post.MediaURL != "" && post.MediaType != models.MediaTypeImage && post.MediaType != models.MediaTypeVideo {
		return nil, models.NewValidationError("media type must be image or video")
	}
	if post.MediaURL == "" {
		post.MediaType = ""
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.ClassifySetup(err)
	}
	s.publish(ctx, "posts", notifications.OpInsert, post.ID)
	return post, nil
}

// UpdatePost replaces the text content of the caller's own post. Saving
// unchanged content is a no-op so the edited marker is not set spuriously.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}
	if post == nil {
		return nil, models.NewNotFoundError("post", postID)
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("you can only edit your own posts")
	}
	if content == "" && post.MediaURL == "" {
		return nil, models.NewValidationError("post must have content or media")
	}
	if content == post.Content {
		return post, nil
	}

	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.ClassifySetup(err)
	}
	s.publish(ctx, "posts", notifications.OpUpdate, post.ID)
	return post, nil
}

// DeletePost removes the caller's own post with its likes and comments.
// Attached media is removed best-effort; a failed cleanup is logged and
// never blocks the delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return models.ClassifySetup(err)
	}
	if post == nil {
		return models.NewNotFoundError("post", postID)
	}
	if post.UserID != userID {
		return models.NewForbiddenError("you can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.ClassifySetup(err)
	}

	// Cleanup runs after the row delete so a failed delete never strands a
	// post pointing at removed media.
	if post.MediaURL != "" && s.media != nil {
		if err := s.media.Remove(post.MediaURL); err != nil {
			observability.MediaCleanupFailures.Inc()
			middleware.Logger.WarnContext(ctx, "media cleanup failed",
				slog.String("postID", postID),
				slog.String("mediaURL", post.MediaURL),
				slog.String("error", err.Error()))
		}
	}

	s.publish(ctx, "posts", notifications.OpDelete, postID)
	return nil
}

// ToggleLike flips the viewer's like on a post: the row is deleted when
// present and inserted when absent.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, models.ClassifySetup(err)
	}
	if post == nil {
		return false, models.NewNotFoundError("post", postID)
	}

	existing, err := s.likeRepo.Find(ctx, userID, postID)
	if err != nil {
		return false, models.ClassifySetup(err)
	}
	if existing != nil {
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return false, models.ClassifySetup(err)
		}
		s.publish(ctx, "likes", notifications.OpDelete, existing.ID)
		return false, nil
	}

	like := &models.Like{UserID: userID, PostID: postID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return false, models.ClassifySetup(err)
	}
	s.publish(ctx, "likes", notifications.OpInsert, like.ID)
	return true, nil
}

// AddComment appends a comment to a post.
func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("comment text cannot be empty")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}
	if post == nil {
		return nil, models.NewNotFoundError("post", postID)
	}

	comment := &models.Comment{UserID: userID, PostID: postID, Text: text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.ClassifySetup(err)
	}
	s.publish(ctx, "comments", notifications.OpInsert, comment.ID)
	return comment, nil
}

func (s *PostService) publish(ctx context.Context, table, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, notifications.Event{Table: table, Op: op, ID: id}); err != nil {
		middleware.Logger.WarnContext(ctx, "change event publish failed",
			slog.String("table", table),
			slog.String("op", op),
			slog.String("error", err.Error()))
	}
}
