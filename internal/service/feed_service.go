// Package service holds the business logic between handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"meydan/internal/middleware"
	"meydan/internal/models"
	"meydan/internal/observability"
	"meydan/internal/repository"
)

// FeedService builds the aggregated feed view and maintains viewer profiles.
type FeedService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
}

// NewFeedService creates a new feed service.
func NewFeedService(profileRepo repository.ProfileRepository, postRepo repository.PostRepository, likeRepo repository.LikeRepository) *FeedService {
	return &FeedService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		likeRepo:    likeRepo,
	}
}

// EnsureProfile returns the profile for userID, creating it with defaults
// derived from the email when it does not exist yet. Two sessions racing on
// first load may both attempt the insert; the loser re-reads the winner's row.
func (s *FeedService) EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}
	if profile != nil {
		return profile, nil
	}

	profile = &models.Profile{
		ID:        userID,
		Name:      nameFromEmail(email),
		AvatarURL: models.DefaultAvatarURL(userID),
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Lost the creation race; the existing row wins.
		existing, readErr := s.profileRepo.GetByID(ctx, userID)
		if readErr == nil && existing != nil {
			return existing, nil
		}
		return nil, models.ClassifySetup(err)
	}

	middleware.Logger.InfoContext(ctx, "profile created",
		slog.String("profileID", profile.ID),
		slog.String("name", profile.Name))
	return profile, nil
}

// UpdateProfile changes the display name and avatar of the viewer's own profile.
func (s *FeedService) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name cannot be empty")
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}
	if profile == nil {
		return nil, models.NewNotFoundError("profile", userID)
	}

	profile.Name = name
	if avatarURL != "" {
		profile.AvatarURL = avatarURL
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, models.ClassifySetup(err)
	}
	return profile, nil
}

// BuildFeed aggregates the whole feed for one viewer: every post newest-first
// with author, comments oldest-first, like counts, and the viewer's like
// state, all from two queries.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID string) ([]models.FeedPost, error) {
	posts, err := s.postRepo.ListWithRelations(ctx)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}
	likes, err := s.likeRepo.ListAll(ctx)
	if err != nil {
		return nil, models.ClassifySetup(err)
	}

	counts := make(map[string]int, len(posts))
	liked := make(map[string]bool)
	for _, l := range likes {
		counts[l.PostID]++
		if l.UserID == viewerID {
			liked[l.PostID] = true
		}
	}

	feed := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		feed = append(feed, assemblePost(p, counts[p.ID], liked[p.ID]))
	}

	observability.FeedRebuilds.WithLabelValues("query").Inc()
	return feed, nil
}

func assemblePost(p *models.Post, likes int, isLiked bool) models.FeedPost {
	out := models.FeedPost{
		ID:        p.ID,
		User:      feedUser(p.UserID, p.Author),
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Edited:    models.IsEdited(p.CreatedAt, p.UpdatedAt),
		Likes:     likes,
		IsLiked:   isLiked,
		Comments:  make([]models.FeedComment, 0, len(p.Comments)),
	}
	if p.MediaURL != "" {
		out.Media = &models.FeedMedia{URL: p.MediaURL, Type: p.MediaType}
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, models.FeedComment{
			ID:        c.ID,
			User:      feedUser(c.UserID, c.Author),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	sort.SliceStable(out.Comments, func(i, j int) bool {
		return out.Comments[i].CreatedAt.Before(out.Comments[j].CreatedAt)
	})
	return out
}

// feedUser tolerates a missing profile row by falling back to generated
// identity fields, so one orphaned author never breaks the whole feed.
func feedUser(userID string, p models.Profile) models.FeedUser {
	u := models.FeedUser{ID: userID, Name: p.Name, Avatar: p.AvatarURL}
	if u.Name == "" {
		u.Name = "User"
	}
	if u.Avatar == "" {
		u.Avatar = models.DefaultAvatarURL(userID)
	}
	return u
}

func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return "User"
}
