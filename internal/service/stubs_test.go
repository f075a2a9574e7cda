package service

import (
	"context"
	"sync"

	"meydan/internal/models"
	"meydan/internal/notifications"
)

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDFn func(context.Context, string) (*models.Profile, error)
	createFn  func(context.Context, *models.Profile) error
	updateFn  func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByIDFn: func(_ context.Context, _ string) (*models.Profile, error) { return nil, nil },
		createFn:  func(_ context.Context, _ *models.Profile) error { return nil },
		updateFn:  func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn func(context.Context, *models.Post) error
	getFn    func(context.Context, string) (*models.Post, error)
	listFn   func(context.Context) ([]*models.Post, error)
	updateFn func(context.Context, *models.Post) error
	deleteFn func(context.Context, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getFn(ctx, id)
}
func (s *postRepoStub) ListWithRelations(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getFn:    func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listFn:   func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	listAllFn func(context.Context) ([]models.Like, error)
	findFn    func(context.Context, string, string) (*models.Like, error)
	createFn  func(context.Context, *models.Like) error
	deleteFn  func(context.Context, string) error
}

func (s *likeRepoStub) ListAll(ctx context.Context) ([]models.Like, error) {
	return s.listAllFn(ctx)
}
func (s *likeRepoStub) Find(ctx context.Context, userID, postID string) (*models.Like, error) {
	return s.findFn(ctx, userID, postID)
}
func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) error {
	return s.createFn(ctx, like)
}
func (s *likeRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		listAllFn: func(_ context.Context) ([]models.Like, error) { return nil, nil },
		findFn:    func(_ context.Context, _, _ string) (*models.Like, error) { return nil, nil },
		createFn:  func(_ context.Context, _ *models.Like) error { return nil },
		deleteFn:  func(_ context.Context, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

// mediaStub is a stub for MediaRemover.
type mediaStub struct {
	removeFn func(string) error
	removed  []string
}

func (s *mediaStub) Remove(url string) error {
	s.removed = append(s.removed, url)
	if s.removeFn != nil {
		return s.removeFn(url)
	}
	return nil
}

// publisherStub records published change events in order.
type publisherStub struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (s *publisherStub) Publish(_ context.Context, e notifications.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *publisherStub) published() []notifications.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notifications.Event, len(s.events))
	copy(out, s.events)
	return out
}
