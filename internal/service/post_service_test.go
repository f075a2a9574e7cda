package service

import (
	"context"
	"errors"
	"testing"

	"meydan/internal/models"
	"meydan/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(posts *postRepoStub, likes *likeRepoStub, pub *publisherStub) *PostService {
	comments := &commentRepoStub{createFn: func(_ context.Context, _ *models.Comment) error { return nil }}
	return NewPostService(posts, likes, comments, nil, pub)
}

func TestCreatePostRequiresSubstance(t *testing.T) {
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("create should not be called for an empty post")
		return nil
	}
	pub := &publisherStub{}
	svc := newPostService(posts, noopLikeRepo(), pub)

	_, err := svc.CreatePost(context.Background(), "u1", "   ", "", "")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Empty(t, pub.published())
}

func TestCreatePostRejectsUnknownMediaType(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopLikeRepo(), &publisherStub{})

	_, err := svc.CreatePost(context.Background(), "u1", "", "http://localhost/media/u1/x.gif", "animation")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCreatePostPublishesInsert(t *testing.T) {
	pub := &publisherStub{}
	svc := newPostService(noopPostRepo(), noopLikeRepo(), pub)

	post, err := svc.CreatePost(context.Background(), "u1", "  hello  ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Empty(t, post.MediaType)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.Event{Table: "posts", Op: notifications.OpInsert, ID: post.ID}, events[0])
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "someone-else", Content: "theirs"}, nil
	}
	svc := newPostService(posts, noopLikeRepo(), &publisherStub{})

	_, err := svc.UpdatePost(context.Background(), "u1", "p1", "mine now")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestUpdatePostUnchangedContentIsNoop(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1", Content: "same"}, nil
	}
	posts.updateFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("update should not be called when content is unchanged")
		return nil
	}
	pub := &publisherStub{}
	svc := newPostService(posts, noopLikeRepo(), pub)

	post, err := svc.UpdatePost(context.Background(), "u1", "p1", "same")
	require.NoError(t, err)
	assert.Equal(t, "same", post.Content)
	assert.Empty(t, pub.published())
}

func TestUpdatePostPublishesUpdate(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1", Content: "before"}, nil
	}
	pub := &publisherStub{}
	svc := newPostService(posts, noopLikeRepo(), pub)

	post, err := svc.UpdatePost(context.Background(), "u1", "p1", "after")
	require.NoError(t, err)
	assert.Equal(t, "after", post.Content)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.OpUpdate, events[0].Op)
	assert.Equal(t, "posts", events[0].Table)
}

func TestDeletePostNotFound(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, _ string) (*models.Post, error) { return nil, nil }
	svc := newPostService(posts, noopLikeRepo(), &publisherStub{})

	err := svc.DeletePost(context.Background(), "u1", "missing")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeletePostPublishesDelete(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1", Content: "bye"}, nil
	}
	deleted := ""
	posts.deleteFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}
	pub := &publisherStub{}
	svc := newPostService(posts, noopLikeRepo(), pub)

	require.NoError(t, svc.DeletePost(context.Background(), "u1", "p1"))
	assert.Equal(t, "p1", deleted)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.Event{Table: "posts", Op: notifications.OpDelete, ID: "p1"}, events[0])
}

func TestDeletePostSurvivesMediaCleanupFailure(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1", MediaURL: "http://localhost:8390/media/u1/a.png", MediaType: models.MediaTypeImage}, nil
	}
	media := &mediaStub{removeFn: func(string) error { return errors.New("disk gone") }}
	pub := &publisherStub{}
	comments := &commentRepoStub{createFn: func(_ context.Context, _ *models.Comment) error { return nil }}
	svc := NewPostService(posts, noopLikeRepo(), comments, media, pub)

	require.NoError(t, svc.DeletePost(context.Background(), "u1", "p1"))
	assert.Equal(t, []string{"http://localhost:8390/media/u1/a.png"}, media.removed)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.OpDelete, events[0].Op)
}

func TestDeletePostFailedDeleteKeepsMedia(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "u1", MediaURL: "http://localhost:8390/media/u1/a.png", MediaType: models.MediaTypeImage}, nil
	}
	posts.deleteFn = func(_ context.Context, _ string) error { return errors.New("db down") }
	media := &mediaStub{}
	comments := &commentRepoStub{createFn: func(_ context.Context, _ *models.Comment) error { return nil }}
	svc := NewPostService(posts, noopLikeRepo(), comments, media, &publisherStub{})

	require.Error(t, svc.DeletePost(context.Background(), "u1", "p1"))
	assert.Empty(t, media.removed)
}

func TestToggleLikeInsertsWhenAbsent(t *testing.T) {
	likes := noopLikeRepo()
	var created *models.Like
	likes.createFn = func(_ context.Context, l *models.Like) error {
		created = l
		return nil
	}
	pub := &publisherStub{}
	svc := newPostService(noopPostRepo(), likes, pub)

	liked, err := svc.ToggleLike(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, liked)
	require.NotNil(t, created)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "p1", created.PostID)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "likes", events[0].Table)
	assert.Equal(t, notifications.OpInsert, events[0].Op)
}

func TestToggleLikeDeletesWhenPresent(t *testing.T) {
	likes := noopLikeRepo()
	likes.findFn = func(_ context.Context, userID, postID string) (*models.Like, error) {
		return &models.Like{ID: "l1", UserID: userID, PostID: postID}, nil
	}
	deleted := ""
	likes.deleteFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}
	likes.createFn = func(_ context.Context, _ *models.Like) error {
		t.Fatal("create should not be called when the like exists")
		return nil
	}
	pub := &publisherStub{}
	svc := newPostService(noopPostRepo(), likes, pub)

	liked, err := svc.ToggleLike(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, "l1", deleted)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.OpDelete, events[0].Op)
}

func TestToggleLikeMissingPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getFn = func(_ context.Context, _ string) (*models.Post, error) { return nil, nil }
	svc := newPostService(posts, noopLikeRepo(), &publisherStub{})

	_, err := svc.ToggleLike(context.Background(), "u1", "missing")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAddCommentRequiresText(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopLikeRepo(), &publisherStub{})

	_, err := svc.AddComment(context.Background(), "u1", "p1", "  ")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestAddCommentPublishesInsert(t *testing.T) {
	pub := &publisherStub{}
	svc := newPostService(noopPostRepo(), noopLikeRepo(), pub)

	comment, err := svc.AddComment(context.Background(), "u1", "p1", " nice shot ")
	require.NoError(t, err)
	assert.Equal(t, "nice shot", comment.Text)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "comments", events[0].Table)
	assert.Equal(t, notifications.OpInsert, events[0].Op)
}
