package repository

import (
	"context"
	"errors"

	"meydan/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	// ListAll returns every like row in one pass; the aggregator groups
	// them client-side rather than issuing per-post count queries.
	ListAll(ctx context.Context) ([]models.Like, error)
	// Find returns the like row for (userID, postID), or nil when absent.
	Find(ctx context.Context, userID, postID string) (*models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, id string) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) ListAll(ctx context.Context) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).Find(&likes).Error
	return likes, err
}

func (r *likeRepository) Find(ctx context.Context, userID, postID string) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		First(&like, "user_id = ? AND post_id = ?", userID, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id).Error
}
