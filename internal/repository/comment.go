package repository

import (
	"context"

	"meydan/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Comments are append-only; there is no update or delete path.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
